package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragd/internal/adapters/driven/vectorstore/memory"
	"github.com/custodia-labs/ragd/internal/core/domain"
	"github.com/custodia-labs/ragd/internal/core/ports/driven"
	"github.com/custodia-labs/ragd/internal/postprocessors/chunker"
)

// --- Mock implementations ---

// recordingSleeper implements driven.Sleeper without waiting.
type recordingSleeper struct {
	waits []time.Duration
	err   error
}

func (s *recordingSleeper) Sleep(_ context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return s.err
}

// osReader implements driven.FileReader over the real filesystem.
type osReader struct{}

func (osReader) ReadText(_ context.Context, path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// failingReader reads like osReader but fails for one base name.
type failingReader struct {
	fail string
}

func (r failingReader) ReadText(ctx context.Context, path string) (string, error) {
	if filepath.Base(path) == r.fail {
		return "", fmt.Errorf("read %s: %w", path, fs.ErrPermission)
	}
	return osReader{}.ReadText(ctx, path)
}

// fakeStrategy implements driven.PageExtractor with a canned result.
type fakeStrategy struct {
	name     string
	text     string
	err      error
	calls    int
	maxPages []int
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) ExtractPages(_ context.Context, _ string, maxPages int) (string, error) {
	f.calls++
	f.maxPages = append(f.maxPages, maxPages)
	return f.text, f.err
}

// scriptedEmbedder implements driven.EmbeddingBackend.
// Each call pops the next scripted error; once the script is exhausted it embeds with fn.
type scriptedEmbedder struct {
	mu     sync.Mutex
	script []error
	fn     func(text string) ([]float32, error)
	calls  int
	texts  []string
}

func (e *scriptedEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	e.texts = append(e.texts, text)
	if len(e.script) > 0 {
		err := e.script[0]
		e.script = e.script[1:]
		if err != nil {
			return nil, err
		}
	}
	if e.fn == nil {
		return []float32{1, 0}, nil
	}
	return e.fn(text)
}

func (e *scriptedEmbedder) ModelName() string { return "fake-embed" }

func (e *scriptedEmbedder) Ping(_ context.Context) error { return nil }

// keywordEmbedder places texts about France on one axis and Germany on the other.
func keywordEmbedder() *scriptedEmbedder {
	return &scriptedEmbedder{fn: func(text string) ([]float32, error) {
		lower := strings.ToLower(text)
		switch {
		case strings.Contains(lower, "fail"):
			return nil, errors.New("model rejected input")
		case strings.Contains(lower, "paris") || strings.Contains(lower, "france"):
			return []float32{0.95, 0.05}, nil
		case strings.Contains(lower, "berlin") || strings.Contains(lower, "germany"):
			return []float32{0.05, 0.95}, nil
		default:
			return []float32{0.5, 0.5}, nil
		}
	}}
}

type reply struct {
	text string
	err  error
}

// fakeGenerator implements driven.GenerationBackend.
type fakeGenerator struct {
	replies  []reply
	calls    int
	messages [][]driven.ChatMessage
}

func (g *fakeGenerator) Chat(_ context.Context, messages []driven.ChatMessage) (string, error) {
	g.calls++
	g.messages = append(g.messages, messages)
	if len(g.replies) == 0 {
		return "ok", nil
	}
	r := g.replies[0]
	if len(g.replies) > 1 {
		g.replies = g.replies[1:]
	}
	return r.text, r.err
}

func (g *fakeGenerator) ModelName() string { return "fake-llm" }

func (g *fakeGenerator) Ping(_ context.Context) error { return nil }

func (g *fakeGenerator) lastPrompt() string {
	if len(g.messages) == 0 {
		return ""
	}
	msgs := g.messages[len(g.messages)-1]
	return msgs[len(msgs)-1].Content
}

// faultyStore wraps the memory store with injectable failures and call counters.
type faultyStore struct {
	*memory.Store

	hasErr       error
	hideExisting bool
	createErr    error
	describeErr  error
	listErr      error
	indexErr     error
	loadErr      error
	insertErr    error
	flushErr     error
	searchErr    error

	createCalls int
	indexCalls  int
	flushCalls  int
	insertCalls int
}

func newFaultyStore() *faultyStore {
	return &faultyStore{Store: memory.New()}
}

func (f *faultyStore) HasCollection(ctx context.Context, name string) (bool, error) {
	if f.hasErr != nil {
		return false, f.hasErr
	}
	if f.hideExisting {
		return false, nil
	}
	return f.Store.HasCollection(ctx, name)
}

func (f *faultyStore) CreateCollection(ctx context.Context, schema domain.CollectionSchema) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	return f.Store.CreateCollection(ctx, schema)
}

func (f *faultyStore) DescribeCollection(ctx context.Context, name string) (domain.CollectionSchema, error) {
	if f.describeErr != nil {
		return domain.CollectionSchema{}, f.describeErr
	}
	return f.Store.DescribeCollection(ctx, name)
}

func (f *faultyStore) ListIndexes(ctx context.Context, name string) ([]domain.IndexDescriptor, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.Store.ListIndexes(ctx, name)
}

func (f *faultyStore) CreateIndex(ctx context.Context, name string, spec domain.IndexSpec) error {
	f.indexCalls++
	if f.indexErr != nil {
		return f.indexErr
	}
	return f.Store.CreateIndex(ctx, name, spec)
}

func (f *faultyStore) LoadCollection(ctx context.Context, name string) error {
	if f.loadErr != nil {
		return f.loadErr
	}
	return f.Store.LoadCollection(ctx, name)
}

func (f *faultyStore) Insert(ctx context.Context, name string, records []domain.VectorRecord) error {
	f.insertCalls++
	if f.insertErr != nil {
		return f.insertErr
	}
	return f.Store.Insert(ctx, name, records)
}

func (f *faultyStore) Flush(ctx context.Context, name string) error {
	f.flushCalls++
	if f.flushErr != nil {
		return f.flushErr
	}
	return f.Store.Flush(ctx, name)
}

func (f *faultyStore) Search(ctx context.Context, name string, req domain.SearchRequest) ([]domain.SearchHit, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.Store.Search(ctx, name, req)
}

// fakeLedger implements driven.IngestLedger in memory.
type fakeLedger struct {
	runs []domain.IngestRun
	err  error
}

func (l *fakeLedger) Record(_ context.Context, run domain.IngestRun) (int64, error) {
	if l.err != nil {
		return 0, l.err
	}
	run.ID = int64(len(l.runs) + 1)
	l.runs = append(l.runs, run)
	return run.ID, nil
}

func (l *fakeLedger) Recent(_ context.Context, limit int) ([]domain.IngestRun, error) {
	out := make([]domain.IngestRun, 0, limit)
	for i := len(l.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, l.runs[i])
	}
	return out, nil
}

func (l *fakeLedger) Close() error { return nil }

// fakePrompts implements driven.PromptStore.
type fakePrompts struct {
	prompt string
	err    error
}

func (p *fakePrompts) Load(_ string) (string, error) { return p.prompt, p.err }

func (p *fakePrompts) Reload() {}

// --- Fixtures ---

func testStoreSettings() domain.VectorStoreSettings {
	return domain.VectorStoreSettings{
		Backend:    domain.VectorBackendMemory,
		Collection: "docs",
		Dimension:  2,
		NList:      8,
		NProbe:     4,
	}
}

// openManager creates and opens a manager over store.
func openManager(t *testing.T, store driven.VectorStore) *VectorStoreManager {
	t.Helper()
	m := NewVectorStoreManager(store, testStoreSettings())
	require.NoError(t, m.Open(context.Background()))
	return m
}

// writeFiles creates files under dir and returns dir.
func writeFiles(t *testing.T, dir string, files map[string]string) string {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

type ingestFixture struct {
	svc      *IngestService
	store    *faultyStore
	embedder *scriptedEmbedder
	sleeper  *recordingSleeper
	pdf      *fakeStrategy
	ledger   *fakeLedger
	dir      string
}

func newIngestFixture(t *testing.T, files map[string]string) *ingestFixture {
	t.Helper()
	dir := writeFiles(t, t.TempDir(), files)
	store := newFaultyStore()
	embedder := keywordEmbedder()
	sleeper := &recordingSleeper{}
	pdf := &fakeStrategy{name: "fake-pdf", text: "Paris is the capital of France."}
	ledger := &fakeLedger{}

	svc := NewIngestService(
		NewTextExtractor(osReader{}, pdf),
		chunker.New(chunker.WithChunkSize(40), chunker.WithOverlap(0)),
		NewEmbeddingClient(embedder, sleeper),
		openManager(t, store),
		domain.IngestSettings{DocsDir: dir},
	)
	svc.SetLedger(ledger)

	ids := 0
	svc.newID = func() string {
		ids++
		return fmt.Sprintf("id-%03d", ids)
	}
	return &ingestFixture{svc: svc, store: store, embedder: embedder, sleeper: sleeper, pdf: pdf, ledger: ledger, dir: dir}
}

var errTimeout = fmt.Errorf("%w: dial tcp: i/o timeout", domain.ErrTransient)

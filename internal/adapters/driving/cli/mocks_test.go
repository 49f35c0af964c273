package cli

import (
	"context"
	"sync"

	"github.com/custodia-labs/ragd/internal/core/domain"
)

// fakeIngest is a scripted driving.IngestService safe for use from the watcher goroutine.
type fakeIngest struct {
	mu sync.Mutex

	report *domain.IngestReport
	runs   []domain.IngestRun
	err    error

	dirCalls int
	mode     domain.IngestMode
	paths    []string
	filename string
	opts     domain.IngestOptions
	limit    int

	// batches receives the paths of every IngestPaths call when set.
	batches chan []string
}

func (f *fakeIngest) IngestDir(context.Context) (*domain.IngestReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dirCalls++
	return f.report, f.err
}

func (f *fakeIngest) IngestFiles(context.Context, []domain.Upload) (*domain.IngestReport, error) {
	return f.report, f.err
}

func (f *fakeIngest) IngestPaths(_ context.Context, mode domain.IngestMode, paths []string) (*domain.IngestReport, error) {
	f.mu.Lock()
	f.mode = mode
	f.paths = paths
	report, err := f.report, f.err
	f.mu.Unlock()
	if f.batches != nil {
		select {
		case f.batches <- paths:
		default:
		}
	}
	return report, err
}

func (f *fakeIngest) IngestOne(_ context.Context, filename string, opts domain.IngestOptions) (*domain.IngestReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filename = filename
	f.opts = opts
	return f.report, f.err
}

func (f *fakeIngest) History(_ context.Context, limit int) ([]domain.IngestRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limit = limit
	return f.runs, f.err
}

// fakeChat is a scripted driving.ChatService.
type fakeChat struct {
	answer   *domain.Answer
	err      error
	question string
}

func (f *fakeChat) Answer(_ context.Context, q string) (*domain.Answer, error) {
	f.question = q
	return f.answer, f.err
}

// fakePinger returns err from every Ping.
type fakePinger struct {
	err error
}

func (p fakePinger) Ping(context.Context) error {
	return p.err
}

func sampleReport() *domain.IngestReport {
	return &domain.IngestReport{
		Inserted: 5,
		Files: []domain.FileStatus{
			{Name: "a.txt", State: domain.FileIngested, Chunks: 3},
			{Name: "b.pdf", State: domain.FileIngested, Chunks: 2},
			{Name: "c.pdf", State: domain.FileFailed, Error: "parse error"},
		},
	}
}

// setupTestServices injects fakes and returns a cleanup that resets
// the injected services and every command flag.
func setupTestServices() (*fakeIngest, *fakeChat, func()) {
	ingest := &fakeIngest{report: sampleReport()}
	chat := &fakeChat{answer: &domain.Answer{Text: "Paris.", UsedDocs: 4}}
	SetServices(ingest, chat, domain.DefaultSettings())

	return ingest, chat, func() {
		ingestService = nil
		chatService = nil
		currentSettings = nil
		healthProbes = nil
		closeServices = func() {}
		resetFlags()
		rootCmd.SetArgs(nil)
	}
}

func resetFlags() {
	cfgFile, envFile, logLevel, storeBackend, docsDir = "", "", "", "", ""
	verbose = false
	ingestJSON, ingestOneJSON, chatJSON, historyJSON = false, false, false, false
	ingestOneMaxPages, ingestOneMaxChunks = fromSettings, fromSettings
	historyLimit = 20
	serveAddr, serveMCP = "", false
	watchSettle, watchInitial = defaultSettle, false
}

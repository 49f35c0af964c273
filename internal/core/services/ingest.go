package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"github.com/custodia-labs/ragd/internal/core/domain"
	"github.com/custodia-labs/ragd/internal/core/ports/driven"
	"github.com/custodia-labs/ragd/internal/core/ports/driving"
	"github.com/custodia-labs/ragd/internal/logger"
	"github.com/custodia-labs/ragd/internal/observability"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService runs documents through extract, chunk, embed and insert.
// Files are processed one at a time. In batch mode a failing file is recorded
// in the report and the batch moves on; in single-file mode any failure fails
// the call.
type IngestService struct {
	extractor *TextExtractor
	chunker   driven.Chunker
	embedder  *EmbeddingClient
	store     *VectorStoreManager
	ledger    driven.IngestLedger

	docsDir string
	pattern string

	newID func() string
	now   func() time.Time
}

// NewIngestService creates an ingestion orchestrator reading from settings.DocsDir.
func NewIngestService(
	extractor *TextExtractor,
	chunker driven.Chunker,
	embedder *EmbeddingClient,
	store *VectorStoreManager,
	settings domain.IngestSettings,
) *IngestService {
	pattern := settings.Pattern
	if pattern == "" {
		pattern = "*"
	}
	return &IngestService{
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		store:     store,
		docsDir:   settings.DocsDir,
		pattern:   pattern,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// SetLedger enables run history. A nil ledger disables it.
func (s *IngestService) SetLedger(ledger driven.IngestLedger) {
	s.ledger = ledger
}

// DocsDir returns the directory documents are read from.
func (s *IngestService) DocsDir() string {
	return s.docsDir
}

// Pattern returns the glob selecting files within the docs directory.
func (s *IngestService) Pattern() string {
	return s.pattern
}

// IngestDir ingests every supported file of the docs directory matching the
// configured pattern, in lexical order. Directories and unsupported types are skipped.
func (s *IngestService) IngestDir(ctx context.Context) (*domain.IngestReport, error) {
	paths, err := s.scanDocsDir()
	if err != nil {
		return nil, err
	}
	return s.IngestPaths(ctx, domain.IngestModeDir, paths)
}

func (s *IngestService) scanDocsDir() ([]string, error) {
	info, err := os.Stat(s.docsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: docs directory %s", domain.ErrNotFound, s.docsDir)
		}
		return nil, fmt.Errorf("stat docs directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, s.docsDir)
	}

	matches, err := doublestar.Glob(os.DirFS(s.docsDir), s.pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: pattern %q: %w", domain.ErrInvalidInput, s.pattern, err)
	}
	sort.Strings(matches)

	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		if !domain.IsSupportedFile(m) {
			continue
		}
		path := filepath.Join(s.docsDir, filepath.FromSlash(m))
		if fi, err := os.Stat(path); err != nil || fi.IsDir() {
			continue
		}
		paths = append(paths, path)
	}
	logger.Debug("scan %s (%s): %d candidate files", s.docsDir, s.pattern, len(paths))
	return paths, nil
}

// IngestFiles writes each upload into the docs directory under its base name,
// then ingests them as a batch. Uploads that cannot be saved are reported as failed.
func (s *IngestService) IngestFiles(ctx context.Context, uploads []domain.Upload) (*domain.IngestReport, error) {
	if err := os.MkdirAll(s.docsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create docs directory: %w", err)
	}

	items := make([]batchItem, 0, len(uploads))
	for _, u := range uploads {
		name := filepath.Base(filepath.Clean("/" + u.Name))
		if name == "/" || name == "." {
			items = append(items, batchItem{name: u.Name, err: fmt.Errorf("%w: empty file name", domain.ErrInvalidInput)})
			continue
		}
		path := filepath.Join(s.docsDir, name)
		if err := os.WriteFile(path, u.Content, 0o644); err != nil {
			items = append(items, batchItem{name: name, err: fmt.Errorf("save upload: %w", err)})
			continue
		}
		items = append(items, batchItem{name: name, path: path})
	}
	return s.runBatch(ctx, domain.IngestModeUpload, items)
}

// IngestPaths ingests the given files as one batch and flushes once at the end.
func (s *IngestService) IngestPaths(
	ctx context.Context, mode domain.IngestMode, paths []string,
) (*domain.IngestReport, error) {
	items := make([]batchItem, len(paths))
	for i, p := range paths {
		items[i] = batchItem{name: filepath.Base(p), path: p}
	}
	return s.runBatch(ctx, mode, items)
}

// batchItem is a file queued for batch ingestion. A non-nil err marks an item
// that already failed before ingestion (for example an upload that could not be saved).
type batchItem struct {
	name string
	path string
	err  error
}

func (s *IngestService) runBatch(
	ctx context.Context, mode domain.IngestMode, items []batchItem,
) (*domain.IngestReport, error) {
	logger.Section("Ingest (" + string(mode) + ")")
	started := s.now()
	report := &domain.IngestReport{Files: make([]domain.FileStatus, 0, len(items))}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		var status domain.FileStatus
		err := item.err
		if err == nil {
			status, err = s.ingestFile(ctx, item.path, domain.IngestOptions{})
		}
		if err != nil {
			logger.Warn("ingest %s failed: %v", item.name, err)
			status = domain.FileStatus{Name: item.name, State: domain.FileFailed, Error: err.Error()}
		}

		report.Inserted += status.Chunks
		report.Files = append(report.Files, status)
		observability.IngestedFilesTotal.WithLabelValues(string(status.State)).Inc()
	}

	if err := s.store.Flush(ctx); err != nil {
		return report, err
	}

	logger.Info("ingested %d chunks from %d files (%d failed)", report.Inserted, len(report.Files), report.Failed())
	s.record(ctx, mode, started, report)
	return report, nil
}

// IngestOne ingests a single file of the docs directory. The page bound applies
// to PDFs only. The collection is flushed right after the insert.
func (s *IngestService) IngestOne(
	ctx context.Context, filename string, opts domain.IngestOptions,
) (*domain.IngestReport, error) {
	logger.Section("Ingest (one)")
	started := s.now()

	name := filepath.Base(filepath.Clean("/" + filename))
	if name == "/" || name == "." {
		return nil, fmt.Errorf("%w: filename is required", domain.ErrInvalidInput)
	}
	path := filepath.Join(s.docsDir, name)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, name)
		}
		return nil, fmt.Errorf("ingest %s: %w", name, err)
	}

	if !domain.IsSupportedFile(name) {
		return nil, fmt.Errorf("ingest %s: %w: %q", name, domain.ErrUnsupportedType, filepath.Ext(name))
	}
	if strings.ToLower(filepath.Ext(name)) != domain.ExtPDF {
		opts.MaxPages = 0
	}

	status, err := s.ingestFile(ctx, path, opts)
	if err != nil {
		observability.IngestedFilesTotal.WithLabelValues(string(domain.FileFailed)).Inc()
		return nil, fmt.Errorf("ingest %s: %w", name, err)
	}
	if status.Chunks > 0 {
		if err := s.store.Flush(ctx); err != nil {
			return nil, fmt.Errorf("ingest %s: %w", name, err)
		}
	}
	observability.IngestedFilesTotal.WithLabelValues(string(status.State)).Inc()

	report := &domain.IngestReport{Inserted: status.Chunks, Files: []domain.FileStatus{status}}
	s.record(ctx, domain.IngestModeOne, started, report)
	return report, nil
}

// ingestFile extracts, chunks, embeds and inserts one file as a single batch.
// A file without text yields a FileNoText status and no error.
func (s *IngestService) ingestFile(
	ctx context.Context, path string, opts domain.IngestOptions,
) (domain.FileStatus, error) {
	name := filepath.Base(path)

	extraction, err := s.extractor.Extract(ctx, path, opts.MaxPages)
	if err != nil {
		return domain.FileStatus{}, err
	}

	chunks := s.chunker.Split(extraction.Text, opts.MaxChunks)
	if len(chunks) == 0 {
		logger.Debug("%s: no text", name)
		return domain.FileStatus{Name: name, State: domain.FileNoText}, nil
	}
	logger.Debug("%s: %d chunks via %s", name, len(chunks), extraction.Strategy)

	vectors, err := s.embedder.Embed(ctx, chunks)
	if err != nil {
		return domain.FileStatus{}, err
	}

	records := make([]domain.VectorRecord, len(chunks))
	for i := range chunks {
		records[i] = domain.VectorRecord{ID: s.newID(), Vector: vectors[i], Text: chunks[i]}
	}
	if err := s.store.Insert(ctx, records); err != nil {
		return domain.FileStatus{}, err
	}
	observability.InsertedChunksTotal.Add(float64(len(records)))

	return domain.FileStatus{Name: name, State: domain.FileIngested, Chunks: len(records)}, nil
}

func (s *IngestService) record(ctx context.Context, mode domain.IngestMode, started time.Time, report *domain.IngestReport) {
	if s.ledger == nil {
		return
	}
	run := domain.IngestRun{Mode: mode, StartedAt: started, FinishedAt: s.now(), Report: *report}
	if _, err := s.ledger.Record(ctx, run); err != nil {
		logger.Warn("record ingest run: %v", err)
	}
}

// History returns up to limit recent ingestion runs, newest first.
func (s *IngestService) History(ctx context.Context, limit int) ([]domain.IngestRun, error) {
	if s.ledger == nil {
		return nil, fmt.Errorf("%w: ingestion ledger is not configured", domain.ErrNotFound)
	}
	if limit <= 0 {
		limit = 20
	}
	return s.ledger.Recent(ctx, limit)
}

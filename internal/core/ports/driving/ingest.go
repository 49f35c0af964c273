package driving

import (
	"context"

	"github.com/custodia-labs/ragd/internal/core/domain"
)

// IngestService moves documents into the vector store.
type IngestService interface {
	// IngestDir ingests every supported file of the configured docs directory.
	// Per-file failures are recorded in the report; only a flush failure is returned.
	IngestDir(ctx context.Context) (*domain.IngestReport, error)

	// IngestFiles saves the uploads into the docs directory, then ingests them as a batch.
	IngestFiles(ctx context.Context, uploads []domain.Upload) (*domain.IngestReport, error)

	// IngestPaths ingests the given files as a batch with per-file isolation.
	IngestPaths(ctx context.Context, mode domain.IngestMode, paths []string) (*domain.IngestReport, error)

	// IngestOne ingests a single file of the docs directory with page and chunk bounds.
	// Any failure fails the call.
	IngestOne(ctx context.Context, filename string, opts domain.IngestOptions) (*domain.IngestReport, error)

	// History returns up to limit recent ingestion runs, newest first.
	History(ctx context.Context, limit int) ([]domain.IngestRun, error)
}

package driven

import (
	"context"

	"github.com/custodia-labs/ragd/internal/core/domain"
)

// IngestLedger persists the history of ingestion runs.
type IngestLedger interface {
	// Record stores a completed run and returns its ID.
	Record(ctx context.Context, run domain.IngestRun) (int64, error)

	// Recent returns up to limit runs, newest first.
	Recent(ctx context.Context, limit int) ([]domain.IngestRun, error)

	// Close releases resources.
	Close() error
}

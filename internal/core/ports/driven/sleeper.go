package driven

import (
	"context"
	"time"
)

// Sleeper waits out retry backoff delays.
// Production code uses a real timer; tests substitute a recorder so retry
// sequences run without real time passing.
type Sleeper interface {
	// Sleep blocks for d or until ctx is done, returning ctx.Err() in the latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/ragd/internal/core/domain"
	"github.com/custodia-labs/ragd/internal/core/ports/driven"
	"github.com/custodia-labs/ragd/internal/logger"
	"github.com/custodia-labs/ragd/internal/observability"
)

// Ensure TimerSleeper implements the interface.
var _ driven.Sleeper = TimerSleeper{}

// TimerSleeper waits on a real timer.
type TimerSleeper struct{}

// Sleep blocks for d or until ctx is done.
func (TimerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// withRetry drives call through the retry state machine of policy.
// Only errors wrapping domain.ErrTransient are retried. backend labels logs and metrics.
func withRetry[T any](
	ctx context.Context,
	policy domain.RetryPolicy,
	sleeper driven.Sleeper,
	backend string,
	call func(ctx context.Context) (T, error),
) (T, error) {
	var zero T
	r := policy.Start()
	for {
		start := time.Now()
		v, err := call(ctx)
		if err == nil {
			r.Succeed()
			observability.BackendAttemptsTotal.WithLabelValues(backend, observability.OutcomeOK).Inc()
			observability.BackendLatency.WithLabelValues(backend).Observe(time.Since(start).Seconds())
			return v, nil
		}
		observability.BackendAttemptsTotal.WithLabelValues(backend, observability.OutcomeError).Inc()

		r.Fail(err, errors.Is(err, domain.ErrTransient))
		if r.Done() {
			if r.Phase() == domain.RetryExhausted {
				logger.Warn("%s: giving up after %d attempts: %v", backend, r.Attempts(), err)
			}
			return zero, r.Err()
		}

		wait := r.Next()
		logger.Warn("%s attempt %d failed, retrying in %s: %v", backend, r.Attempts(), wait, err)
		if err := sleeper.Sleep(ctx, wait); err != nil {
			return zero, fmt.Errorf("%s retry wait: %w", backend, err)
		}
		observability.BackendRetryWaitSeconds.WithLabelValues(backend).Add(wait.Seconds())
		r.Waited()
	}
}

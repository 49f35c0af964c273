package domain

import (
	"fmt"
	"time"
)

// RetryPolicy bounds how a backend call is retried.
// Delays grow linearly: the wait after failed attempt n is n * BaseDelay.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// BaseDelay is the unit of the linear backoff.
	BaseDelay time.Duration
}

// Default retry policies for the two backends.
var (
	// EmbeddingRetryPolicy allows 3 attempts with 2s, 4s waits.
	EmbeddingRetryPolicy = RetryPolicy{MaxAttempts: 3, BaseDelay: 2 * time.Second}

	// GenerationRetryPolicy allows 2 attempts with a 4s wait.
	GenerationRetryPolicy = RetryPolicy{MaxAttempts: 2, BaseDelay: 4 * time.Second}
)

// Delay returns the wait that follows the given failed attempt (1-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	return time.Duration(attempt) * p.BaseDelay
}

// Start begins tracking a new call under this policy.
func (p RetryPolicy) Start() *Retry {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	return &Retry{policy: p}
}

// RetryPhase is the state of a Retry.
type RetryPhase int

// Retry phases. Succeeded, Exhausted and Aborted are terminal.
const (
	// RetryReady means the next attempt may be made immediately.
	RetryReady RetryPhase = iota

	// RetryWaiting means the caller must wait Next() before the next attempt.
	RetryWaiting

	// RetrySucceeded means the last attempt succeeded.
	RetrySucceeded

	// RetryExhausted means every allowed attempt failed with a retryable error.
	RetryExhausted

	// RetryAborted means an attempt failed with an error that must not be retried.
	RetryAborted
)

// String returns the phase name.
func (p RetryPhase) String() string {
	switch p {
	case RetryReady:
		return "ready"
	case RetryWaiting:
		return "waiting"
	case RetrySucceeded:
		return "succeeded"
	case RetryExhausted:
		return "exhausted"
	case RetryAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Retry is the state machine of one call under a RetryPolicy.
// It never sleeps itself: the caller reports each attempt's outcome and
// waits Next() while the phase is RetryWaiting.
type Retry struct {
	policy   RetryPolicy
	attempts int
	phase    RetryPhase
	next     time.Duration
	lastErr  error
}

// Succeed records a successful attempt.
func (r *Retry) Succeed() {
	if r.Done() {
		return
	}
	r.attempts++
	r.phase = RetrySucceeded
	r.next = 0
}

// Fail records a failed attempt. Retryable errors schedule another attempt
// while the budget lasts; anything else aborts the call.
func (r *Retry) Fail(err error, retryable bool) {
	if r.Done() {
		return
	}
	r.attempts++
	r.lastErr = err
	r.next = 0
	switch {
	case !retryable:
		r.phase = RetryAborted
	case r.attempts >= r.policy.MaxAttempts:
		r.phase = RetryExhausted
	default:
		r.phase = RetryWaiting
		r.next = r.policy.Delay(r.attempts)
	}
}

// Waited records that the scheduled delay has elapsed.
func (r *Retry) Waited() {
	if r.phase == RetryWaiting {
		r.phase = RetryReady
		r.next = 0
	}
}

// Phase returns the current phase.
func (r *Retry) Phase() RetryPhase { return r.phase }

// Attempts returns the number of attempts recorded so far.
func (r *Retry) Attempts() int { return r.attempts }

// Next returns the delay to wait before the next attempt.
// It is zero unless the phase is RetryWaiting.
func (r *Retry) Next() time.Duration { return r.next }

// Done reports whether the call reached a terminal phase.
func (r *Retry) Done() bool {
	switch r.phase {
	case RetrySucceeded, RetryExhausted, RetryAborted:
		return true
	default:
		return false
	}
}

// Err returns the terminal error of the call.
// Exhaustion is reported as ErrBackendUnavailable wrapping the last failure;
// an aborted call returns its failure unchanged.
func (r *Retry) Err() error {
	switch r.phase {
	case RetryExhausted:
		return fmt.Errorf("%w after %d attempts: %w", ErrBackendUnavailable, r.attempts, r.lastErr)
	case RetryAborted:
		return r.lastErr
	default:
		return nil
	}
}

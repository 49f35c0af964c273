package ai

import (
	"context"
	"sync"
	"time"
)

// Pinger is anything whose reachability can be probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Probe names a backend to check.
type Probe struct {
	Name   string
	Model  string
	Target Pinger
}

// CheckResult is the outcome of one probe.
type CheckResult struct {
	Name  string
	Model string
	Err   error
}

// OK reports whether the probe succeeded.
func (r CheckResult) OK() bool {
	return r.Err == nil
}

// HealthChecker pings backends concurrently, each bounded by a timeout.
type HealthChecker struct {
	timeout time.Duration
}

// NewHealthChecker creates a checker. A zero timeout uses the default ping timeout.
func NewHealthChecker(timeout time.Duration) *HealthChecker {
	if timeout <= 0 {
		timeout = pingTimeout
	}
	return &HealthChecker{timeout: timeout}
}

// Check runs every probe and returns results in probe order.
func (h *HealthChecker) Check(ctx context.Context, probes ...Probe) []CheckResult {
	results := make([]CheckResult, len(probes))
	var wg sync.WaitGroup
	for i, p := range probes {
		wg.Add(1)
		go func(i int, p Probe) {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, h.timeout)
			defer cancel()
			results[i] = CheckResult{Name: p.Name, Model: p.Model, Err: p.Target.Ping(pctx)}
		}(i, p)
	}
	wg.Wait()
	return results
}

// Healthy reports whether every result succeeded.
func Healthy(results []CheckResult) bool {
	for _, r := range results {
		if !r.OK() {
			return false
		}
	}
	return true
}

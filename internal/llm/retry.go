package llm

import (
	"context"
	"time"
)

// RetryPolicy is the exponential backoff every LLM caller in the pipeline
// shares: initial 2s, capped at 10s, at most 3 attempts (spec.md 5), ported
// from the tenacity-decorated continuity check in the Python original rather
// than the teacher's own linear per-attempt sleep.
type RetryPolicy struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
}

// DefaultRetryPolicy returns the policy spec.md mandates for LLM calls.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		InitialWait: 2 * time.Second,
		MaxWait:     10 * time.Second,
	}
}

// Retry invokes fn up to p.MaxAttempts times, sleeping an exponentially
// growing (capped) delay between attempts. It returns the last error if
// every attempt fails, or nil as soon as one succeeds. Context cancellation
// aborts immediately.
func Retry(ctx context.Context, p RetryPolicy, fn func() error) error {
	wait := p.InitialWait
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if attempt == p.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
		if wait > p.MaxWait {
			wait = p.MaxWait
		}
	}
	return lastErr
}

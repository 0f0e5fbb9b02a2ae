package extract

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// RetryPolicy retries an operation on a retryable condition with
// randomized exponential backoff bounded by MinWait and MaxWait. It is
// applied explicitly at the single call site that performs the network
// request.
type RetryPolicy struct {
	MaxAttempts int
	MinWait     time.Duration
	MaxWait     time.Duration
	Retryable   func(error) bool
}

// DefaultRetryPolicy matches the remote API's rate-limit behavior:
// up to 6 attempts, waits between 1s and 60s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 6,
		MinWait:     time.Second,
		MaxWait:     60 * time.Second,
		Retryable: func(err error) bool {
			return isRateLimited(err)
		},
	}
}

// Do runs fn, retrying while the returned error satisfies Retryable and
// attempts remain. Non-retryable errors propagate immediately.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(p.backoff(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if p.Retryable == nil || !p.Retryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

func (p RetryPolicy) backoff(attempt int) time.Duration {
	ceiling := float64(p.MinWait) * math.Pow(2, float64(attempt-1))
	if ceiling > float64(p.MaxWait) {
		ceiling = float64(p.MaxWait)
	}
	if ceiling <= float64(p.MinWait) {
		return p.MinWait
	}
	spread := ceiling - float64(p.MinWait)
	return p.MinWait + time.Duration(rand.Float64()*spread)
}

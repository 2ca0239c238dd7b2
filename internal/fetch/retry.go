package fetch

import (
	"context"
	"time"
)

// DefaultAttempts is the fixed retry ceiling for a fetch.
const DefaultAttempts = 3

// DefaultBackoff is the base delay; attempt n waits n times this.
const DefaultBackoff = 500 * time.Millisecond

type retryFetcher struct {
	next     Fetcher
	attempts int
	backoff  time.Duration
}

// WithRetry decorates a fetcher with a bounded retry policy. The delay grows
// by a per-attempt multiplier; the sleep is cut short on context cancellation.
func WithRetry(next Fetcher, attempts int, backoff time.Duration) Fetcher {
	if attempts < 1 {
		attempts = 1
	}
	return &retryFetcher{next: next, attempts: attempts, backoff: backoff}
}

func (r *retryFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= r.attempts; attempt++ {
		data, err := r.next.Fetch(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err

		if attempt == r.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * r.backoff):
		}
	}

	return nil, lastErr
}

package indexer

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
)

const maxRetryDelay = 30 * time.Second

// withRetry calls fn until it succeeds or maxRetries retries have failed,
// doubling the delay between attempts up to maxRetryDelay. A cancelled
// context ends the loop immediately.
func withRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}

	delay := baseDelay
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries || errors.Is(err, context.Canceled) {
			return errors.Wrapf(err, "after %d attempts", attempt+1)
		}

		if err := sleep(ctx, delay); err != nil {
			return err
		}
		delay = min(delay*2, maxRetryDelay)
	}
}

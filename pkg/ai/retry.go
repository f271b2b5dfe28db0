package ai

import (
	"context"
	"time"
)

// Retry runs fn, retrying on recoverable errors per cfg with exponential
// backoff. Fatal and unclassified errors are returned immediately, as is the
// last error once retries are exhausted. Context cancellation aborts waiting.
func Retry(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	delay := cfg.InitialDelay

	var err error
	for attempt := 0; ; attempt++ {
		err = fn(ctx)
		if err == nil || !IsRecoverable(err) {
			return err
		}
		if attempt >= cfg.MaxRetries {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}

		delay = time.Duration(float64(delay) * cfg.BackoffFactor)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
}

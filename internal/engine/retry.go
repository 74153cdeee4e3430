package engine

import (
	"context"
	"time"

	"media-convert/internal/logging"
)

// retryConfig bounds retries of transient failures with exponential backoff.
type retryConfig struct {
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

func defaultRetryConfig() retryConfig {
	return retryConfig{
		maxRetries:     3,
		initialBackoff: 500 * time.Millisecond,
		maxBackoff:     5 * time.Second,
	}
}

// retryTransient runs op until it succeeds, fails permanently, or exhausts
// the retry budget. transient classifies which errors are worth retrying.
func retryTransient(ctx context.Context, cfg retryConfig, name string, op func() error, transient func(error) bool) error {
	backoff := cfg.initialBackoff
	var lastErr error

	for attempt := 0; attempt <= cfg.maxRetries; attempt++ {
		err := op()
		if err == nil {
			if attempt > 0 {
				logging.Info("%s succeeded on retry %d", name, attempt)
			}
			return nil
		}

		lastErr = err
		if !transient(err) {
			return err
		}

		if attempt < cfg.maxRetries {
			logging.Debug("%s failed, retrying in %v (attempt %d/%d): %v",
				name, backoff, attempt+1, cfg.maxRetries, err)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff *= 2
			if backoff > cfg.maxBackoff {
				backoff = cfg.maxBackoff
			}
		}
	}

	logging.Warn("%s failed after %d retries: %v", name, cfg.maxRetries, lastErr)
	return lastErr
}

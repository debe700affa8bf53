package crawl

import (
	"context"
	"math/rand"
	"time"
)

// retryConfig controls the bounded exponential backoff used by the
// post-pass validator when re-fetching a node whose status came back
// non-numeric. It is intentionally small: this is a last-chance
// re-probe, not a general-purpose HTTP client retry policy.
type retryConfig struct {
	maxRetries    int
	initialDelay  time.Duration
	maxDelay      time.Duration
	backoffFactor float64
}

func defaultRetryConfig() retryConfig {
	return retryConfig{
		maxRetries:    2,
		initialDelay:  100 * time.Millisecond,
		maxDelay:      2 * time.Second,
		backoffFactor: 2.0,
	}
}

// retryableFunc is attempted up to cfg.maxRetries additional times,
// waiting an exponentially growing, jittered delay between attempts.
// It gives up early if ctx is cancelled.
func retryWithBackoff(ctx context.Context, cfg retryConfig, fn func(ctx context.Context) error) error {
	delay := cfg.initialDelay
	var lastErr error

	for attempt := 0; attempt <= cfg.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == cfg.maxRetries {
			break
		}

		jitterRange := float64(delay) * 0.3
		wait := time.Duration(float64(delay) + (rand.Float64()*jitterRange*2 - jitterRange))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		delay = time.Duration(float64(delay) * cfg.backoffFactor)
		if delay > cfg.maxDelay {
			delay = cfg.maxDelay
		}
	}

	return lastErr
}

package cache

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	apperrors "pennywise/internal/errors"
)

// fetchWithRetry runs fetch and retries it once after a network or server
// failure.
func (c *Cache) fetchWithRetry(ctx context.Context, key string, fetch Fetcher) (any, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryInterval
	policy.RandomizationFactor = 0
	policy.MaxElapsedTime = 0

	var out any
	op := func() error {
		v, err := fetch(ctx)
		if err != nil {
			if apperrors.Retryable(err) && ctx.Err() == nil {
				return err
			}
			return backoff.Permanent(err)
		}
		out = v
		return nil
	}
	notify := func(err error, wait time.Duration) {
		c.log.Infow("retrying fetch", "key", key, "error", err, "wait", wait)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(policy, 1), ctx)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return nil, err
	}
	return out, nil
}

package publish

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/nerrad567/pisense/internal/infrastructure/config"
)

// RetryPolicy is the bounded exponential-backoff policy applied to
// every dispatched snapshot. The same policy shape serves both backend
// variants; each Dispatcher gets its own instance from configuration.
type RetryPolicy struct {
	// MaxAttempts is the total attempt budget (first try included).
	MaxAttempts int

	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration

	// Multiplier scales the delay between consecutive retries.
	Multiplier float64
}

// PolicyFromConfig converts the config representation.
func PolicyFromConfig(cfg config.RetryConfig) RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  cfg.MaxAttempts,
		InitialDelay: cfg.GetInitialDelay(),
		Multiplier:   cfg.Multiplier,
	}
}

// newBackOff builds the backoff chain for one dispatch: exponential
// delays, capped at the attempt budget, aborted when ctx is cancelled.
func (p RetryPolicy) newBackOff(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialDelay
	b.Multiplier = p.Multiplier
	// The attempt budget bounds the retry loop, not wall-clock time.
	b.MaxElapsedTime = 0

	var retries uint64
	if p.MaxAttempts > 1 {
		retries = uint64(p.MaxAttempts - 1)
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, retries), ctx)
}

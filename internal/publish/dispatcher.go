package publish

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/nerrad567/pisense/internal/history"
)

// Dispatcher runs one Publisher's deliveries on its own goroutines so
// backends stay independent of each other and of the tick loop.
//
// At most one delivery per backend is in flight: if the previous
// snapshot is still being retried when the next tick dispatches, the
// new snapshot is skipped for that backend (the following tick's
// snapshot supersedes it anyway, since the window is cumulative).
type Dispatcher struct {
	pub     Publisher
	policy  RetryPolicy
	timeout time.Duration
	logger  Logger
	busy    atomic.Bool
}

// NewDispatcher creates a Dispatcher for one backend.
func NewDispatcher(pub Publisher, policy RetryPolicy, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		pub:     pub,
		policy:  policy,
		timeout: timeout,
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the dispatcher.
func (d *Dispatcher) SetLogger(logger Logger) {
	d.logger = logger
}

// Name returns the backend name.
func (d *Dispatcher) Name() string {
	return d.pub.Name()
}

// Dispatch hands a snapshot to the backend and returns immediately.
//
// The delivery goroutine is registered on wg so the scheduler can grant
// a grace period at shutdown; cancelling ctx abandons the delivery.
// Returns false when the backend is still busy with the previous
// snapshot and this one was skipped.
func (d *Dispatcher) Dispatch(ctx context.Context, snap history.Snapshot, wg *sync.WaitGroup) bool {
	if !d.busy.CompareAndSwap(false, true) {
		d.logger.Warn("previous publish still in flight, skipping snapshot",
			"backend", d.pub.Name(),
		)
		return false
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer d.busy.Store(false)
		d.deliver(ctx, snap)
	}()
	return true
}

// deliver runs the bounded retry loop for one snapshot.
func (d *Dispatcher) deliver(ctx context.Context, snap history.Snapshot) {
	attempt := Attempt{Backend: d.pub.Name()}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	op := func() error {
		attempt.Attempts++
		err := d.pub.Publish(ctx, snap)
		if errors.Is(err, ErrNothingToPublish) {
			d.logger.Debug("nothing new to publish", "backend", attempt.Backend)
			return nil
		}
		return err
	}

	notify := func(err error, next time.Duration) {
		attempt.LastErr = err
		d.logger.Warn("publish attempt failed",
			"backend", attempt.Backend,
			"attempt", attempt.Attempts,
			"max_attempts", d.policy.MaxAttempts,
			"retry_in", next,
			"error", err,
		)
	}

	if err := backoff.RetryNotify(op, d.policy.newBackOff(ctx), notify); err != nil {
		// Budget spent or context cancelled: log and drop, never fatal.
		d.logger.Error("publish failed, dropping snapshot",
			"backend", attempt.Backend,
			"attempts", attempt.Attempts,
			"points", snap.Points(),
			"error", err,
		)
		return
	}

	d.logger.Debug("publish complete",
		"backend", attempt.Backend,
		"attempts", attempt.Attempts,
		"points", snap.Points(),
	)
}

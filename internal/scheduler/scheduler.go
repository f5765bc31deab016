package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/nerrad567/pisense/internal/history"
	"github.com/nerrad567/pisense/internal/telemetry"
)

// State is the scheduler lifecycle state, exposed for logging and tests.
type State string

// Lifecycle states.
const (
	StateInitializing State = "initializing"
	StateIdle         State = "idle"
	StateSampling     State = "sampling"
	StateDispatching  State = "dispatching"
	StateShuttingDown State = "shutting_down"
	StateStopped      State = "stopped"
)

// Collector is the sampling boundary.
// Implemented by sensor.Aggregator.
type Collector interface {
	Collect(ctx context.Context) telemetry.ReadingSet
}

// Dispatcher is the publish boundary.
// Implemented by publish.Dispatcher.
type Dispatcher interface {
	Name() string
	Dispatch(ctx context.Context, snap history.Snapshot, wg *sync.WaitGroup) bool
}

// Logger is the minimal logging interface used by this package.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}

// Scheduler runs the fixed-interval sampling pipeline.
type Scheduler struct {
	collector   Collector
	buffer      *history.Buffer
	dispatchers []Dispatcher
	interval    time.Duration
	grace       time.Duration
	logger      Logger

	stateMu sync.RWMutex
	state   State

	// wg tracks in-flight publish deliveries across all dispatchers.
	wg sync.WaitGroup
}

// New creates a Scheduler.
//
// Parameters:
//   - collector: samples all sources for one tick
//   - buffer: the retention window readings are appended to
//   - dispatchers: one per backend; an empty slice is valid (sample-only)
//   - interval: the tick period
//   - grace: how long in-flight publishes may finish during shutdown
func New(collector Collector, buffer *history.Buffer, dispatchers []Dispatcher, interval, grace time.Duration) *Scheduler {
	return &Scheduler{
		collector:   collector,
		buffer:      buffer,
		dispatchers: dispatchers,
		interval:    interval,
		grace:       grace,
		logger:      noopLogger{},
		state:       StateInitializing,
	}
}

// SetLogger sets the logger for the scheduler.
func (s *Scheduler) SetLogger(logger Logger) {
	s.logger = logger
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

func (s *Scheduler) setState(state State) {
	s.stateMu.Lock()
	s.state = state
	s.stateMu.Unlock()
}

// Run drives the tick loop until ctx is cancelled, then winds down.
//
// The first sample happens immediately rather than one interval in, so
// a freshly started daemon produces data right away. Ticks are strictly
// serialized: the loop is a single goroutine and a long tick delays the
// next one instead of overlapping it.
//
// Run returns after shutdown completes; in-flight publishes get the
// configured grace period and are then abandoned. Always returns nil.
func (s *Scheduler) Run(ctx context.Context) error {
	// Publishes outlive run-context cancellation: they finish (or are
	// abandoned) on this separate context during the grace period.
	pubCtx, cancelPub := context.WithCancel(context.Background())
	defer cancelPub()

	s.logger.Info("scheduler started",
		"interval", s.interval,
		"backends", len(s.dispatchers),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx, pubCtx)

	for {
		select {
		case <-ctx.Done():
			return s.shutdown(cancelPub)
		case <-ticker.C:
			s.tick(ctx, pubCtx)
		}
	}
}

// tick runs one sample-append-dispatch pass.
func (s *Scheduler) tick(ctx, pubCtx context.Context) {
	started := time.Now()

	s.setState(StateSampling)
	set := s.collector.Collect(ctx)
	s.buffer.AppendSet(set)

	s.setState(StateDispatching)
	snap := s.buffer.SnapshotAll()
	if snap.Points() > 0 {
		for _, d := range s.dispatchers {
			d.Dispatch(pubCtx, snap, &s.wg)
		}
	}

	s.logger.Debug("tick complete",
		"collected", len(set),
		"retained", snap.Points(),
		"elapsed", time.Since(started),
	)
	s.setState(StateIdle)
}

// shutdown waits out in-flight publishes, bounded by the grace period.
func (s *Scheduler) shutdown(cancelPub context.CancelFunc) error {
	s.setState(StateShuttingDown)
	s.logger.Info("scheduler shutting down", "grace", s.grace)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Debug("all publishes drained")
	case <-time.After(s.grace):
		s.logger.Warn("shutdown grace expired, abandoning in-flight publishes")
		cancelPub()
		<-done
	}

	s.setState(StateStopped)
	s.logger.Info("scheduler stopped")
	return nil
}

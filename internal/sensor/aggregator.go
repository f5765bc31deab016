package sensor

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/pisense/internal/telemetry"
)

// Aggregator queries every configured source once per tick and merges
// the results into a possibly-partial reading set.
//
// Failure semantics: a source that errors or exceeds its timeout
// contributes no entry for its metric; aggregation always proceeds for
// the remaining sources and Collect itself never fails. Sources are
// sampled concurrently, each bounded by the per-source timeout, with
// the whole pass bounded by the tick deadline.
type Aggregator struct {
	sources       []Source
	sampleTimeout time.Duration
	tickDeadline  time.Duration
	logger        Logger
}

// NewAggregator creates an Aggregator over the given sources.
func NewAggregator(sources []Source, sampleTimeout, tickDeadline time.Duration) *Aggregator {
	return &Aggregator{
		sources:       sources,
		sampleTimeout: sampleTimeout,
		tickDeadline:  tickDeadline,
		logger:        noopLogger{},
	}
}

// SetLogger sets the logger for the aggregator.
func (a *Aggregator) SetLogger(logger Logger) {
	a.logger = logger
}

// Sources returns the number of configured sources.
func (a *Aggregator) Sources() int {
	return len(a.sources)
}

// result carries one source's outcome back to the collecting goroutine.
type result struct {
	metric  telemetry.Metric
	reading telemetry.Reading
	err     error
}

// Collect samples every source for one tick.
//
// The returned set contains an entry per succeeding source and nothing
// for failed or timed-out ones. When the overall tick deadline expires,
// sources that have not reported are abandoned for this tick; their
// goroutines drain into the buffered channel and are collected by GC.
func (a *Aggregator) Collect(ctx context.Context) telemetry.ReadingSet {
	ctx, cancel := context.WithTimeout(ctx, a.tickDeadline)
	defer cancel()

	results := make(chan result, len(a.sources))
	for _, src := range a.sources {
		go func(src Source) {
			r, err := a.sampleOne(ctx, src)
			results <- result{metric: src.Metric(), reading: r, err: err}
		}(src)
	}

	set := make(telemetry.ReadingSet, len(a.sources))
	for range a.sources {
		select {
		case res := <-results:
			if res.err != nil {
				a.logger.Warn("sensor read failed",
					"metric", res.metric,
					"error", res.err,
				)
				continue
			}
			set[res.metric] = res.reading
			a.logger.Debug("sensor read",
				"metric", res.metric,
				"value", res.reading.Value,
			)
		case <-ctx.Done():
			a.logger.Warn("tick deadline reached, returning partial reading set",
				"collected", len(set),
				"sources", len(a.sources),
			)
			return set
		}
	}
	return set
}

// sampleOne runs a single source under the per-source timeout.
//
// The source runs in its own goroutine so a read that ignores ctx (a
// blocking bus transaction) still cannot hold up the tick: on timeout
// the sample is abandoned and counted as failed.
func (a *Aggregator) sampleOne(ctx context.Context, src Source) (telemetry.Reading, error) {
	sctx, cancel := context.WithTimeout(ctx, a.sampleTimeout)
	defer cancel()

	type sampled struct {
		reading telemetry.Reading
		err     error
	}
	done := make(chan sampled, 1)
	go func() {
		r, err := src.Sample(sctx)
		done <- sampled{reading: r, err: err}
	}()

	select {
	case s := <-done:
		return s.reading, s.err
	case <-sctx.Done():
		return telemetry.Reading{}, fmt.Errorf("%w: %s after %v", ErrSampleTimeout, src.Metric(), a.sampleTimeout)
	}
}

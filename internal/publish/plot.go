package publish

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/pisense/internal/history"
	"github.com/nerrad567/pisense/internal/telemetry"
)

// PointWriter is the plot backend boundary: one call per history point.
// Implemented by infrastructure/influxdb.Client.
type PointWriter interface {
	WritePoint(ctx context.Context, metric string, value float64, ts time.Time) error
}

// PlotPublisher streams the retention window to the plot backend.
//
// It keeps a per-metric high-water mark of the last successfully
// written timestamp, so each publish sends only points the backend has
// not seen. The mark advances per point as writes succeed; after a
// failed attempt the unwritten tail of the window is retransmitted on
// retry, which the backend treats as an idempotent upsert.
type PlotPublisher struct {
	writer PointWriter

	mu        sync.Mutex
	highWater map[telemetry.Metric]time.Time
}

// NewPlotPublisher creates the plot backend publisher.
func NewPlotPublisher(writer PointWriter) *PlotPublisher {
	return &PlotPublisher{
		writer:    writer,
		highWater: make(map[telemetry.Metric]time.Time),
	}
}

// Name implements Publisher.
func (p *PlotPublisher) Name() string {
	return "plot"
}

// Publish writes every point newer than the metric's high-water mark.
func (p *PlotPublisher) Publish(ctx context.Context, snap history.Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	wrote := false
	for metric, points := range snap {
		mark := p.highWater[metric]
		for _, r := range points {
			if !r.Timestamp.After(mark) {
				continue
			}
			if err := p.writer.WritePoint(ctx, string(metric), r.Value, r.Timestamp); err != nil {
				return fmt.Errorf("%w: plot write %s: %w", ErrPublishFailed, metric, err)
			}
			mark = r.Timestamp
			p.highWater[metric] = mark
			wrote = true
		}
	}

	if !wrote {
		return ErrNothingToPublish
	}
	return nil
}

package publish

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nerrad567/pisense/internal/history"
	"github.com/nerrad567/pisense/internal/telemetry"
)

// fakeWriter records written points and can fail after N writes.
type fakeWriter struct {
	points    []string
	failAfter int // fail once this many points have been written; 0 = never
}

func (w *fakeWriter) WritePoint(ctx context.Context, metric string, value float64, ts time.Time) error {
	if w.failAfter > 0 && len(w.points) >= w.failAfter {
		return errors.New("backend unavailable")
	}
	w.points = append(w.points, fmt.Sprintf("%s=%g@%d", metric, value, ts.Unix()))
	return nil
}

func plotSnapshot(base time.Time, n int) history.Snapshot {
	buf := history.New(10)
	for i := 0; i < n; i++ {
		buf.Append(telemetry.NewReading(telemetry.MetricCPUTemp, float64(40+i), base.Add(time.Duration(i)*time.Minute)))
	}
	return buf.SnapshotAll()
}

func TestPlotPublisherWritesAllPoints(t *testing.T) {
	w := &fakeWriter{}
	pub := NewPlotPublisher(w)
	base := time.Now()

	if err := pub.Publish(context.Background(), plotSnapshot(base, 3)); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(w.points) != 3 {
		t.Errorf("wrote %d points, want 3", len(w.points))
	}
}

func TestPlotPublisherSkipsAlreadyWritten(t *testing.T) {
	w := &fakeWriter{}
	pub := NewPlotPublisher(w)
	base := time.Now()
	snap := plotSnapshot(base, 3)

	if err := pub.Publish(context.Background(), snap); err != nil {
		t.Fatalf("first Publish() error = %v", err)
	}

	err := pub.Publish(context.Background(), snap)
	if !errors.Is(err, ErrNothingToPublish) {
		t.Errorf("second Publish() error = %v, want ErrNothingToPublish", err)
	}
	if len(w.points) != 3 {
		t.Errorf("wrote %d points total, want 3 (no duplicates)", len(w.points))
	}
}

func TestPlotPublisherWritesOnlyNewerPoints(t *testing.T) {
	w := &fakeWriter{}
	pub := NewPlotPublisher(w)
	base := time.Now()

	buf := history.New(10)
	buf.Append(telemetry.NewReading(telemetry.MetricCPUTemp, 40, base))
	buf.Append(telemetry.NewReading(telemetry.MetricCPUTemp, 41, base.Add(time.Minute)))
	if err := pub.Publish(context.Background(), buf.SnapshotAll()); err != nil {
		t.Fatalf("first Publish() error = %v", err)
	}

	buf.Append(telemetry.NewReading(telemetry.MetricCPUTemp, 42, base.Add(2*time.Minute)))
	if err := pub.Publish(context.Background(), buf.SnapshotAll()); err != nil {
		t.Fatalf("second Publish() error = %v", err)
	}

	if len(w.points) != 3 {
		t.Errorf("wrote %d points total, want 3", len(w.points))
	}
}

func TestPlotPublisherRetransmitsUnwrittenTail(t *testing.T) {
	w := &fakeWriter{failAfter: 1}
	pub := NewPlotPublisher(w)
	base := time.Now()
	snap := plotSnapshot(base, 3)

	err := pub.Publish(context.Background(), snap)
	if !errors.Is(err, ErrPublishFailed) {
		t.Fatalf("Publish() error = %v, want ErrPublishFailed", err)
	}
	if len(w.points) != 1 {
		t.Fatalf("wrote %d points before failure, want 1", len(w.points))
	}

	// The mark advanced past the written point, so the retry sends
	// only the unwritten tail.
	w.failAfter = 0
	if err := pub.Publish(context.Background(), snap); err != nil {
		t.Fatalf("retry Publish() error = %v", err)
	}
	if len(w.points) != 3 {
		t.Errorf("wrote %d points total, want 3", len(w.points))
	}
}

func TestPlotPublisherEmptySnapshot(t *testing.T) {
	pub := NewPlotPublisher(&fakeWriter{})

	err := pub.Publish(context.Background(), history.Snapshot{})
	if !errors.Is(err, ErrNothingToPublish) {
		t.Errorf("Publish() error = %v, want ErrNothingToPublish", err)
	}
}

package publish

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/pisense/internal/history"
	"github.com/nerrad567/pisense/internal/infrastructure/sheets"
	"github.com/nerrad567/pisense/internal/telemetry"
)

// fakeAppender records appended rows and can fail on demand.
type fakeAppender struct {
	rows []sheets.Row
	err  error
}

func (a *fakeAppender) AppendRow(ctx context.Context, row sheets.Row) error {
	if a.err != nil {
		return a.err
	}
	a.rows = append(a.rows, row)
	return nil
}

func TestSheetPublisherAppendsLatestPerMetric(t *testing.T) {
	a := &fakeAppender{}
	pub := NewSheetPublisher(a)
	base := time.Now()

	buf := history.New(10)
	buf.Append(telemetry.NewReading(telemetry.MetricCPUTemp, 40, base))
	buf.Append(telemetry.NewReading(telemetry.MetricCPUTemp, 41, base.Add(time.Minute)))
	buf.Append(telemetry.NewReading(telemetry.MetricEnvTemp, 21.5, base.Add(time.Minute)))

	if err := pub.Publish(context.Background(), buf.SnapshotAll()); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if len(a.rows) != 1 {
		t.Fatalf("appended %d rows, want 1", len(a.rows))
	}
	row := a.rows[0]
	if row.Cells["cpu_temp"] != 41 {
		t.Errorf("cpu_temp cell = %v, want 41 (newest reading)", row.Cells["cpu_temp"])
	}
	if row.Cells["env_temp"] != 21.5 {
		t.Errorf("env_temp cell = %v, want 21.5", row.Cells["env_temp"])
	}
	if !row.Timestamp.Equal(base.Add(time.Minute)) {
		t.Errorf("row timestamp = %v, want %v", row.Timestamp, base.Add(time.Minute))
	}
}

func TestSheetPublisherSkipsStaleSnapshot(t *testing.T) {
	a := &fakeAppender{}
	pub := NewSheetPublisher(a)
	base := time.Now()

	buf := history.New(10)
	buf.Append(telemetry.NewReading(telemetry.MetricCPUTemp, 40, base))
	snap := buf.SnapshotAll()

	if err := pub.Publish(context.Background(), snap); err != nil {
		t.Fatalf("first Publish() error = %v", err)
	}

	err := pub.Publish(context.Background(), snap)
	if !errors.Is(err, ErrNothingToPublish) {
		t.Errorf("stale Publish() error = %v, want ErrNothingToPublish", err)
	}
	if len(a.rows) != 1 {
		t.Errorf("appended %d rows, want 1 (no duplicate)", len(a.rows))
	}
}

func TestSheetPublisherOneRowPerTick(t *testing.T) {
	a := &fakeAppender{}
	pub := NewSheetPublisher(a)
	base := time.Now()
	buf := history.New(10)

	for i := 0; i < 3; i++ {
		buf.Append(telemetry.NewReading(telemetry.MetricCPUTemp, float64(40+i), base.Add(time.Duration(i)*time.Minute)))
		if err := pub.Publish(context.Background(), buf.SnapshotAll()); err != nil {
			t.Fatalf("tick %d Publish() error = %v", i, err)
		}
	}

	if len(a.rows) != 3 {
		t.Errorf("appended %d rows, want 3", len(a.rows))
	}
}

func TestSheetPublisherAppendFailure(t *testing.T) {
	a := &fakeAppender{err: errors.New("service down")}
	pub := NewSheetPublisher(a)

	buf := history.New(10)
	buf.Append(telemetry.NewReading(telemetry.MetricCPUTemp, 40, time.Now()))

	err := pub.Publish(context.Background(), buf.SnapshotAll())
	if !errors.Is(err, ErrPublishFailed) {
		t.Errorf("Publish() error = %v, want ErrPublishFailed", err)
	}
}

func TestSheetPublisherRetryAfterFailureAppends(t *testing.T) {
	a := &fakeAppender{err: errors.New("service down")}
	pub := NewSheetPublisher(a)
	base := time.Now()

	buf := history.New(10)
	buf.Append(telemetry.NewReading(telemetry.MetricCPUTemp, 40, base))
	snap := buf.SnapshotAll()

	if err := pub.Publish(context.Background(), snap); err == nil {
		t.Fatal("Publish() succeeded, want failure")
	}

	// Failed append must not advance the row mark: the retry appends.
	a.err = nil
	if err := pub.Publish(context.Background(), snap); err != nil {
		t.Fatalf("retry Publish() error = %v", err)
	}
	if len(a.rows) != 1 {
		t.Errorf("appended %d rows, want 1", len(a.rows))
	}
}

func TestSheetPublisherEmptySnapshot(t *testing.T) {
	pub := NewSheetPublisher(&fakeAppender{})

	err := pub.Publish(context.Background(), history.Snapshot{})
	if !errors.Is(err, ErrNothingToPublish) {
		t.Errorf("Publish() error = %v, want ErrNothingToPublish", err)
	}
}

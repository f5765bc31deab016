package history

import (
	"testing"
	"time"

	"github.com/nerrad567/pisense/internal/telemetry"
)

func reading(m telemetry.Metric, value float64, offset int) telemetry.Reading {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return telemetry.NewReading(m, value, base.Add(time.Duration(offset)*time.Second))
}

func TestBuffer_FIFOEviction(t *testing.T) {
	b := New(3)

	for i, v := range []float64{10, 20, 30, 40} {
		b.Append(reading(telemetry.MetricCPUTemp, v, i))
	}

	snap := b.Snapshot(telemetry.MetricCPUTemp)
	want := []float64{20, 30, 40}
	if len(snap) != len(want) {
		t.Fatalf("Snapshot() len = %d, want %d", len(snap), len(want))
	}
	for i, r := range snap {
		if r.Value != want[i] {
			t.Errorf("Snapshot()[%d].Value = %v, want %v", i, r.Value, want[i])
		}
	}
}

func TestBuffer_NeverExceedsCapacity(t *testing.T) {
	const capacity = 5
	b := New(capacity)

	for i := 0; i < 50; i++ {
		b.Append(reading(telemetry.MetricEnvTemp, float64(i), i))
		if got := b.Len(telemetry.MetricEnvTemp); got > capacity {
			t.Fatalf("Len() = %d after %d appends, capacity %d", got, i+1, capacity)
		}
	}

	// The window must hold the 5 most recent values in order.
	snap := b.Snapshot(telemetry.MetricEnvTemp)
	for i, r := range snap {
		if want := float64(45 + i); r.Value != want {
			t.Errorf("Snapshot()[%d].Value = %v, want %v", i, r.Value, want)
		}
	}
}

func TestBuffer_ChronologicalOrder(t *testing.T) {
	b := New(10)
	for i := 0; i < 10; i++ {
		b.Append(reading(telemetry.MetricEnvPressure, float64(i), i))
	}

	snap := b.Snapshot(telemetry.MetricEnvPressure)
	for i := 1; i < len(snap); i++ {
		if !snap[i].Timestamp.After(snap[i-1].Timestamp) {
			t.Errorf("Snapshot()[%d] not after [%d]: %v vs %v",
				i, i-1, snap[i].Timestamp, snap[i-1].Timestamp)
		}
	}
}

func TestBuffer_InvalidReadingIgnored(t *testing.T) {
	b := New(3)
	b.Append(telemetry.Reading{Metric: telemetry.MetricCPUTemp})

	if got := b.Len(telemetry.MetricCPUTemp); got != 0 {
		t.Errorf("Len() = %d after invalid append, want 0", got)
	}
}

func TestBuffer_EmptySetLeavesHistoryUntouched(t *testing.T) {
	b := New(3)
	b.Append(reading(telemetry.MetricCPUTemp, 42, 0))

	b.AppendSet(telemetry.ReadingSet{})

	snap := b.Snapshot(telemetry.MetricCPUTemp)
	if len(snap) != 1 || snap[0].Value != 42 {
		t.Errorf("Snapshot() = %v, want single reading of 42", snap)
	}
}

func TestBuffer_SnapshotIsolation(t *testing.T) {
	b := New(5)
	b.Append(reading(telemetry.MetricEnvHumidity, 55, 0))

	snap := b.Snapshot(telemetry.MetricEnvHumidity)
	b.Append(reading(telemetry.MetricEnvHumidity, 60, 1))

	if len(snap) != 1 {
		t.Fatalf("snapshot mutated by later append: len = %d, want 1", len(snap))
	}
	if snap[0].Value != 55 {
		t.Errorf("snapshot[0].Value = %v, want 55", snap[0].Value)
	}
}

func TestBuffer_SnapshotAll(t *testing.T) {
	b := New(5)
	b.AppendSet(telemetry.ReadingSet{
		telemetry.MetricCPUTemp: reading(telemetry.MetricCPUTemp, 48.2, 0),
		telemetry.MetricEnvTemp: reading(telemetry.MetricEnvTemp, 21.5, 0),
	})

	snap := b.SnapshotAll()
	if len(snap) != 2 {
		t.Fatalf("SnapshotAll() metrics = %d, want 2", len(snap))
	}
	if snap.Points() != 2 {
		t.Errorf("Points() = %d, want 2", snap.Points())
	}

	latest := snap.Latest()
	if latest[telemetry.MetricCPUTemp].Value != 48.2 {
		t.Errorf("Latest() cpu_temp = %v, want 48.2", latest[telemetry.MetricCPUTemp].Value)
	}
}

func TestBuffer_MetricWithNoReadingsAbsentFromSnapshot(t *testing.T) {
	b := New(5)
	b.Append(reading(telemetry.MetricCPUTemp, 50, 0))

	snap := b.SnapshotAll()
	if _, ok := snap[telemetry.MetricOutdoorTemp]; ok {
		t.Error("SnapshotAll() contains outdoor_temp with zero successful readings")
	}
	if got := b.Snapshot(telemetry.MetricOutdoorTemp); got != nil {
		t.Errorf("Snapshot(outdoor_temp) = %v, want nil", got)
	}
}

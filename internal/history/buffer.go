package history

import (
	"sync"

	"github.com/nerrad567/pisense/internal/telemetry"
)

// DefaultCapacity is the per-metric point count used when the
// configuration does not set one.
const DefaultCapacity = 200

// Buffer is the bounded per-metric retention window.
//
// Invariant: for every metric, len(points) <= capacity, and the stored
// points are always the most recently appended readings in
// chronological order.
//
// Thread Safety:
//   - Append has a single logical writer (the scheduler tick loop).
//   - Snapshot and SnapshotAll may be called concurrently from
//     publisher goroutines; they return copies.
type Buffer struct {
	mu       sync.RWMutex
	capacity int
	points   map[telemetry.Metric][]telemetry.Reading
}

// New creates a Buffer holding up to capacity points per metric.
// A non-positive capacity falls back to DefaultCapacity.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		capacity: capacity,
		points:   make(map[telemetry.Metric][]telemetry.Reading),
	}
}

// Capacity returns the per-metric point limit.
func (b *Buffer) Capacity() int {
	return b.capacity
}

// Append adds one reading to its metric's window, evicting the oldest
// point first when the window is full. Invalid readings are ignored so
// an all-failed tick leaves prior history untouched.
func (b *Buffer) Append(r telemetry.Reading) {
	if !r.Valid {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	pts := b.points[r.Metric]
	if len(pts) >= b.capacity {
		copy(pts, pts[1:])
		pts[len(pts)-1] = r
	} else {
		pts = append(pts, r)
	}
	b.points[r.Metric] = pts
}

// AppendSet appends every reading of a tick's reading set.
// An empty set appends nothing.
func (b *Buffer) AppendSet(rs telemetry.ReadingSet) {
	for _, r := range rs {
		b.Append(r)
	}
}

// Len returns the number of points currently retained for a metric.
func (b *Buffer) Len(m telemetry.Metric) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.points[m])
}

// Snapshot returns a copy of one metric's window in chronological
// order, or nil if the metric has no successful readings yet.
func (b *Buffer) Snapshot(m telemetry.Metric) []telemetry.Reading {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return copyPoints(b.points[m])
}

// SnapshotAll returns a copy of every non-empty metric window.
func (b *Buffer) SnapshotAll() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	snap := make(Snapshot, len(b.points))
	for m, pts := range b.points {
		if len(pts) == 0 {
			continue
		}
		snap[m] = copyPoints(pts)
	}
	return snap
}

func copyPoints(pts []telemetry.Reading) []telemetry.Reading {
	if len(pts) == 0 {
		return nil
	}
	out := make([]telemetry.Reading, len(pts))
	copy(out, pts)
	return out
}

// Snapshot is a read-isolated copy of the buffer state, handed to
// publishers at dispatch time.
type Snapshot map[telemetry.Metric][]telemetry.Reading

// Latest returns the newest reading per metric, reconstructing the
// tick's reading-set view from the snapshot.
func (s Snapshot) Latest() telemetry.ReadingSet {
	set := make(telemetry.ReadingSet, len(s))
	for m, pts := range s {
		if len(pts) == 0 {
			continue
		}
		set[m] = pts[len(pts)-1]
	}
	return set
}

// Points returns the total number of points across all metrics.
func (s Snapshot) Points() int {
	n := 0
	for _, pts := range s {
		n += len(pts)
	}
	return n
}

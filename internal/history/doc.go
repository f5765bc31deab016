// Package history implements the bounded per-metric retention window.
//
// Each metric keeps an insertion-ordered (chronological) sequence of
// readings capped at a fixed capacity; appending beyond capacity evicts
// the oldest reading first (strict FIFO). The buffer has a single
// logical writer (the scheduler's tick loop); publishers only ever see
// read-isolated snapshot copies, so a publisher iterating a snapshot is
// unaffected by subsequent appends.
package history

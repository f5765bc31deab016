// Package publish delivers history snapshots to the persistence and
// visualization backends.
//
// Two Publisher variants exist: the plot publisher streams window
// points to the time-series backend, and the sheet publisher appends
// one row per tick to the spreadsheet store. Both share the same
// bounded exponential-backoff retry policy but run through independent
// Dispatchers: a failure or stall in one backend never delays the
// other, and publish failure is never fatal: after the attempt budget
// is spent the snapshot is logged and dropped.
//
// Dispatch is fire-and-continue: the scheduler hands a snapshot to each
// Dispatcher and returns to its tick loop immediately. A backend whose
// previous snapshot is still in flight skips the new one rather than
// queueing behind it.
package publish

// Package scheduler owns the daemon lifecycle: the fixed-interval tick
// loop, dispatch to the publishers, and graceful shutdown.
//
// # Tick Loop
//
// Ticks run on a single goroutine. One tick samples every source
// (bounded by the tick deadline), appends the results to the history
// buffer, snapshots it, and hands the snapshot to each publisher's
// dispatcher. Because the loop is one goroutine and time.Ticker
// coalesces missed ticks, ticks never overlap: a tick that runs long
// delays the next one rather than racing it.
//
// # Shutdown
//
// Cancelling the run context stops the loop after the in-progress tick
// step completes. Publishes already in flight get a bounded grace
// period to finish; when it expires their context is cancelled and the
// scheduler returns regardless. The heartbeat is not the scheduler's to
// stop; main keeps it running until the scheduler has fully wound down.
package scheduler

// Package heartbeat drives the liveness indicator.
//
// The heartbeat is deliberately independent of the sampling pipeline:
// it runs on its own goroutine with its own ticker, so a blinking LED
// means "the process is alive and scheduling work", nothing more. A
// tick whose sensors all fail, or whose publishes are all down, does
// not interrupt the blink.
//
// Two outputs hang off the same loop:
//
//   - an Indicator (GPIO LED) toggled every interval
//   - an optional Beater (MQTT beacon) that emits a beat each time the
//     indicator turns on
//
// Indicator and beacon errors are logged and swallowed. The heartbeat
// is the last thing a failing daemon still does; it must never be the
// reason the daemon fails.
package heartbeat

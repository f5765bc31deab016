// Package telemetry defines the core data model shared by the sampling
// pipeline: metric identifiers, individual readings, and the per-tick
// reading set.
//
// Values in this package are plain data. They carry no behaviour beyond
// accessors and are safe to copy; a Reading is immutable once produced
// by a sensor source.
package telemetry

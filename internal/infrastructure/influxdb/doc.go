// Package influxdb provides the plot backend client.
//
// It wraps the InfluxDB v2 client for writing sensor readings as
// timestamped points. Writes use the blocking API so each write returns
// its own error; the publish layer's retry policy decides what happens
// after a failure, rather than an async batch silently dropping points.
//
// # Point Shape
//
// Every reading becomes one point in the "sensor_readings" measurement,
// tagged with the site name and metric identifier, with a single
// "value" field. Timestamps come from the reading, not write time, so a
// retried backlog lands at the correct plot position.
//
// # Thread Safety
//
//   - All methods are safe for concurrent use from multiple goroutines.
package influxdb

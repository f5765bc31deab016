package telemetry

import (
	"sort"
	"time"
)

// Metric identifies one measured quantity.
//
// The set of metrics is closed: every sensor source produces exactly one
// of these, and the history buffer, publishers, and sheet columns are
// keyed by them.
type Metric string

// Known metrics.
const (
	// MetricCPUTemp is the SoC core temperature in °C.
	MetricCPUTemp Metric = "cpu_temp"

	// MetricEnvTemp is the ambient temperature in °C from the BME280.
	MetricEnvTemp Metric = "env_temp"

	// MetricEnvPressure is the barometric pressure in hPa from the BME280.
	MetricEnvPressure Metric = "env_pressure"

	// MetricEnvHumidity is the relative humidity in %rH from the BME280.
	MetricEnvHumidity Metric = "env_humidity"

	// MetricOutdoorTemp is the outdoor temperature in °C from the
	// weather service.
	MetricOutdoorTemp Metric = "outdoor_temp"
)

// Metrics returns all known metrics in stable, presentation order.
func Metrics() []Metric {
	return []Metric{
		MetricCPUTemp,
		MetricEnvTemp,
		MetricEnvPressure,
		MetricEnvHumidity,
		MetricOutdoorTemp,
	}
}

// Valid reports whether m is one of the known metrics.
func (m Metric) Valid() bool {
	switch m {
	case MetricCPUTemp, MetricEnvTemp, MetricEnvPressure, MetricEnvHumidity, MetricOutdoorTemp:
		return true
	}
	return false
}

// Unit returns the display unit for the metric.
func (m Metric) Unit() string {
	switch m {
	case MetricEnvPressure:
		return "hPa"
	case MetricEnvHumidity:
		return "%rH"
	default:
		return "°C"
	}
}

// Reading is one timestamped sensor value.
//
// A Reading is produced once per tick per sensor source and is immutable
// after creation. Valid is false only for the zero value; a source that
// cannot produce a value returns an error instead of an invalid Reading.
type Reading struct {
	Metric    Metric
	Timestamp time.Time
	Value     float64
	Valid     bool
}

// NewReading builds a valid Reading stamped with the given time.
func NewReading(metric Metric, value float64, ts time.Time) Reading {
	return Reading{
		Metric:    metric,
		Timestamp: ts,
		Value:     value,
		Valid:     true,
	}
}

// ReadingSet maps metrics to the Reading produced for them in one tick.
//
// A metric whose source failed (or timed out) for the tick is simply
// absent. The set is transient: it exists only between the aggregator
// and the history buffer / publisher handoff.
type ReadingSet map[Metric]Reading

// Present returns the metrics in the set, sorted for deterministic
// iteration (logging, sheet rows).
func (rs ReadingSet) Present() []Metric {
	out := make([]Metric, 0, len(rs))
	for m := range rs {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Latest returns the most recent timestamp across the set, or the zero
// time for an empty set.
func (rs ReadingSet) Latest() time.Time {
	var latest time.Time
	for _, r := range rs {
		if r.Timestamp.After(latest) {
			latest = r.Timestamp
		}
	}
	return latest
}

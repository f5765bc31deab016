package sensor

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/pisense/internal/telemetry"
)

// millidegreesPerDegree converts the sysfs thermal zone value to °C.
const millidegreesPerDegree = 1000.0

// CPUTemp reads the SoC core temperature from a sysfs thermal zone.
//
// On a Raspberry Pi this is /sys/class/thermal/thermal_zone0/temp,
// which reports millidegrees Celsius as ASCII.
type CPUTemp struct {
	path string
}

// NewCPUTemp creates a CPU temperature source reading from path.
func NewCPUTemp(path string) *CPUTemp {
	return &CPUTemp{path: path}
}

// Metric returns telemetry.MetricCPUTemp.
func (s *CPUTemp) Metric() telemetry.Metric {
	return telemetry.MetricCPUTemp
}

// Sample reads and parses the thermal zone file.
// The read is local and fast; ctx is only checked up front.
func (s *CPUTemp) Sample(ctx context.Context) (telemetry.Reading, error) {
	if err := ctx.Err(); err != nil {
		return telemetry.Reading{}, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return telemetry.Reading{}, fmt.Errorf("%w: reading %s: %w", ErrReadFailed, s.path, err)
	}

	raw, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return telemetry.Reading{}, fmt.Errorf("%w: parsing %s: %w", ErrReadFailed, s.path, err)
	}

	return telemetry.NewReading(telemetry.MetricCPUTemp, raw/millidegreesPerDegree, time.Now()), nil
}

package sensor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/host/v3"

	"github.com/nerrad567/pisense/internal/telemetry"
)

// hPaPerPascal scales physic.Pressure (nano-Pascal base) to hectopascal.
const hPaPerPascal = 100

// BME280 owns the I²C environment sensor shared by the env_temp,
// env_pressure, and env_humidity sources.
//
// A single Sense transaction reads all three quantities; the mutex
// serialises concurrent samples from the three sources onto the bus.
type BME280 struct {
	mu  sync.Mutex
	bus i2c.BusCloser
	dev *bmxx80.Dev
}

// OpenBME280 initialises the periph.io host, opens the I²C bus, and
// probes the sensor at addr. busName empty selects the default bus
// (usually /dev/i2c-1 on a Raspberry Pi).
func OpenBME280(busName string, addr uint16) (*BME280, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%w: initialising periph host: %w", ErrReadFailed, err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("%w: opening I2C bus %q: %w", ErrReadFailed, busName, err)
	}

	dev, err := bmxx80.NewI2C(bus, addr, &bmxx80.DefaultOpts)
	if err != nil {
		bus.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("%w: probing BME280 at 0x%02x: %w", ErrReadFailed, addr, err)
	}

	return &BME280{bus: bus, dev: dev}, nil
}

// Close halts the sensor and releases the bus.
func (d *BME280) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.dev != nil {
		if err := d.dev.Halt(); err != nil {
			d.bus.Close() //nolint:errcheck // Bus close still attempted below
			return fmt.Errorf("halting BME280: %w", err)
		}
	}
	return d.bus.Close()
}

// sense performs one measurement transaction on the bus.
func (d *BME280) sense() (physic.Env, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var env physic.Env
	if err := d.dev.Sense(&env); err != nil {
		return physic.Env{}, fmt.Errorf("%w: BME280 sense: %w", ErrReadFailed, err)
	}
	return env, nil
}

// Sources returns the three sources backed by this device, one per
// metric, sharing the device handle.
func (d *BME280) Sources() []Source {
	return []Source{
		&envTemperature{dev: d},
		&envPressure{dev: d},
		&envHumidity{dev: d},
	}
}

type envTemperature struct {
	dev *BME280
}

func (s *envTemperature) Metric() telemetry.Metric {
	return telemetry.MetricEnvTemp
}

func (s *envTemperature) Sample(ctx context.Context) (telemetry.Reading, error) {
	if err := ctx.Err(); err != nil {
		return telemetry.Reading{}, err
	}
	env, err := s.dev.sense()
	if err != nil {
		return telemetry.Reading{}, err
	}
	return telemetry.NewReading(telemetry.MetricEnvTemp, env.Temperature.Celsius(), time.Now()), nil
}

type envPressure struct {
	dev *BME280
}

func (s *envPressure) Metric() telemetry.Metric {
	return telemetry.MetricEnvPressure
}

func (s *envPressure) Sample(ctx context.Context) (telemetry.Reading, error) {
	if err := ctx.Err(); err != nil {
		return telemetry.Reading{}, err
	}
	env, err := s.dev.sense()
	if err != nil {
		return telemetry.Reading{}, err
	}
	hPa := float64(env.Pressure) / float64(hPaPerPascal*physic.Pascal)
	return telemetry.NewReading(telemetry.MetricEnvPressure, hPa, time.Now()), nil
}

type envHumidity struct {
	dev *BME280
}

func (s *envHumidity) Metric() telemetry.Metric {
	return telemetry.MetricEnvHumidity
}

func (s *envHumidity) Sample(ctx context.Context) (telemetry.Reading, error) {
	if err := ctx.Err(); err != nil {
		return telemetry.Reading{}, err
	}
	env, err := s.dev.sense()
	if err != nil {
		return telemetry.Reading{}, err
	}
	// A BMP280 (no humidity element) reports zero here; surface that as
	// a read failure rather than logging a permanent 0 %rH.
	if env.Humidity == 0 {
		return telemetry.Reading{}, fmt.Errorf("%w: sensor reports no humidity (BMP280?)", ErrReadFailed)
	}
	pct := float64(env.Humidity) / float64(physic.PercentRH)
	return telemetry.NewReading(telemetry.MetricEnvHumidity, pct, time.Now()), nil
}

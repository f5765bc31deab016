package heartbeat

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Indicator is a binary liveness output.
type Indicator interface {
	// Set drives the indicator on or off.
	Set(on bool) error
}

// LED drives a GPIO pin as the heartbeat indicator.
type LED struct {
	pin gpio.PinIO
}

// OpenLED resolves a GPIO pin by periph.io name (e.g. "GPIO17") and
// configures it as an output, initially off.
func OpenLED(name string) (*LED, error) {
	// Idempotent; safe even when another driver already initialised.
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("initialising host drivers: %w", err)
	}

	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("gpio pin %q not found", name)
	}
	if err := pin.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("configuring gpio pin %q as output: %w", name, err)
	}

	return &LED{pin: pin}, nil
}

// Set implements Indicator.
func (l *LED) Set(on bool) error {
	level := gpio.Low
	if on {
		level = gpio.High
	}
	if err := l.pin.Out(level); err != nil {
		return fmt.Errorf("driving gpio pin %s: %w", l.pin.Name(), err)
	}
	return nil
}

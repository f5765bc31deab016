package sensor

import "errors"

// Sentinel errors for sensor operations.
//
// These can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, sensor.ErrSampleTimeout) {
//	    // Source exceeded its per-tick deadline
//	}
var (
	// ErrSampleTimeout indicates a source did not produce a reading
	// within its timeout; it is treated as a read failure for the tick.
	ErrSampleTimeout = errors.New("sensor: sample timeout")

	// ErrReadFailed indicates the underlying hardware or service read failed.
	ErrReadFailed = errors.New("sensor: read failed")

	// ErrBadResponse indicates the weather service returned a response
	// that could not be interpreted as a reading.
	ErrBadResponse = errors.New("sensor: bad response")
)

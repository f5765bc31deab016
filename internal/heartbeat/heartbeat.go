package heartbeat

import (
	"context"
	"time"
)

// DefaultInterval is the toggle period used when configuration does not
// set one.
const DefaultInterval = time.Second

// Beater emits a liveness beat to an external observer.
// Implemented by mqtt.Client.
type Beater interface {
	PublishBeat() error
}

// Logger is the minimal logging interface used by this package.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Heartbeat toggles an indicator at a fixed interval for as long as its
// context lives.
type Heartbeat struct {
	indicator Indicator
	beater    Beater // optional
	interval  time.Duration
	logger    Logger
}

// New creates a Heartbeat. A non-positive interval falls back to
// DefaultInterval; beater may be nil.
func New(indicator Indicator, beater Beater, interval time.Duration) *Heartbeat {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Heartbeat{
		indicator: indicator,
		beater:    beater,
		interval:  interval,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the heartbeat.
func (h *Heartbeat) SetLogger(logger Logger) {
	h.logger = logger
}

// Run blinks until ctx is cancelled, then leaves the indicator off.
//
// Indicator and beacon errors are logged and swallowed; the loop keeps
// going regardless. Run blocks and always returns nil after cleanup so
// callers can treat it like the other long-running loops.
func (h *Heartbeat) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	on := false
	for {
		select {
		case <-ctx.Done():
			if err := h.indicator.Set(false); err != nil {
				h.logger.Warn("failed to turn heartbeat indicator off", "error", err)
			}
			h.logger.Debug("heartbeat stopped")
			return nil

		case <-ticker.C:
			on = !on
			if err := h.indicator.Set(on); err != nil {
				h.logger.Warn("heartbeat indicator error", "error", err)
			}
			if on && h.beater != nil {
				if err := h.beater.PublishBeat(); err != nil {
					h.logger.Debug("heartbeat beacon error", "error", err)
				}
			}
		}
	}
}

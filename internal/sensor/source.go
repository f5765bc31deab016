package sensor

import (
	"context"

	"github.com/nerrad567/pisense/internal/telemetry"
)

// Source wraps one physical or external reading.
//
// Sample must respect ctx cancellation where the underlying transport
// allows it; the aggregator additionally bounds every call with a
// timeout, so a source that cannot observe ctx (a blocking bus read)
// is abandoned rather than waited on. A failing source returns a typed
// error and must not panic the caller. Sources have no side effects
// beyond the physical read itself.
type Source interface {
	// Metric identifies the single metric this source produces.
	Metric() telemetry.Metric

	// Sample produces one timestamped reading, or an error.
	Sample(ctx context.Context) (telemetry.Reading, error)
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

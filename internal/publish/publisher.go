package publish

import (
	"context"

	"github.com/nerrad567/pisense/internal/history"
)

// Publisher pushes a history snapshot to one backend.
//
// Implementations decide their own serialization and transport; the
// shared contract is that Publish honours ctx, returns an error the
// retry policy can act on, and keeps whatever bookkeeping it needs so
// a retried or subsequent publish does not duplicate data.
type Publisher interface {
	// Name identifies the backend in logs and attempt records.
	Name() string

	// Publish pushes the snapshot. Returning ErrNothingToPublish marks
	// a clean no-op; any other error triggers the retry policy.
	Publish(ctx context.Context, snap history.Snapshot) error
}

// Attempt records the lifecycle of one dispatched snapshot.
//
// It is created at dispatch, updated per retry, and discarded once the
// publish succeeds or the budget is spent.
type Attempt struct {
	Backend  string
	Attempts int
	LastErr  error
}

// Logger is the minimal logging interface used by this package.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

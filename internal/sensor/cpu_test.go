package sensor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nerrad567/pisense/internal/telemetry"
)

func writeThermalZone(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "temp")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write thermal zone file: %v", err)
	}
	return path
}

func TestCPUTemp_Sample(t *testing.T) {
	src := NewCPUTemp(writeThermalZone(t, "48234\n"))

	r, err := src.Sample(context.Background())
	if err != nil {
		t.Fatalf("Sample() error = %v", err)
	}
	if r.Metric != telemetry.MetricCPUTemp {
		t.Errorf("Metric = %q, want %q", r.Metric, telemetry.MetricCPUTemp)
	}
	if r.Value != 48.234 {
		t.Errorf("Value = %v, want 48.234", r.Value)
	}
	if !r.Valid {
		t.Error("Valid = false, want true")
	}
	if r.Timestamp.IsZero() {
		t.Error("Timestamp is zero")
	}
}

func TestCPUTemp_MissingFile(t *testing.T) {
	src := NewCPUTemp("/nonexistent/thermal_zone0/temp")

	_, err := src.Sample(context.Background())
	if err == nil {
		t.Fatal("Sample() expected error for missing file, got nil")
	}
	if !errors.Is(err, ErrReadFailed) {
		t.Errorf("Sample() error = %v, want ErrReadFailed", err)
	}
}

func TestCPUTemp_Garbage(t *testing.T) {
	src := NewCPUTemp(writeThermalZone(t, "not-a-number\n"))

	_, err := src.Sample(context.Background())
	if !errors.Is(err, ErrReadFailed) {
		t.Errorf("Sample() error = %v, want ErrReadFailed", err)
	}
}

func TestCPUTemp_CancelledContext(t *testing.T) {
	src := NewCPUTemp(writeThermalZone(t, "50000"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := src.Sample(ctx); err == nil {
		t.Error("Sample() expected error for cancelled context, got nil")
	}
}

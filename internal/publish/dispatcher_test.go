package publish

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/pisense/internal/history"
	"github.com/nerrad567/pisense/internal/telemetry"
)

// scriptedPublisher returns the scripted errors in order, then nil.
type scriptedPublisher struct {
	name string

	mu      sync.Mutex
	errs    []error
	calls   int
	release chan struct{} // when set, Publish blocks until closed
}

func (p *scriptedPublisher) Name() string { return p.name }

func (p *scriptedPublisher) Publish(ctx context.Context, snap history.Snapshot) error {
	if p.release != nil {
		<-p.release
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if len(p.errs) > 0 {
		err := p.errs[0]
		p.errs = p.errs[1:]
		return err
	}
	return nil
}

func (p *scriptedPublisher) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// recordingLogger counts log calls per level.
type recordingLogger struct {
	mu     sync.Mutex
	warns  int
	errors int
}

func (l *recordingLogger) Debug(string, ...any) {}

func (l *recordingLogger) Warn(string, ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns++
}

func (l *recordingLogger) Error(string, ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors++
}

func (l *recordingLogger) counts() (warns, errs int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.warns, l.errors
}

func testPolicy(attempts int) RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		Multiplier:   2.0,
	}
}

func testSnapshot() history.Snapshot {
	buf := history.New(10)
	buf.Append(telemetry.NewReading(telemetry.MetricCPUTemp, 48.2, time.Now()))
	return buf.SnapshotAll()
}

func TestDispatcherSucceedsAfterRetries(t *testing.T) {
	pub := &scriptedPublisher{
		name: "plot",
		errs: []error{errors.New("down"), errors.New("down")},
	}
	logger := &recordingLogger{}

	d := NewDispatcher(pub, testPolicy(3), time.Second)
	d.SetLogger(logger)

	var wg sync.WaitGroup
	if !d.Dispatch(context.Background(), testSnapshot(), &wg) {
		t.Fatal("Dispatch() = false, want true")
	}
	wg.Wait()

	if got := pub.callCount(); got != 3 {
		t.Errorf("publish calls = %d, want 3", got)
	}
	warns, errs := logger.counts()
	if warns != 2 {
		t.Errorf("warn logs = %d, want 2 (one per failed attempt)", warns)
	}
	if errs != 0 {
		t.Errorf("error logs = %d, want 0", errs)
	}
}

func TestDispatcherDropsAfterBudgetSpent(t *testing.T) {
	pub := &scriptedPublisher{
		name: "sheet",
		errs: []error{errors.New("down"), errors.New("down"), errors.New("down")},
	}
	logger := &recordingLogger{}

	d := NewDispatcher(pub, testPolicy(3), time.Second)
	d.SetLogger(logger)

	var wg sync.WaitGroup
	d.Dispatch(context.Background(), testSnapshot(), &wg)
	wg.Wait()

	if got := pub.callCount(); got != 3 {
		t.Errorf("publish calls = %d, want 3 (budget)", got)
	}
	_, errs := logger.counts()
	if errs != 1 {
		t.Errorf("error logs = %d, want 1 (dropped snapshot)", errs)
	}
}

func TestDispatcherSkipsWhileBusy(t *testing.T) {
	release := make(chan struct{})
	pub := &scriptedPublisher{name: "plot", release: release}
	logger := &recordingLogger{}

	d := NewDispatcher(pub, testPolicy(1), time.Second)
	d.SetLogger(logger)

	var wg sync.WaitGroup
	if !d.Dispatch(context.Background(), testSnapshot(), &wg) {
		t.Fatal("first Dispatch() = false, want true")
	}
	if d.Dispatch(context.Background(), testSnapshot(), &wg) {
		t.Error("second Dispatch() = true, want false while busy")
	}

	close(release)
	wg.Wait()

	if got := pub.callCount(); got != 1 {
		t.Errorf("publish calls = %d, want 1 (second snapshot skipped)", got)
	}

	// Not busy anymore: the next tick's snapshot dispatches normally.
	if !d.Dispatch(context.Background(), testSnapshot(), &wg) {
		t.Error("Dispatch() after completion = false, want true")
	}
	wg.Wait()
}

func TestDispatcherNothingToPublishIsSuccess(t *testing.T) {
	pub := &scriptedPublisher{name: "plot", errs: []error{ErrNothingToPublish}}
	logger := &recordingLogger{}

	d := NewDispatcher(pub, testPolicy(3), time.Second)
	d.SetLogger(logger)

	var wg sync.WaitGroup
	d.Dispatch(context.Background(), testSnapshot(), &wg)
	wg.Wait()

	if got := pub.callCount(); got != 1 {
		t.Errorf("publish calls = %d, want 1 (no retry on clean no-op)", got)
	}
	warns, errs := logger.counts()
	if warns != 0 || errs != 0 {
		t.Errorf("logs = %d warns, %d errors, want none", warns, errs)
	}
}

func TestDispatcherAbandonsOnCancelledContext(t *testing.T) {
	pub := &scriptedPublisher{
		name: "plot",
		errs: []error{errors.New("down"), errors.New("down"), errors.New("down")},
	}
	logger := &recordingLogger{}

	// Long delays so cancellation lands during the backoff wait.
	policy := RetryPolicy{MaxAttempts: 3, InitialDelay: time.Minute, Multiplier: 2.0}
	d := NewDispatcher(pub, policy, time.Hour)
	d.SetLogger(logger)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	d.Dispatch(ctx, testSnapshot(), &wg)

	time.Sleep(20 * time.Millisecond)
	cancel()
	wg.Wait()

	if got := pub.callCount(); got != 1 {
		t.Errorf("publish calls = %d, want 1 (abandoned in backoff)", got)
	}
	_, errs := logger.counts()
	if errs != 1 {
		t.Errorf("error logs = %d, want 1 (dropped on cancel)", errs)
	}
}

func TestDispatchersAreIndependent(t *testing.T) {
	failing := &scriptedPublisher{
		name: "plot",
		errs: []error{errors.New("down"), errors.New("down"), errors.New("down")},
	}
	healthy := &scriptedPublisher{name: "sheet"}

	d1 := NewDispatcher(failing, testPolicy(3), time.Second)
	d2 := NewDispatcher(healthy, testPolicy(3), time.Second)

	var wg sync.WaitGroup
	snap := testSnapshot()
	d1.Dispatch(context.Background(), snap, &wg)
	d2.Dispatch(context.Background(), snap, &wg)
	wg.Wait()

	if got := healthy.callCount(); got != 1 {
		t.Errorf("healthy backend calls = %d, want 1", got)
	}
	if got := failing.callCount(); got != 3 {
		t.Errorf("failing backend calls = %d, want 3", got)
	}
}

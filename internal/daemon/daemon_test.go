package daemon_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"solshift/internal/daemon"
	"solshift/internal/instance"
	"solshift/internal/logging"
	"solshift/internal/scheduler"
	"solshift/internal/solar"
)

type nightAlmanac struct{}

func (nightAlmanac) Boundaries(date time.Time) solar.Day {
	date = date.UTC()
	year, month, day := date.Date()
	return solar.Day{
		Sunrise: time.Date(year, month, day, 6, 0, 0, 0, time.UTC),
		Sunset:  time.Date(year, month, day, 18, 0, 0, 0, time.UTC),
	}
}

type nopController struct{}

func (nopController) Enable(context.Context, int) error { return nil }

func (nopController) Disable(context.Context) error { return nil }

func newTestDaemon(t *testing.T, lockPath string) *daemon.Daemon {
	t.Helper()
	sched := scheduler.New(nightAlmanac{}, nopController{}, 3000, scheduler.Options{}, logging.NewNop())
	d, err := daemon.New(sched, lockPath, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestStartStop(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "solshift.lock")
	d := newTestDaemon(t, lockPath)

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if status := d.Status(); !status.Running {
		t.Error("status not running after Start")
	}

	d.Stop()
	if status := d.Status(); status.Running {
		t.Error("status still running after Stop")
	}

	// Stop after Stop is a no-op.
	d.Stop()
}

func TestSecondInstanceRejected(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "solshift.lock")
	first := newTestDaemon(t, lockPath)
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("first Start: %v", err)
	}

	second := newTestDaemon(t, lockPath)
	if err := second.Start(context.Background()); !errors.Is(err, instance.ErrAlreadyRunning) {
		t.Fatalf("second Start error = %v, want ErrAlreadyRunning", err)
	}

	// Releasing the first instance lets a new one in.
	first.Stop()
	if err := second.Start(context.Background()); err != nil {
		t.Fatalf("Start after first stopped: %v", err)
	}
}

func TestReapplyRequiresRunningDaemon(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "solshift.lock")
	d := newTestDaemon(t, lockPath)

	if _, err := d.Reapply(context.Background()); err == nil {
		t.Error("Reapply succeeded on a stopped daemon")
	}

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	snap, err := d.Reapply(context.Background())
	if err != nil {
		t.Fatalf("Reapply: %v", err)
	}
	if snap.UpdatedAt.IsZero() {
		t.Error("Reapply snapshot missing update time")
	}
}

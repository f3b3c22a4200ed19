// Package daemon ties the single-instance guard to the scheduler lifecycle
// and exposes the status surface consumed over IPC.
package daemon

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"solshift/internal/instance"
	"solshift/internal/logging"
	"solshift/internal/scheduler"
)

// Daemon coordinates the scheduling loop and enforces single-instance
// execution against a runtime directory.
type Daemon struct {
	sched    *scheduler.Scheduler
	logger   *slog.Logger
	lockPath string

	running atomic.Bool

	mu     sync.Mutex
	guard  *instance.Guard
	cancel context.CancelFunc
	done   chan struct{}
}

// Status represents daemon runtime information.
type Status struct {
	Running  bool
	PID      int
	LockPath string
	Snapshot scheduler.Snapshot
}

// New constructs a daemon with initialized dependencies.
func New(sched *scheduler.Scheduler, lockPath string, logger *slog.Logger) (*Daemon, error) {
	if sched == nil {
		return nil, errors.New("daemon requires a scheduler")
	}
	if lockPath == "" {
		return nil, errors.New("daemon requires a lock path")
	}
	return &Daemon{
		sched:    sched,
		logger:   logging.WithComponent(logger, "daemon"),
		lockPath: lockPath,
	}, nil
}

// Start acquires the instance lock and launches the scheduling loop.
// instance.ErrAlreadyRunning passes through unchanged so callers can treat
// it as a clean exit rather than a crash.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel != nil {
		return errors.New("daemon already running")
	}

	guard, err := instance.Acquire(d.lockPath)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	d.guard = guard
	d.cancel = cancel
	d.done = done
	d.running.Store(true)

	go func() {
		defer close(done)
		_ = d.sched.Run(runCtx)
		d.running.Store(false)
	}()

	d.logger.Info("daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop cancels the scheduling loop, waits for it to exit, and releases the
// lock. Safe to call from any exit path; cleanup runs exactly once.
func (d *Daemon) Stop() {
	d.mu.Lock()
	cancel := d.cancel
	done := d.done
	guard := d.guard
	d.cancel = nil
	d.done = nil
	d.guard = nil
	d.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	if guard != nil {
		if err := guard.Release(); err != nil {
			d.logger.Warn("release instance lock", logging.Error(err))
		} else {
			d.logger.Info("instance lock released", logging.String("lock", d.lockPath))
		}
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}

// Reapply re-issues the current phase's filter command immediately.
func (d *Daemon) Reapply(ctx context.Context) (scheduler.Snapshot, error) {
	if !d.running.Load() {
		return scheduler.Snapshot{}, errors.New("daemon is not running")
	}
	return d.sched.Reapply(ctx)
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:  d.running.Load(),
		PID:      os.Getpid(),
		LockPath: d.lockPath,
		Snapshot: d.sched.Snapshot(),
	}
}

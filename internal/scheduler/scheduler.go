// Package scheduler runs the control loop: compute today's boundaries,
// classify the current instant, drive the filter accordingly, and sleep
// until the next transition.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"solshift/internal/hyprsunset"
	"solshift/internal/logging"
	"solshift/internal/phase"
	"solshift/internal/solar"
)

// Almanac supplies day boundaries for the configured location.
type Almanac interface {
	Boundaries(date time.Time) solar.Day
}

// Snapshot describes the scheduler's view of the most recent cycle. It is a
// pure observation: consumers must treat repeated snapshots for the same
// phase as no-ops and never derive decisions from them.
type Snapshot struct {
	Phase         phase.Phase
	FilterEnabled bool
	Sunrise       time.Time
	Sunset        time.Time
	NextWake      time.Time
	LastError     string
	UpdatedAt     time.Time
}

// Options tune loop behavior. Zero values fall back to defaults.
type Options struct {
	// DriftDelay is the settle time applied after waking at a boundary so
	// clock drift cannot re-trigger the transition that just fired.
	DriftDelay time.Duration
	// Now overrides the wall clock, for tests.
	Now func() time.Time
}

const defaultDriftDelay = 60 * time.Second

// Scheduler owns the scheduling loop. Commands are issued strictly in the
// order phases are decided, from a single control flow; Reapply shares the
// same serialization.
type Scheduler struct {
	almanac     Almanac
	controller  hyprsunset.Controller
	temperature int
	driftDelay  time.Duration
	now         func() time.Time
	logger      *slog.Logger

	applyMu sync.Mutex

	mu       sync.Mutex
	snapshot Snapshot
	observer func(Snapshot)
}

// New constructs a scheduler applying temperature outside daylight hours.
func New(almanac Almanac, controller hyprsunset.Controller, temperature int, opts Options, logger *slog.Logger) *Scheduler {
	driftDelay := opts.DriftDelay
	if driftDelay <= 0 {
		driftDelay = defaultDriftDelay
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		almanac:     almanac,
		controller:  controller,
		temperature: temperature,
		driftDelay:  driftDelay,
		now:         now,
		logger:      logging.WithComponent(logger, "scheduler"),
	}
}

// SetObserver registers a sink receiving a snapshot after every cycle. Must
// be called before Run.
func (s *Scheduler) SetObserver(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = fn
}

// Snapshot returns the most recent cycle state.
func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Run executes scheduling cycles until ctx is cancelled. Control-channel
// failures are logged and retried naturally on the next cycle; only
// cancellation ends the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			break
		}
		now := s.now().UTC()
		day := s.almanac.Boundaries(now)
		current := phase.Classify(now, day.Sunrise, day.Sunset)
		wait := phase.UntilNextBoundary(now, day.Sunrise, day.Sunset)

		s.logger.Info("cycle start",
			logging.String(logging.FieldPhase, current.String()),
			logging.Time("sunrise", day.Sunrise),
			logging.Time("sunset", day.Sunset),
		)

		applyErr := s.apply(ctx, current)
		s.publish(current, day, now.Add(wait), applyErr)

		s.logger.Info("sleeping until next boundary",
			logging.Duration("wait", wait),
			logging.Time("wake_at", now.Add(wait)),
		)
		if !sleep(ctx, wait) {
			break
		}
		if !sleep(ctx, s.driftDelay) {
			break
		}
	}
	s.logger.Info("scheduler stopped")
	return nil
}

// Reapply immediately re-issues the command for the current phase, outside
// the loop's cadence. Used by the IPC Reapply operation.
func (s *Scheduler) Reapply(ctx context.Context) (Snapshot, error) {
	now := s.now().UTC()
	day := s.almanac.Boundaries(now)
	current := phase.Classify(now, day.Sunrise, day.Sunset)
	wait := phase.UntilNextBoundary(now, day.Sunrise, day.Sunset)

	err := s.apply(ctx, current)
	s.publish(current, day, now.Add(wait), err)
	return s.Snapshot(), err
}

func (s *Scheduler) apply(ctx context.Context, current phase.Phase) error {
	cmd := phase.CommandFor(current, s.temperature)

	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	var err error
	if cmd.Enable {
		err = s.controller.Enable(ctx, cmd.Temperature)
	} else {
		err = s.controller.Disable(ctx)
	}
	if err != nil {
		s.logger.Error("apply filter command",
			logging.Error(err),
			logging.String(logging.FieldPhase, current.String()),
			logging.String(logging.FieldEventType, "filter_apply_failed"),
		)
		return err
	}
	s.logger.Info("filter command applied",
		logging.String(logging.FieldPhase, current.String()),
		logging.Bool("filter_enabled", cmd.Enable),
		logging.Int("temperature", cmd.Temperature),
	)
	return nil
}

func (s *Scheduler) publish(current phase.Phase, day solar.Day, nextWake time.Time, applyErr error) {
	snap := Snapshot{
		Phase:         current,
		FilterEnabled: phase.CommandFor(current, s.temperature).Enable,
		Sunrise:       day.Sunrise,
		Sunset:        day.Sunset,
		NextWake:      nextWake,
		UpdatedAt:     s.now().UTC(),
	}
	if applyErr != nil {
		snap.LastError = applyErr.Error()
	}

	s.mu.Lock()
	s.snapshot = snap
	observer := s.observer
	s.mu.Unlock()

	if observer != nil {
		observer(snap)
	}
}

// sleep waits for d or until ctx is cancelled, whichever comes first. It
// reports whether the full duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

package scheduler_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"solshift/internal/logging"
	"solshift/internal/phase"
	"solshift/internal/scheduler"
	"solshift/internal/solar"
)

// fixedAlmanac reports the same clock-time boundaries for any date.
type fixedAlmanac struct {
	riseHour, riseMin, riseSec int
	setHour, setMin, setSec    int
}

func (f fixedAlmanac) Boundaries(date time.Time) solar.Day {
	date = date.UTC()
	year, month, day := date.Date()
	return solar.Day{
		Sunrise: time.Date(year, month, day, f.riseHour, f.riseMin, f.riseSec, 0, time.UTC),
		Sunset:  time.Date(year, month, day, f.setHour, f.setMin, f.setSec, 0, time.UTC),
	}
}

var equatorAlmanac = fixedAlmanac{riseHour: 5, riseMin: 59, riseSec: 54, setHour: 18, setMin: 7, setSec: 8}

type call struct {
	enable      bool
	temperature int
}

// recordingController records commands and can fail a configured number of
// leading calls.
type recordingController struct {
	mu        sync.Mutex
	calls     []call
	failFirst int
}

func (r *recordingController) Enable(_ context.Context, temperature int) error {
	return r.record(call{enable: true, temperature: temperature})
}

func (r *recordingController) Disable(context.Context) error {
	return r.record(call{})
}

func (r *recordingController) record(c call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	if len(r.calls) <= r.failFirst {
		return errors.New("controller unavailable")
	}
	return nil
}

func (r *recordingController) snapshot() []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]call, len(r.calls))
	copy(out, r.calls)
	return out
}

func fixedClock(hour, min, sec int) func() time.Time {
	return func() time.Time {
		return time.Date(1970, time.January, 1, hour, min, sec, 0, time.UTC)
	}
}

func TestRunCancelledDuringWaitReturnsPromptly(t *testing.T) {
	controller := &recordingController{}
	// 01:30: the next boundary is sunrise, hours away.
	sched := scheduler.New(equatorAlmanac, controller, 3000,
		scheduler.Options{Now: fixedClock(1, 30, 0)}, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = sched.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	start := time.Now()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return within 1s of cancellation")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("cancellation latency %v, want <= ~1s", elapsed)
	}

	calls := controller.snapshot()
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want exactly 1 before cancellation", len(calls))
	}
	if !calls[0].enable || calls[0].temperature != 3000 {
		t.Errorf("pre-dawn command = %+v, want Enable(3000)", calls[0])
	}
}

func TestRunCancelledBeforeStartIssuesNoCommands(t *testing.T) {
	controller := &recordingController{}
	sched := scheduler.New(equatorAlmanac, controller, 3000,
		scheduler.Options{Now: fixedClock(1, 30, 0)}, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := sched.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if calls := controller.snapshot(); len(calls) != 0 {
		t.Errorf("calls = %d, want 0 on a pre-cancelled context", len(calls))
	}
}

func TestRunDisablesFilterDuringDaytime(t *testing.T) {
	controller := &recordingController{}
	sched := scheduler.New(equatorAlmanac, controller, 3000,
		scheduler.Options{Now: fixedClock(10, 30, 0)}, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	_ = sched.Run(ctx)

	calls := controller.snapshot()
	if len(calls) != 1 || calls[0].enable {
		t.Fatalf("daytime calls = %+v, want a single Disable", calls)
	}

	snap := sched.Snapshot()
	if snap.Phase != phase.Daytime || snap.FilterEnabled {
		t.Errorf("snapshot = %+v, want daytime with filter off", snap)
	}
}

func TestRunSurvivesControllerFailure(t *testing.T) {
	controller := &recordingController{failFirst: 2}
	// 23:59:59: UntilNextBoundary is 0, so cycles chain through the drift
	// delay only.
	sched := scheduler.New(equatorAlmanac, controller, 3000,
		scheduler.Options{Now: fixedClock(23, 59, 59), DriftDelay: 5 * time.Millisecond},
		logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = sched.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for len(controller.snapshot()) < 4 {
		select {
		case <-deadline:
			t.Fatal("loop stalled after controller failures")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done

	calls := controller.snapshot()
	for i, c := range calls {
		if !c.enable || c.temperature != 3000 {
			t.Errorf("call %d = %+v, want Enable(3000) after sunset", i, c)
		}
	}
}

func TestObserverReceivesOrderedSnapshots(t *testing.T) {
	controller := &recordingController{}
	sched := scheduler.New(equatorAlmanac, controller, 3000,
		scheduler.Options{Now: fixedClock(23, 59, 59), DriftDelay: 5 * time.Millisecond},
		logging.NewNop())

	var mu sync.Mutex
	var seen []scheduler.Snapshot
	sched.SetObserver(func(snap scheduler.Snapshot) {
		mu.Lock()
		seen = append(seen, snap)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = sched.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		n := len(seen)
		mu.Unlock()
		if n >= 3 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("observer saw too few snapshots")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	// Repeated identical phases are expected; observers treat them as
	// no-ops.
	for i, snap := range seen {
		if snap.Phase != phase.AfterDaytime {
			t.Errorf("snapshot %d phase = %v, want AfterDaytime", i, snap.Phase)
		}
		if !snap.FilterEnabled {
			t.Errorf("snapshot %d filter disabled after sunset", i)
		}
	}
}

func TestReapplyIssuesCurrentPhaseCommand(t *testing.T) {
	controller := &recordingController{}
	sched := scheduler.New(equatorAlmanac, controller, 4200,
		scheduler.Options{Now: fixedClock(10, 0, 0)}, logging.NewNop())

	snap, err := sched.Reapply(context.Background())
	if err != nil {
		t.Fatalf("Reapply: %v", err)
	}
	if snap.Phase != phase.Daytime || snap.FilterEnabled {
		t.Errorf("snapshot = %+v, want daytime with filter off", snap)
	}
	calls := controller.snapshot()
	if len(calls) != 1 || calls[0].enable {
		t.Fatalf("calls = %+v, want a single Disable", calls)
	}
}

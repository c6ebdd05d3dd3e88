package refresh

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonesrussell/linkward/internal/logger"
)

// CycleRunner executes one refresh cycle.
type CycleRunner interface {
	RunOnce(ctx context.Context) RunReport
}

// Status is a point-in-time snapshot of the scheduler for health
// reporting. It is a copy; callers never see live mutable state.
type Status struct {
	State      State      `json:"state"`
	IsRunning  bool       `json:"is_running"`
	NextRunAt  time.Time  `json:"next_run_at"`
	LastReport *RunReport `json:"last_report,omitempty"`
}

// Scheduler owns the refresh loop: it waits out jittered intervals,
// invokes the coordinator, and publishes each cycle's report for health
// reporting. One instance runs per process.
type Scheduler struct {
	clock  *Clock
	runner CycleRunner
	log    logger.Interface

	mu         sync.RWMutex
	state      State
	lastReport *RunReport
	nextRunAt  time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates a scheduler in the stopped state.
func NewScheduler(clock *Clock, runner CycleRunner, log logger.Interface) *Scheduler {
	return &Scheduler{
		clock:  clock,
		runner: runner,
		log:    log,
		state:  StateStopped,
	}
}

// Start launches the refresh loop. The loop runs until ctx is cancelled
// or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()

	if err := ValidateStateTransition(s.state, StateStarting); err != nil {
		s.mu.Unlock()
		return err
	}

	s.state = StateStarting

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	s.mu.Unlock()

	s.log.Info("refresh scheduler starting")

	go s.run(runCtx)

	return nil
}

// Stop requests shutdown and waits for the loop to drain. Workers
// already dispatched in an in-flight cycle finish and their writes are
// applied; ctx bounds how long Stop waits for that.
//
// The loop also stops itself when the Start context is cancelled, so
// Stop may find it already stopping or stopped. That is a successful
// shutdown, not an error; Stop only fails for a scheduler that was
// never started.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()

	if s.done == nil {
		s.mu.Unlock()
		return errors.New("scheduler was never started")
	}

	done := s.done
	if s.state == StateStarting || s.state == StateRunning {
		s.cancel()
	}
	s.mu.Unlock()

	s.log.Info("refresh scheduler stopping")

	select {
	case <-done:
		s.log.Info("refresh scheduler stopped")
		return nil
	case <-ctx.Done():
		s.log.Warn("refresh scheduler stop timed out with cycle in flight")
		return ctx.Err()
	}
}

// Status returns a snapshot of the scheduler state and the latest
// cycle report.
func (s *Scheduler) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := Status{
		State:     s.state,
		IsRunning: s.state == StateRunning,
		NextRunAt: s.nextRunAt,
	}

	if s.lastReport != nil {
		report := *s.lastReport
		status.LastReport = &report
	}

	return status
}

// run is the scheduler loop. Each iteration waits out a freshly
// jittered delay, then executes one cycle. Cancellation between cycles
// stops immediately; cancellation during a cycle is observed by the
// coordinator, which drains in-flight workers before returning.
func (s *Scheduler) run(ctx context.Context) {
	defer func() {
		s.transition(StateStopped)
		close(s.done)
	}()

	s.transition(StateRunning)

	for {
		delay := s.clock.NextDelay()

		s.mu.Lock()
		s.nextRunAt = time.Now().Add(delay)
		s.mu.Unlock()

		if waitErr := s.clock.Wait(ctx, delay); waitErr != nil {
			s.transition(StateStopping)
			return
		}

		report := s.runner.RunOnce(ctx)
		s.publish(report)

		if ctx.Err() != nil {
			s.transition(StateStopping)
			return
		}
	}
}

// publish stores the cycle report for health queries.
func (s *Scheduler) publish(report RunReport) {
	s.mu.Lock()
	s.lastReport = &report
	s.mu.Unlock()
}

// transition moves the scheduler to a new state. Already being in the
// target state is a no-op; an invalid transition is a programming error
// and is logged rather than panicking.
func (s *Scheduler) transition(to State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == to {
		return
	}

	if err := ValidateStateTransition(s.state, to); err != nil {
		s.log.Error("invalid scheduler state transition",
			"from", string(s.state),
			"to", string(to),
			"error", err.Error(),
		)
		return
	}

	s.state = to
}

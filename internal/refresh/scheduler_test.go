package refresh_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/linkward/internal/logger"
	"github.com/jonesrussell/linkward/internal/refresh"
)

// stubCycleRunner implements refresh.CycleRunner, counting cycles and
// signalling the first one.
type stubCycleRunner struct {
	cycles   atomic.Int32
	firstRun chan struct{}
	once     atomic.Bool
}

func newStubCycleRunner() *stubCycleRunner {
	return &stubCycleRunner{firstRun: make(chan struct{})}
}

func (s *stubCycleRunner) RunOnce(_ context.Context) refresh.RunReport {
	s.cycles.Add(1)

	if s.once.CompareAndSwap(false, true) {
		close(s.firstRun)
	}

	return refresh.RunReport{
		RunID:          "run-1",
		StartedAt:      time.Now(),
		LinksAttempted: 5,
		LinksSucceeded: 5,
	}
}

func waitForFirstRun(t *testing.T, runner *stubCycleRunner) {
	t.Helper()

	select {
	case <-runner.firstRun:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler never ran a cycle")
	}
}

func TestScheduler_RunsCyclesUntilStopped(t *testing.T) {
	t.Parallel()

	runner := newStubCycleRunner()
	scheduler := refresh.NewScheduler(refresh.NewClock(time.Millisecond, 0), runner, logger.NewNoOp())

	require.NoError(t, scheduler.Start(context.Background()))

	waitForFirstRun(t, runner)

	require.NoError(t, scheduler.Stop(context.Background()))

	assert.GreaterOrEqual(t, runner.cycles.Load(), int32(1))
	assert.Equal(t, refresh.StateStopped, scheduler.Status().State)
}

func TestScheduler_StatusExposesLastReport(t *testing.T) {
	t.Parallel()

	runner := newStubCycleRunner()
	scheduler := refresh.NewScheduler(refresh.NewClock(time.Millisecond, 0), runner, logger.NewNoOp())

	require.NoError(t, scheduler.Start(context.Background()))
	defer func() { _ = scheduler.Stop(context.Background()) }()

	waitForFirstRun(t, runner)

	// The report is published right after the cycle returns.
	require.Eventually(t, func() bool {
		return scheduler.Status().LastReport != nil
	}, 2*time.Second, 5*time.Millisecond)

	status := scheduler.Status()
	assert.Equal(t, "run-1", status.LastReport.RunID)
	assert.Equal(t, 5, status.LastReport.LinksAttempted)
	assert.False(t, status.NextRunAt.IsZero())
}

func TestScheduler_StartTwiceFails(t *testing.T) {
	t.Parallel()

	runner := newStubCycleRunner()
	scheduler := refresh.NewScheduler(refresh.NewClock(time.Hour, 0), runner, logger.NewNoOp())

	require.NoError(t, scheduler.Start(context.Background()))
	defer func() { _ = scheduler.Stop(context.Background()) }()

	assert.Error(t, scheduler.Start(context.Background()))
}

func TestScheduler_StopWithoutStartFails(t *testing.T) {
	t.Parallel()

	scheduler := refresh.NewScheduler(refresh.NewClock(time.Hour, 0), newStubCycleRunner(), logger.NewNoOp())

	assert.Error(t, scheduler.Stop(context.Background()))
}

func TestScheduler_StopSucceedsAfterSignalAlreadyStoppedLoop(t *testing.T) {
	t.Parallel()

	runner := newStubCycleRunner()
	scheduler := refresh.NewScheduler(refresh.NewClock(time.Millisecond, 0), runner, logger.NewNoOp())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, scheduler.Start(ctx))

	waitForFirstRun(t, runner)

	// A shutdown signal cancels the Start context and the loop winds
	// itself down. The Stop that follows must report a clean shutdown
	// even though the loop already reached stopped on its own.
	cancel()

	require.Eventually(t, func() bool {
		return scheduler.Status().State == refresh.StateStopped
	}, 2*time.Second, 5*time.Millisecond)

	assert.NoError(t, scheduler.Stop(context.Background()))
}

func TestScheduler_StopUnblocksLongWait(t *testing.T) {
	t.Parallel()

	runner := newStubCycleRunner()
	scheduler := refresh.NewScheduler(refresh.NewClock(time.Hour, 0), runner, logger.NewNoOp())

	require.NoError(t, scheduler.Start(context.Background()))

	// Stop must not wait out the hour-long interval.
	done := make(chan error, 1)
	go func() {
		done <- scheduler.Stop(context.Background())
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return while the scheduler was waiting out its interval")
	}

	assert.Zero(t, runner.cycles.Load())
	assert.Equal(t, refresh.StateStopped, scheduler.Status().State)
}

func TestScheduler_ParentContextCancellationStopsLoop(t *testing.T) {
	t.Parallel()

	runner := newStubCycleRunner()
	scheduler := refresh.NewScheduler(refresh.NewClock(time.Millisecond, 0), runner, logger.NewNoOp())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, scheduler.Start(ctx))

	waitForFirstRun(t, runner)
	cancel()

	require.Eventually(t, func() bool {
		return scheduler.Status().State == refresh.StateStopped
	}, 2*time.Second, 5*time.Millisecond)

	assert.NoError(t, scheduler.Stop(context.Background()))
}

package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"
)

const eventually = 2 * time.Second
const tick = 5 * time.Millisecond

func newTestScheduler(runner Runner, opts ...Option) (*Scheduler, *testingclock.FakeClock) {
	clk := testingclock.NewFakeClock(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	return New(runner, append([]Option{WithClock(clk)}, opts...)...), clk
}

func counter(n *atomic.Int32) Task {
	return func(context.Context) error {
		n.Add(1)
		return nil
	}
}

type fakeRunner struct {
	health, full, cleanup atomic.Int32
}

func (f *fakeRunner) HealthCheck(context.Context) error { f.health.Add(1); return nil }
func (f *fakeRunner) FullSync(context.Context) error    { f.full.Add(1); return nil }
func (f *fakeRunner) Cleanup(context.Context) error     { f.cleanup.Add(1); return nil }

func TestScheduler_StartRegistersSystemJobs(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	s, clk := newTestScheduler(runner)

	s.Start(context.Background())
	defer s.Stop()

	st := s.Status()
	assert.True(t, st.IsRunning)
	assert.Equal(t, 3, st.JobCount)
	assert.Equal(t, []string{JobCleanup, JobFullSync, JobHealthCheck}, st.Jobs)
	require.NotNil(t, st.StartedAt)
	assert.Equal(t, clk.Now(), *st.StartedAt)

	clk.Step(time.Hour)
	assert.Eventually(t, func() bool { return runner.health.Load() == 1 }, eventually, tick)
	assert.Zero(t, runner.full.Load())

	clk.Step(5 * time.Hour)
	assert.Eventually(t, func() bool { return runner.full.Load() == 1 }, eventually, tick)
	assert.Zero(t, runner.cleanup.Load())
}

func TestScheduler_StartIsIdempotent(t *testing.T) {
	t.Parallel()

	s, _ := newTestScheduler(&fakeRunner{})
	s.Start(context.Background())
	first := s.Status().StartedAt
	s.Start(context.Background())
	defer s.Stop()

	assert.Equal(t, 3, s.Status().JobCount)
	assert.Equal(t, first, s.Status().StartedAt)
}

func TestScheduler_CustomIntervals(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	s, clk := newTestScheduler(runner, WithIntervals(Intervals{Cleanup: time.Minute}))
	s.Start(context.Background())
	defer s.Stop()

	clk.Step(time.Minute)
	assert.Eventually(t, func() bool { return runner.cleanup.Load() == 1 }, eventually, tick)
}

func TestScheduler_StopClearsJobs(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	s, clk := newTestScheduler(runner)
	s.Start(context.Background())
	require.NoError(t, s.AddJob("extra", time.Minute, counter(&atomic.Int32{})))

	s.Stop()
	s.Stop()

	st := s.Status()
	assert.False(t, st.IsRunning)
	assert.Zero(t, st.JobCount)
	assert.Nil(t, st.StartedAt)

	clk.Step(24 * time.Hour)
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, runner.health.Load())
}

func TestScheduler_StopWhenNotRunning(t *testing.T) {
	t.Parallel()

	s, _ := newTestScheduler(nil)
	s.Stop()
	assert.False(t, s.Status().IsRunning)
}

func TestScheduler_AddJobReplacesExisting(t *testing.T) {
	t.Parallel()

	s, clk := newTestScheduler(nil)
	var first, second atomic.Int32

	require.NoError(t, s.AddJob("x", time.Second, counter(&first)))
	require.NoError(t, s.AddJob("x", 2*time.Second, counter(&second)))
	assert.Equal(t, 1, s.Status().JobCount)

	for i := 0; i < 4; i++ {
		clk.Step(time.Second)
		time.Sleep(10 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return second.Load() == 2 }, eventually, tick)
	assert.Zero(t, first.Load())
}

func TestScheduler_AddJobValidation(t *testing.T) {
	t.Parallel()

	s, _ := newTestScheduler(nil)
	noop := func(context.Context) error { return nil }

	assert.Error(t, s.AddJob("", time.Second, noop))
	assert.Error(t, s.AddJob("x", 0, noop))
	assert.Error(t, s.AddJob("x", time.Second, nil))
	assert.Zero(t, s.Status().JobCount)
}

func TestScheduler_RemoveJob(t *testing.T) {
	t.Parallel()

	s, clk := newTestScheduler(nil)
	var runs atomic.Int32
	require.NoError(t, s.AddJob("x", time.Second, counter(&runs)))
	assert.True(t, s.HasJob("x"))

	assert.True(t, s.RemoveJob("x"))
	assert.False(t, s.RemoveJob("x"))
	assert.False(t, s.HasJob("x"))

	clk.Step(5 * time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, runs.Load())
}

func TestScheduler_FailuresDoNotStopTheTimer(t *testing.T) {
	t.Parallel()

	s, clk := newTestScheduler(nil)
	var runs atomic.Int32

	require.NoError(t, s.AddJob("flaky", time.Second, func(context.Context) error {
		n := runs.Add(1)
		switch n {
		case 1:
			return errors.New("boom")
		case 2:
			panic("kaboom")
		}
		return nil
	}))
	defer s.Stop()

	for want := int32(1); want <= 3; want++ {
		clk.Step(time.Second)
		assert.Eventually(t, func() bool { return runs.Load() == want }, eventually, tick)
	}
}

func TestScheduler_StopDoesNotCancelInFlightRun(t *testing.T) {
	t.Parallel()

	s, clk := newTestScheduler(nil)
	started := make(chan struct{})
	release := make(chan struct{})
	var ctxErr atomic.Value

	require.NoError(t, s.AddJob("slow", time.Second, func(ctx context.Context) error {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			ctxErr.Store(err)
		}
		return nil
	}))

	clk.Step(time.Second)
	<-started
	s.Stop()
	close(release)

	time.Sleep(20 * time.Millisecond)
	assert.Nil(t, ctxErr.Load())
}

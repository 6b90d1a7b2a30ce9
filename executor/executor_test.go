package executor

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newStarted(t *testing.T, cfg Config) *Executor {
	t.Helper()
	e, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, e.Start())
	t.Cleanup(func() { e.Stop(true) })
	return e
}

func statsEventually(t *testing.T, e *Executor, cond func(Stats) bool, msg string) {
	t.Helper()
	require.Eventually(t, func() bool { return cond(e.Stats()) }, 2*time.Second, time.Millisecond, msg)
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"default", DefaultConfig(), true},
		{"zero low", Config{LowWatermark: 0, HighWatermark: 1, MaxQueueSize: 1}, true},
		{"zero high", Config{LowWatermark: 0, HighWatermark: 0, MaxQueueSize: 1}, false},
		{"low above high", Config{LowWatermark: 3, HighWatermark: 2, MaxQueueSize: 1}, false},
		{"negative low", Config{LowWatermark: -1, HighWatermark: 2, MaxQueueSize: 1}, false},
		{"zero queue", Config{LowWatermark: 1, HighWatermark: 2, MaxQueueSize: 0}, false},
		{"negative idle", Config{LowWatermark: 1, HighWatermark: 2, MaxQueueSize: 1, IdleTimeout: -time.Second}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e, err := New(tc.cfg)
			if tc.ok {
				require.NoError(t, err)
				assert.NotNil(t, e)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Nil(t, e)
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	e, err := New(Config{HighWatermark: 1, MaxQueueSize: 1})
	require.NoError(t, err)
	assert.Equal(t, DefaultIdleTimeout, e.cfg.IdleTimeout)
	assert.NotNil(t, e.logger)
	assert.Equal(t, StateStopped, e.State())
}

func TestStart(t *testing.T) {
	e := newStarted(t, Config{LowWatermark: 3, HighWatermark: 5, MaxQueueSize: 8})

	st := e.Stats()
	assert.Equal(t, StateRunning, st.State)
	assert.Equal(t, 3, st.Workers)
	statsEventually(t, e, func(s Stats) bool { return s.Idle == 3 }, "workers become idle")

	assert.ErrorIs(t, e.Start(), ErrAlreadyStarted)
}

func TestStart_AfterStop(t *testing.T) {
	e, err := New(Config{LowWatermark: 1, HighWatermark: 1, MaxQueueSize: 1})
	require.NoError(t, err)
	require.NoError(t, e.Start())
	e.Stop(true)

	assert.ErrorIs(t, e.Start(), ErrAlreadyStarted)
	assert.Equal(t, StateStopped, e.State())

	never, err := New(Config{LowWatermark: 1, HighWatermark: 1, MaxQueueSize: 1})
	require.NoError(t, err)
	never.Stop(true)
	assert.ErrorIs(t, never.Start(), ErrAlreadyStarted)
}

func TestExecute_Rejections(t *testing.T) {
	e, err := New(Config{LowWatermark: 1, HighWatermark: 1, MaxQueueSize: 4})
	require.NoError(t, err)

	assert.False(t, e.Execute(func() {}), "not started")

	require.NoError(t, e.Start())
	assert.False(t, e.Execute(nil), "nil task")

	e.Stop(true)
	assert.False(t, e.Execute(func() {}), "stopped")
	assert.Equal(t, uint64(3), e.Stats().Rejected)
}

func TestExecute_FIFO(t *testing.T) {
	e := newStarted(t, Config{LowWatermark: 1, HighWatermark: 1, MaxQueueSize: 1000})

	var mu sync.Mutex
	var order []int
	for i := range 500 {
		require.True(t, e.Execute(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}))
	}
	e.Stop(true)

	require.Len(t, order, 500)
	for i, v := range order {
		if v != i {
			t.Fatalf("task %d ran at position %d", v, i)
		}
	}
}

func TestExecute_QueueBoundAndScaling(t *testing.T) {
	e := newStarted(t, Config{LowWatermark: 1, HighWatermark: 2, MaxQueueSize: 1, IdleTimeout: 50 * time.Millisecond})
	statsEventually(t, e, func(s Stats) bool { return s.Idle == 1 }, "initial worker idle")

	gate := make(chan struct{})
	var done atomic.Int32
	blocking := func() {
		<-gate
		done.Add(1)
	}

	// Taken by the idle worker.
	require.True(t, e.Execute(blocking))
	statsEventually(t, e, func(s Stats) bool { return s.Queued == 0 && s.Idle == 0 }, "first task picked up")

	// No idle worker: the pool grows to the high watermark.
	require.True(t, e.Execute(blocking))
	statsEventually(t, e, func(s Stats) bool { return s.Queued == 0 && s.Workers == 2 }, "second worker spawned")

	// Both workers busy: one task fits the queue, the next is rejected.
	require.True(t, e.Execute(blocking))
	assert.Equal(t, 2, e.Stats().Workers, "pool must not exceed high watermark")
	assert.False(t, e.Execute(blocking))

	close(gate)
	require.Eventually(t, func() bool { return done.Load() == 3 }, 2*time.Second, time.Millisecond)

	// The extra worker retires after the idle timeout.
	statsEventually(t, e, func(s Stats) bool { return s.Workers == 1 }, "pool settles back to low watermark")
	assert.Equal(t, uint64(1), e.Stats().Rejected)
}

func TestExecute_BackToBackSpawnsWorker(t *testing.T) {
	e := newStarted(t, Config{LowWatermark: 1, HighWatermark: 2, MaxQueueSize: 10})
	statsEventually(t, e, func(s Stats) bool { return s.Idle == 1 }, "initial worker idle")

	gate := make(chan struct{})
	defer close(gate)
	ran := make(chan struct{})

	// The second task must not wait behind the first one: the only idle
	// worker is already claimed when it arrives.
	require.True(t, e.Execute(func() { <-gate }))
	require.True(t, e.Execute(func() { close(ran) }))

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatalf("second task still queued with pool below high watermark: %+v", e.Stats())
	}
	assert.Equal(t, 2, e.Stats().Workers)
}

func TestExecute_RapidSubmission(t *testing.T) {
	e := newStarted(t, Config{LowWatermark: 1, HighWatermark: 2, MaxQueueSize: 3, IdleTimeout: 50 * time.Millisecond})
	statsEventually(t, e, func(s Stats) bool { return s.Idle == 1 }, "initial worker idle")

	gate := make(chan struct{})
	var done atomic.Int32
	blocking := func() {
		<-gate
		done.Add(1)
	}

	// Three submissions with no pause: the pool reaches the high watermark
	// right away and never exceeds it.
	for range 3 {
		require.True(t, e.Execute(blocking))
	}
	assert.Equal(t, 2, e.Stats().Workers)

	// Both workers hold a task; the third waits in the queue.
	statsEventually(t, e, func(s Stats) bool { return s.Queued == 1 && s.Idle == 0 }, "workers busy")

	// Admission now depends on the queue bound alone.
	require.True(t, e.Execute(blocking))
	require.True(t, e.Execute(blocking))
	assert.False(t, e.Execute(blocking), "full queue must reject")
	assert.Equal(t, 2, e.Stats().Workers)

	close(gate)
	require.Eventually(t, func() bool { return done.Load() == 5 }, 2*time.Second, time.Millisecond)

	statsEventually(t, e, func(s Stats) bool { return s.Workers == 1 }, "pool settles back to low watermark")
	assert.Equal(t, uint64(1), e.Stats().Rejected)
}

func TestIdleRetirement_RespectsFloor(t *testing.T) {
	e := newStarted(t, Config{LowWatermark: 2, HighWatermark: 6, MaxQueueSize: 64, IdleTimeout: 10 * time.Millisecond})

	var g errgroup.Group
	for range 6 {
		g.Go(func() error {
			for range 10 {
				e.Execute(func() { time.Sleep(time.Millisecond) })
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	statsEventually(t, e, func(s Stats) bool { return s.Workers == 2 && s.Queued == 0 }, "shrinks to floor")

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 2, e.Stats().Workers, "never retires below the low watermark")
}

func TestWatermarkBound(t *testing.T) {
	const low, high = 2, 4
	e := newStarted(t, Config{LowWatermark: low, HighWatermark: high, MaxQueueSize: 16, IdleTimeout: 5 * time.Millisecond})

	stop := make(chan struct{})
	var sampler errgroup.Group
	sampler.Go(func() error {
		for {
			select {
			case <-stop:
				return nil
			default:
			}
			st := e.Stats()
			if st.Workers > high || st.Workers < low {
				t.Errorf("workers %d outside [%d,%d]", st.Workers, low, high)
				return nil
			}
			if st.Idle > st.Workers {
				t.Errorf("idle %d > workers %d", st.Idle, st.Workers)
				return nil
			}
		}
	})

	var producers errgroup.Group
	for range 8 {
		producers.Go(func() error {
			for i := range 200 {
				e.Execute(func() {
					if i%10 == 0 {
						time.Sleep(200 * time.Microsecond)
					}
				})
			}
			return nil
		})
	}
	require.NoError(t, producers.Wait())

	close(stop)
	require.NoError(t, sampler.Wait())
}

func TestStop_DrainsQueue(t *testing.T) {
	e, err := New(Config{LowWatermark: 2, HighWatermark: 4, MaxQueueSize: 10000})
	require.NoError(t, err)
	require.NoError(t, e.Start())

	var ran atomic.Int64
	admitted := 0
	for range 2000 {
		if e.Execute(func() {
			time.Sleep(10 * time.Microsecond)
			ran.Add(1)
		}) {
			admitted++
		}
	}

	e.Stop(true)

	assert.Equal(t, int64(admitted), ran.Load(), "every admitted task runs exactly once")
	st := e.Stats()
	assert.Equal(t, StateStopped, st.State)
	assert.Equal(t, 0, st.Workers)
	assert.Equal(t, 0, st.Queued)
	assert.Equal(t, uint64(admitted), st.Executed)
}

func TestStop_NoAwait(t *testing.T) {
	e, err := New(Config{LowWatermark: 1, HighWatermark: 1, MaxQueueSize: 4})
	require.NoError(t, err)
	require.NoError(t, e.Start())

	gate := make(chan struct{})
	var ran atomic.Int32
	require.True(t, e.Execute(func() { <-gate; ran.Add(1) }))
	require.True(t, e.Execute(func() { ran.Add(1) }))

	e.Stop(false)
	assert.Equal(t, StateStopping, e.State())
	assert.False(t, e.Execute(func() {}), "stopping pool rejects new tasks")

	close(gate)
	require.NoError(t, e.Shutdown(context.Background()))
	assert.Equal(t, int32(2), ran.Load())
	assert.Equal(t, StateStopped, e.State())
}

func TestShutdown_ContextDeadline(t *testing.T) {
	e, err := New(Config{LowWatermark: 1, HighWatermark: 1, MaxQueueSize: 4})
	require.NoError(t, err)
	require.NoError(t, e.Start())

	gate := make(chan struct{})
	require.True(t, e.Execute(func() { <-gate }))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, e.Shutdown(ctx), context.DeadlineExceeded)

	close(gate)
	e.Stop(true)
	assert.Equal(t, StateStopped, e.State())
}

func TestTaskSubmittedDuringDrainIsRejected(t *testing.T) {
	e, err := New(Config{LowWatermark: 1, HighWatermark: 1, MaxQueueSize: 4})
	require.NoError(t, err)
	require.NoError(t, e.Start())

	gate := make(chan struct{})
	result := make(chan bool, 1)
	require.True(t, e.Execute(func() {
		<-gate
		result <- e.Execute(func() {})
	}))

	e.Stop(false)
	close(gate)
	e.Stop(true)

	assert.False(t, <-result)
}

func TestPanickingTask(t *testing.T) {
	e := newStarted(t, Config{LowWatermark: 1, HighWatermark: 1, MaxQueueSize: 4})

	done := make(chan struct{})
	require.True(t, e.Execute(func() { panic("boom") }))
	require.True(t, e.Execute(func() { close(done) }))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive a panicking task")
	}

	statsEventually(t, e, func(s Stats) bool { return s.Executed == 2 }, "panicked task counts as executed")
	st := e.Stats()
	assert.Equal(t, uint64(1), st.Panics)
	assert.Equal(t, 1, st.Workers)
}

func TestZeroLowWatermark(t *testing.T) {
	e := newStarted(t, Config{LowWatermark: 0, HighWatermark: 2, MaxQueueSize: 4, IdleTimeout: 10 * time.Millisecond})
	assert.Equal(t, 0, e.Stats().Workers)

	done := make(chan struct{})
	require.True(t, e.Execute(func() { close(done) }))
	<-done

	statsEventually(t, e, func(s Stats) bool { return s.Workers == 0 }, "idle pool shrinks to zero")

	e.Stop(true)
	assert.Equal(t, StateStopped, e.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "stopped", StateStopped.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "stopping", StateStopping.String())
	assert.Equal(t, "unknown", State(9).String())
}

func BenchmarkExecute(b *testing.B) {
	e, err := New(Config{LowWatermark: 4, HighWatermark: 8, MaxQueueSize: 1 << 16})
	require.NoError(b, err)
	require.NoError(b, e.Start())
	defer e.Stop(true)

	var wg sync.WaitGroup
	b.ReportAllocs()
	for b.Loop() {
		wg.Add(1)
		for !e.Execute(wg.Done) {
			runtime.Gosched()
		}
	}
	wg.Wait()
}

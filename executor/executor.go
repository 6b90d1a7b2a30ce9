package executor

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// State is the lifecycle state of an Executor.
type State int32

const (
	// StateStopped is the state before Start and after a completed drain.
	StateStopped State = iota
	// StateRunning accepts and executes tasks.
	StateRunning
	// StateStopping rejects new tasks and drains the queue.
	StateStopping
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Task is a unit of work. Results must be reported by the task itself.
type Task func()

// Stats is a point-in-time snapshot of an Executor.
type Stats struct {
	State    State
	Workers  int    // Live worker goroutines
	Idle     int    // Workers currently waiting for a task
	Queued   int    // Pending tasks
	Executed uint64 // Finished tasks, including panicked ones
	Rejected uint64
	Panics   uint64
}

// Executor is a bounded, elastic worker pool.
type Executor struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	workCond *sync.Cond // Signals workers: task queued or state changed
	doneCond *sync.Cond // Signals Stop waiters: last worker retired

	state    State
	started  bool
	tasks    []Task
	existing int
	idle     int

	executed uint64
	rejected uint64
	panics   uint64

	wg sync.WaitGroup
}

// New creates a stopped Executor. Call Start to spawn the workers.
func New(cfg Config) (*Executor, error) {
	cfg, err := cfg.validate()
	if err != nil {
		return nil, err
	}

	e := &Executor{
		cfg:    cfg,
		logger: cfg.Logger,
		tasks:  make([]Task, 0, min(cfg.MaxQueueSize, 64)),
	}
	e.workCond = sync.NewCond(&e.mu)
	e.doneCond = sync.NewCond(&e.mu)

	return e, nil
}

// Start spawns LowWatermark workers and begins accepting tasks.
// It may be called once per Executor.
func (e *Executor) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return ErrAlreadyStarted
	}
	e.started = true
	e.state = StateRunning

	for range e.cfg.LowWatermark {
		e.spawnLocked()
	}

	e.logger.Debug("executor started",
		"low_watermark", e.cfg.LowWatermark,
		"high_watermark", e.cfg.HighWatermark,
		"max_queue_size", e.cfg.MaxQueueSize,
	)
	return nil
}

// Execute enqueues task. It returns false without side effects if the pool is
// not running, the queue is full, or task is nil.
func (e *Executor) Execute(task Task) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if task == nil || e.state != StateRunning || len(e.tasks) >= e.cfg.MaxQueueSize {
		e.rejected++
		return false
	}

	e.tasks = append(e.tasks, task)

	// Idle counts workers that have not reacquired the lock yet, some of
	// which are already claimed by earlier tasks.
	if len(e.tasks) > e.idle && e.existing < e.cfg.HighWatermark {
		e.spawnLocked()
	}

	e.workCond.Signal()
	return true
}

// Stop stops accepting tasks and lets the workers drain the queue.
// If await is true, Stop blocks until every worker has exited.
func (e *Executor) Stop(await bool) {
	e.mu.Lock()

	switch e.state {
	case StateRunning:
		e.state = StateStopping
		if e.existing == 0 {
			e.stoppedLocked()
		}
		e.workCond.Broadcast()
	case StateStopped:
		// Never started: seal the instance.
		e.started = true
	}

	if await {
		for e.state != StateStopped {
			e.doneCond.Wait()
		}
	}
	e.mu.Unlock()

	if await {
		e.wg.Wait()
	}
}

// Shutdown calls Stop(false) and waits for the drain to complete or ctx to
// be done, whichever happens first.
func (e *Executor) Shutdown(ctx context.Context) error {
	e.Stop(false)

	done := make(chan struct{})
	go func() {
		defer close(done)
		e.Stop(true)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns the current lifecycle state.
func (e *Executor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Stats returns a snapshot of the pool.
func (e *Executor) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{
		State:    e.state,
		Workers:  e.existing,
		Idle:     e.idle,
		Queued:   len(e.tasks),
		Executed: e.executed,
		Rejected: e.rejected,
		Panics:   e.panics,
	}
}

func (e *Executor) spawnLocked() {
	e.existing++
	e.wg.Add(1)
	go e.work()
}

func (e *Executor) work() {
	defer e.wg.Done()

	e.mu.Lock()
	defer e.mu.Unlock()

	for {
		if len(e.tasks) > 0 {
			task := e.tasks[0]
			e.tasks[0] = nil
			e.tasks = e.tasks[1:]

			e.mu.Unlock()
			ok := e.run(task)
			e.mu.Lock()

			e.executed++
			if !ok {
				e.panics++
			}
			continue
		}

		if e.state != StateRunning {
			e.retireLocked("drained")
			return
		}

		if !e.waitLocked() && e.existing > e.cfg.LowWatermark {
			e.retireLocked("idle")
			return
		}
	}
}

// waitLocked blocks until a task is queued or the state changes. Workers
// above the low watermark give up after IdleTimeout and report false;
// workers at the floor wait without a deadline.
func (e *Executor) waitLocked() bool {
	e.idle++
	defer func() { e.idle-- }()

	if e.existing <= e.cfg.LowWatermark {
		e.workCond.Wait()
		return true
	}

	deadline := time.Now().Add(e.cfg.IdleTimeout)
	timer := time.AfterFunc(e.cfg.IdleTimeout, func() {
		e.mu.Lock()
		e.workCond.Broadcast()
		e.mu.Unlock()
	})
	defer timer.Stop()

	for len(e.tasks) == 0 && e.state == StateRunning {
		if !time.Now().Before(deadline) {
			return false
		}
		e.workCond.Wait()
	}
	return true
}

func (e *Executor) run(task Task) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("task panicked", "panic", r)
			ok = false
		}
	}()

	task()
	return true
}

func (e *Executor) retireLocked(reason string) {
	e.existing--
	e.logger.Debug("worker retired", "reason", reason, "workers", e.existing)

	if e.existing == 0 && e.state == StateStopping {
		e.stoppedLocked()
	}
}

func (e *Executor) stoppedLocked() {
	e.state = StateStopped
	e.doneCond.Broadcast()
	e.logger.Debug("executor stopped", "executed", e.executed, "rejected", e.rejected)
}

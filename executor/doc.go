// Package executor implements a self-scaling worker pool.
//
// An Executor runs submitted tasks on between LowWatermark and HighWatermark
// worker goroutines. Tasks run in FIFO submission order, each exactly once and
// to completion.
//
// # Lifecycle
//
//	Stopped --Start()--> Running --Stop()--> Stopping --(drain)--> Stopped
//
// There is no way back to Running; create a new Executor instead.
//
//	ex, err := executor.New(executor.Config{
//	    LowWatermark:  2,
//	    HighWatermark: 8,
//	    MaxQueueSize:  1024,
//	    IdleTimeout:   time.Second,
//	})
//	if err != nil {
//	    return err
//	}
//	if err := ex.Start(); err != nil {
//	    return err
//	}
//	if !ex.Execute(func() { ... }) {
//	    // not running or queue saturated: apply backpressure
//	}
//	ex.Stop(true) // drain queued tasks and join every worker
//
// # Scaling
//
// Execute spawns one extra worker when no worker is idle and the pool is below
// HighWatermark. A worker that stays idle for IdleTimeout retires unless the
// pool is already at LowWatermark; workers at the floor wait without a timeout.
//
// # Admission
//
// Execute never blocks and never panics. It returns false when the pool is not
// running or MaxQueueSize tasks are already pending. Growth is best effort and
// never a precondition for acceptance.
//
// # Thread Safety
//
// All methods are safe for concurrent use. Queue, state and worker counters are
// guarded by a single mutex. Stop(true) must not be called from inside a task.
package executor

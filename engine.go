package kvengine

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hupe1980/kvengine/executor"
	"github.com/hupe1980/kvengine/internal/resource"
	"github.com/hupe1980/kvengine/storage"
)

type op uint8

const (
	opPut op = iota
	opPutIfAbsent
	opSet
	opDelete
	opGet
)

func (o op) String() string {
	switch o {
	case opPut:
		return "put"
	case opPutIfAbsent:
		return "put_if_absent"
	case opSet:
		return "set"
	case opDelete:
		return "delete"
	case opGet:
		return "get"
	default:
		return "unknown"
	}
}

type result struct {
	value string
	ok    bool
}

// Stats is a point-in-time snapshot of an Engine.
type Stats struct {
	Storage     storage.Stats
	Executor    executor.Stats
	InFlight    int64
	MaxInFlight int64 // 0 if unlimited
}

// Engine owns one store and one executor and routes every storage call
// through the executor as a task.
//
// All methods are safe for concurrent use.
type Engine struct {
	store   storage.Store
	exec    *executor.Executor
	rc      *resource.Controller
	logger  *Logger
	metrics MetricsCollector
	closed  atomic.Bool

	submitWait       bool
	inFlightFailFast bool
}

// New creates and starts an Engine.
func New(optFns ...Option) (*Engine, error) {
	o := applyOptions(optFns)
	if err := o.validate(); err != nil {
		return nil, err
	}

	exec, err := executor.New(executor.Config{
		LowWatermark:  o.lowWatermark,
		HighWatermark: o.highWatermark,
		MaxQueueSize:  o.maxQueueSize,
		IdleTimeout:   o.idleTimeout,
		Logger:        o.logger.Logger,
	})
	if err != nil {
		return nil, &ErrInvalidOption{
			Option: "executor",
			Value:  fmt.Sprintf("low=%d high=%d queue=%d idle=%s", o.lowWatermark, o.highWatermark, o.maxQueueSize, o.idleTimeout),
			cause:  err,
		}
	}

	var store storage.Store
	if o.stripes > 1 {
		store = storage.NewStriped(o.capacity, o.stripes)
	} else {
		store = storage.NewLocked(storage.New(o.capacity))
	}

	e := &Engine{
		store: store,
		exec:  exec,
		rc: resource.NewController(resource.Config{
			MaxInFlight:      o.maxInFlight,
			SubmitRatePerSec: o.submitRate,
			SubmitBurst:      o.submitBurst,
		}),
		logger:           o.logger,
		metrics:          o.metricsCollector,
		submitWait:       o.submitWait,
		inFlightFailFast: o.inFlightFailFast,
	}

	if err := exec.Start(); err != nil {
		return nil, err
	}

	e.logger.LogStart(context.Background(), o.capacity, max(o.stripes, 1), o.lowWatermark, o.highWatermark)
	return e, nil
}

// Put inserts or overwrites key. ok is false if the entry exceeds the
// capacity of the store.
func (e *Engine) Put(ctx context.Context, key, value string) (bool, error) {
	start := time.Now()
	r, err := e.dispatch(ctx, func(s storage.Storage) result {
		return result{ok: s.Put(key, value)}
	})
	e.metrics.RecordPut(time.Since(start), r.ok, err)
	e.logger.LogOp(ctx, opPut.String(), key, r.ok, err)
	return r.ok, err
}

// PutIfAbsent inserts key only if it does not exist yet.
func (e *Engine) PutIfAbsent(ctx context.Context, key, value string) (bool, error) {
	start := time.Now()
	r, err := e.dispatch(ctx, func(s storage.Storage) result {
		return result{ok: s.PutIfAbsent(key, value)}
	})
	e.metrics.RecordPutIfAbsent(time.Since(start), r.ok, err)
	e.logger.LogOp(ctx, opPutIfAbsent.String(), key, r.ok, err)
	return r.ok, err
}

// Set overwrites an existing key.
func (e *Engine) Set(ctx context.Context, key, value string) (bool, error) {
	start := time.Now()
	r, err := e.dispatch(ctx, func(s storage.Storage) result {
		return result{ok: s.Set(key, value)}
	})
	e.metrics.RecordSet(time.Since(start), r.ok, err)
	e.logger.LogOp(ctx, opSet.String(), key, r.ok, err)
	return r.ok, err
}

// Delete removes key.
func (e *Engine) Delete(ctx context.Context, key string) (bool, error) {
	start := time.Now()
	r, err := e.dispatch(ctx, func(s storage.Storage) result {
		return result{ok: s.Delete(key)}
	})
	e.metrics.RecordDelete(time.Since(start), r.ok, err)
	e.logger.LogOp(ctx, opDelete.String(), key, r.ok, err)
	return r.ok, err
}

// Get returns the value for key.
func (e *Engine) Get(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	r, err := e.dispatch(ctx, func(s storage.Storage) result {
		v, ok := s.Get(key)
		return result{value: v, ok: ok}
	})
	e.metrics.RecordGet(time.Since(start), r.ok, err)
	e.logger.LogOp(ctx, opGet.String(), key, r.ok, err)
	return r.value, r.ok, err
}

// Stats returns a snapshot of the store and the executor.
func (e *Engine) Stats() Stats {
	return Stats{
		Storage:     e.store.Stats(),
		Executor:    e.exec.Stats(),
		InFlight:    e.rc.InFlight(),
		MaxInFlight: e.rc.MaxInFlight(),
	}
}

// dispatch hands fn to the executor and waits for its result.
//
// If ctx is done after the task was admitted, dispatch returns ctx.Err() but
// the task still runs; its effect on the store is not rolled back.
func (e *Engine) dispatch(ctx context.Context, fn func(storage.Storage) result) (result, error) {
	if e.closed.Load() {
		return result{}, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return result{}, err
	}

	if e.inFlightFailFast {
		if !e.rc.TryAcquireInFlight() {
			return result{}, fmt.Errorf("%w: too many callers in flight", ErrBusy)
		}
	} else if err := e.rc.AcquireInFlight(ctx); err != nil {
		return result{}, err
	}
	defer e.rc.ReleaseInFlight()

	if e.submitWait {
		if err := e.rc.WaitSubmit(ctx); err != nil {
			return result{}, err
		}
	} else if !e.rc.AllowSubmit() {
		return result{}, fmt.Errorf("%w: submit rate exceeded", ErrBusy)
	}

	done := make(chan result, 1)
	if !e.exec.Execute(func() { done <- fn(e.store) }) {
		if e.exec.State() != executor.StateRunning {
			return result{}, ErrClosed
		}
		return result{}, fmt.Errorf("%w: queue full", ErrBusy)
	}

	select {
	case r := <-done:
		return r, nil
	case <-ctx.Done():
		return result{}, ctx.Err()
	}
}

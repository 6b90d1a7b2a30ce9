// Package kvengine provides an embedded, bounded in-memory key-value engine.
//
// An Engine combines a byte-budgeted LRU store with a self-scaling worker
// pool. Every operation travels through the pool as a task, so callers are
// decoupled from the execution threads and admission is bounded.
//
// # Quick Start
//
//	ctx := context.Background()
//	eng, _ := kvengine.New(kvengine.WithCapacity(64 << 20))
//	defer eng.Close(ctx)
//
//	eng.Put(ctx, "user:1", "alice")
//	v, ok, _ := eng.Get(ctx, "user:1")
//
// # Capacity
//
// Each entry costs len(key)+len(value) bytes. When a write would exceed the
// budget, least recently used entries are evicted until it fits. The entry
// being written is never evicted by its own write; a write whose entry alone
// exceeds the budget fails and leaves the store unchanged.
//
// Get and successful writes promote the key to most recently used.
//
// # Operations
//
//	Put          insert or overwrite
//	PutIfAbsent  insert only if missing
//	Set          overwrite only if present
//	Delete       remove if present
//	Get          look up and promote
//
// The boolean result reports the storage outcome. The error reports
// admission or lifecycle failures:
//
//	ErrBusy     queue full or submit rate exceeded
//	ErrClosed   engine closed
//	ctx.Err()   caller context done
//
// # Worker Pool
//
// The pool keeps at least the low watermark of workers alive and grows up to
// the high watermark when tasks arrive and no worker is idle. Workers above
// the low watermark retire after the idle timeout:
//
//	eng, _ := kvengine.New(
//	    kvengine.WithWatermarks(2, 16),
//	    kvengine.WithMaxQueueSize(4096),
//	    kvengine.WithIdleTimeout(500*time.Millisecond),
//	)
//
// # Striping
//
// WithStripes splits the store into hash-sharded LRUs with one lock each.
// This reduces contention between workers at the cost of per-stripe recency:
//
//	eng, _ := kvengine.New(kvengine.WithCapacity(1<<30), kvengine.WithStripes(16))
//
// # Observability
//
//	metrics := &kvengine.BasicMetricsCollector{}
//	eng, _ := kvengine.New(
//	    kvengine.WithMetricsCollector(metrics),
//	    kvengine.WithLogger(kvengine.NewJSONLogger(slog.LevelInfo)),
//	)
//
// Engine.Stats returns store and pool counters.
//
// # Shutdown
//
// Close rejects new operations, waits for queued operations to finish and
// releases the stored entries.
package kvengine

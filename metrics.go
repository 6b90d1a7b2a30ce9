package kvengine

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Every method receives the boolean outcome of the storage call (stored,
// updated, found or hit) and the admission/lifecycle error, if any.
type MetricsCollector interface {
	// RecordPut is called after each Put.
	RecordPut(duration time.Duration, ok bool, err error)

	// RecordPutIfAbsent is called after each PutIfAbsent.
	RecordPutIfAbsent(duration time.Duration, ok bool, err error)

	// RecordSet is called after each Set.
	RecordSet(duration time.Duration, ok bool, err error)

	// RecordDelete is called after each Delete.
	RecordDelete(duration time.Duration, ok bool, err error)

	// RecordGet is called after each Get. ok reports a hit.
	RecordGet(duration time.Duration, ok bool, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordPut(time.Duration, bool, error)         {}
func (NoopMetricsCollector) RecordPutIfAbsent(time.Duration, bool, error) {}
func (NoopMetricsCollector) RecordSet(time.Duration, bool, error)         {}
func (NoopMetricsCollector) RecordDelete(time.Duration, bool, error)      {}
func (NoopMetricsCollector) RecordGet(time.Duration, bool, error)         {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	PutCount         atomic.Int64
	PutRejected      atomic.Int64
	PutIfAbsentCount atomic.Int64
	SetCount         atomic.Int64
	SetMisses        atomic.Int64
	DeleteCount      atomic.Int64
	DeleteMisses     atomic.Int64
	GetCount         atomic.Int64
	GetHits          atomic.Int64
	GetTotalNanos    atomic.Int64
	WriteTotalNanos  atomic.Int64
	Errors           atomic.Int64
}

func (b *BasicMetricsCollector) recordWrite(duration time.Duration, err error) {
	b.WriteTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.Errors.Add(1)
	}
}

// RecordPut implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPut(duration time.Duration, ok bool, err error) {
	b.PutCount.Add(1)
	if !ok && err == nil {
		b.PutRejected.Add(1)
	}
	b.recordWrite(duration, err)
}

// RecordPutIfAbsent implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPutIfAbsent(duration time.Duration, ok bool, err error) {
	b.PutIfAbsentCount.Add(1)
	b.recordWrite(duration, err)
}

// RecordSet implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSet(duration time.Duration, ok bool, err error) {
	b.SetCount.Add(1)
	if !ok && err == nil {
		b.SetMisses.Add(1)
	}
	b.recordWrite(duration, err)
}

// RecordDelete implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDelete(duration time.Duration, ok bool, err error) {
	b.DeleteCount.Add(1)
	if !ok && err == nil {
		b.DeleteMisses.Add(1)
	}
	b.recordWrite(duration, err)
}

// RecordGet implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGet(duration time.Duration, ok bool, err error) {
	b.GetCount.Add(1)
	b.GetTotalNanos.Add(duration.Nanoseconds())
	if ok {
		b.GetHits.Add(1)
	}
	if err != nil {
		b.Errors.Add(1)
	}
}

// GetStats returns a snapshot of all metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		PutCount:         b.PutCount.Load(),
		PutRejected:      b.PutRejected.Load(),
		PutIfAbsentCount: b.PutIfAbsentCount.Load(),
		SetCount:         b.SetCount.Load(),
		SetMisses:        b.SetMisses.Load(),
		DeleteCount:      b.DeleteCount.Load(),
		DeleteMisses:     b.DeleteMisses.Load(),
		GetCount:         b.GetCount.Load(),
		GetHits:          b.GetHits.Load(),
		GetAvgNanos:      b.getAvgGetNanos(),
		WriteAvgNanos:    b.getAvgWriteNanos(),
		Errors:           b.Errors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgGetNanos() int64 {
	count := b.GetCount.Load()
	if count == 0 {
		return 0
	}
	return b.GetTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgWriteNanos() int64 {
	count := b.PutCount.Load() + b.PutIfAbsentCount.Load() + b.SetCount.Load() + b.DeleteCount.Load()
	if count == 0 {
		return 0
	}
	return b.WriteTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	PutCount         int64
	PutRejected      int64
	PutIfAbsentCount int64
	SetCount         int64
	SetMisses        int64
	DeleteCount      int64
	DeleteMisses     int64
	GetCount         int64
	GetHits          int64
	GetAvgNanos      int64
	WriteAvgNanos    int64 // Put, PutIfAbsent, Set and Delete
	Errors           int64
}

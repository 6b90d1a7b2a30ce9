package kvengine

import (
	"log/slog"
	"time"

	"github.com/hupe1980/kvengine/executor"
)

// DefaultCapacity is the storage byte budget used when WithCapacity is not set.
const DefaultCapacity = 64 << 20

type options struct {
	capacity         int
	stripes          int
	lowWatermark     int
	highWatermark    int
	maxQueueSize     int
	idleTimeout      time.Duration
	maxInFlight      int64
	submitRate       float64
	submitBurst      int
	submitWait       bool
	inFlightFailFast bool
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Engine construction.
type Option func(*options)

// WithCapacity sets the total byte budget of the store. Every entry costs
// len(key)+len(value) bytes.
func WithCapacity(bytes int) Option {
	return func(o *options) {
		o.capacity = bytes
	}
}

// WithStripes splits the store into n hash-sharded LRUs with one lock each.
//
// Trade-offs:
//   - Less lock contention between workers
//   - Recency and eviction become per stripe, not global
//   - Each entry must fit capacity/n bytes
//
// If n <= 1, a single LRU behind one mutex is used (strict global LRU order).
func WithStripes(n int) Option {
	return func(o *options) {
		o.stripes = n
	}
}

// WithWatermarks sets the minimum and maximum number of executor workers.
func WithWatermarks(low, high int) Option {
	return func(o *options) {
		o.lowWatermark = low
		o.highWatermark = high
	}
}

// WithMaxQueueSize sets the bound on pending operations. Operations beyond it
// fail with ErrBusy.
func WithMaxQueueSize(n int) Option {
	return func(o *options) {
		o.maxQueueSize = n
	}
}

// WithIdleTimeout sets how long an extra worker stays idle before it retires.
func WithIdleTimeout(d time.Duration) Option {
	return func(o *options) {
		o.idleTimeout = d
	}
}

// WithMaxInFlight limits how many callers may wait on a result at once.
// Additional callers block until a slot frees up or their context is done.
// 0 means unlimited.
func WithMaxInFlight(n int64) Option {
	return func(o *options) {
		o.maxInFlight = n
	}
}

// WithSubmitRate limits submissions to perSec operations per second with the
// given burst. Operations above the rate fail fast with ErrBusy.
// 0 means unlimited.
func WithSubmitRate(perSec float64, burst int) Option {
	return func(o *options) {
		o.submitRate = perSec
		o.submitBurst = burst
	}
}

// WithSubmitWait makes operations above the submit rate wait for a token
// (bounded by their context) instead of failing with ErrBusy.
func WithSubmitWait(wait bool) Option {
	return func(o *options) {
		o.submitWait = wait
	}
}

// WithInFlightFailFast makes callers beyond the in-flight limit fail with
// ErrBusy instead of waiting for a free slot.
func WithInFlightFailFast(failFast bool) Option {
	return func(o *options) {
		o.inFlightFailFast = failFast
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &kvengine.BasicMetricsCollector{}
//	eng, _ := kvengine.New(kvengine.WithMetricsCollector(metrics))
//	// ... use eng ...
//	stats := metrics.GetStats()
//	fmt.Printf("Gets: %d, Hits: %d\n", stats.GetCount, stats.GetHits)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := kvengine.NewJSONLogger(slog.LevelInfo)
//	eng, _ := kvengine.New(kvengine.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	def := executor.DefaultConfig()
	o := options{
		capacity:         DefaultCapacity,
		stripes:          1,
		lowWatermark:     def.LowWatermark,
		highWatermark:    def.HighWatermark,
		maxQueueSize:     def.MaxQueueSize,
		idleTimeout:      def.IdleTimeout,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

func (o options) validate() error {
	switch {
	case o.capacity < 0:
		return &ErrInvalidOption{Option: "capacity", Value: o.capacity}
	case o.stripes < 0:
		return &ErrInvalidOption{Option: "stripes", Value: o.stripes}
	case o.maxInFlight < 0:
		return &ErrInvalidOption{Option: "max_in_flight", Value: o.maxInFlight}
	case o.submitRate < 0:
		return &ErrInvalidOption{Option: "submit_rate", Value: o.submitRate}
	}
	return nil
}

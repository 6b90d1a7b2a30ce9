package executor

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"
)

const (
	// DefaultIdleTimeout is used when Config.IdleTimeout is 0.
	DefaultIdleTimeout = time.Second

	// DefaultMaxQueueSize is the queue bound of DefaultConfig.
	DefaultMaxQueueSize = 1024
)

var (
	// ErrInvalidConfig is returned by New for inconsistent limits.
	ErrInvalidConfig = errors.New("invalid executor config")

	// ErrAlreadyStarted is returned by Start on any instance that was started
	// or stopped before.
	ErrAlreadyStarted = errors.New("executor already started")
)

// Config holds the pool limits. All values are fixed for the lifetime of an
// Executor.
type Config struct {
	// LowWatermark is the number of workers kept alive while running.
	LowWatermark int

	// HighWatermark is the maximum number of workers. Must be >= 1.
	HighWatermark int

	// MaxQueueSize is the maximum number of pending tasks. Must be >= 1.
	MaxQueueSize int

	// IdleTimeout is how long a worker above LowWatermark waits for work
	// before it retires.
	// If 0, defaults to DefaultIdleTimeout.
	IdleTimeout time.Duration

	// Logger receives worker lifecycle and task panic events.
	// If nil, logs are discarded.
	Logger *slog.Logger
}

// DefaultConfig returns a pool sized to GOMAXPROCS.
func DefaultConfig() Config {
	return Config{
		LowWatermark:  1,
		HighWatermark: runtime.GOMAXPROCS(0),
		MaxQueueSize:  DefaultMaxQueueSize,
		IdleTimeout:   DefaultIdleTimeout,
	}
}

func (c Config) validate() (Config, error) {
	if c.HighWatermark < 1 {
		return c, fmt.Errorf("%w: high watermark %d < 1", ErrInvalidConfig, c.HighWatermark)
	}
	if c.LowWatermark < 0 || c.LowWatermark > c.HighWatermark {
		return c, fmt.Errorf("%w: low watermark %d outside [0,%d]", ErrInvalidConfig, c.LowWatermark, c.HighWatermark)
	}
	if c.MaxQueueSize < 1 {
		return c, fmt.Errorf("%w: max queue size %d < 1", ErrInvalidConfig, c.MaxQueueSize)
	}
	if c.IdleTimeout < 0 {
		return c, fmt.Errorf("%w: negative idle timeout %s", ErrInvalidConfig, c.IdleTimeout)
	}

	if c.IdleTimeout == 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return c, nil
}

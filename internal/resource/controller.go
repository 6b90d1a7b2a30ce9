package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds admission limits.
type Config struct {
	// MaxInFlight is the maximum number of callers waiting on a result at
	// the same time.
	// If 0, the number is not limited (only tracked).
	MaxInFlight int64

	// SubmitRatePerSec is the maximum rate of task submissions.
	// If 0, unlimited.
	SubmitRatePerSec float64

	// SubmitBurst is the token bucket size for SubmitRatePerSec.
	// If 0, defaults to max(1, SubmitRatePerSec).
	SubmitBurst int
}

// Controller gates callers before they reach the executor.
type Controller struct {
	cfg Config

	// In-flight callers
	inFlightSem  *semaphore.Weighted // nil if unlimited
	inFlightUsed atomic.Int64

	// Submissions
	submitLimiter *rate.Limiter // nil if unlimited
}

// NewController creates a new admission controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MaxInFlight > 0 {
		c.inFlightSem = semaphore.NewWeighted(cfg.MaxInFlight)
	}

	if cfg.SubmitRatePerSec > 0 {
		burst := cfg.SubmitBurst
		if burst <= 0 {
			burst = max(1, int(cfg.SubmitRatePerSec))
		}
		c.submitLimiter = rate.NewLimiter(rate.Limit(cfg.SubmitRatePerSec), burst)
	}

	return c
}

// AcquireInFlight reserves a caller slot.
// Blocks until a slot is free or ctx is done.
func (c *Controller) AcquireInFlight(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if c.inFlightSem != nil {
		if err := c.inFlightSem.Acquire(ctx, 1); err != nil {
			return err
		}
	}
	c.inFlightUsed.Add(1)
	return nil
}

// TryAcquireInFlight reserves a caller slot without blocking.
func (c *Controller) TryAcquireInFlight() bool {
	if c == nil {
		return true
	}
	if c.inFlightSem != nil && !c.inFlightSem.TryAcquire(1) {
		return false
	}
	c.inFlightUsed.Add(1)
	return true
}

// ReleaseInFlight releases a caller slot.
func (c *Controller) ReleaseInFlight() {
	if c == nil {
		return
	}
	if c.inFlightSem != nil {
		c.inFlightSem.Release(1)
	}
	c.inFlightUsed.Add(-1)
}

// InFlight returns the number of reserved caller slots.
func (c *Controller) InFlight() int64 {
	if c == nil {
		return 0
	}
	return c.inFlightUsed.Load()
}

// MaxInFlight returns the configured caller limit (0 if unlimited).
func (c *Controller) MaxInFlight() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MaxInFlight
}

// AllowSubmit reports whether a submission may happen now.
// Non-blocking - callers control retry/backoff policy.
func (c *Controller) AllowSubmit() bool {
	if c == nil || c.submitLimiter == nil {
		return true
	}
	return c.submitLimiter.Allow()
}

// WaitSubmit blocks until the submission rate allows one more task.
func (c *Controller) WaitSubmit(ctx context.Context) error {
	if c == nil || c.submitLimiter == nil {
		return nil
	}
	return c.submitLimiter.Wait(ctx)
}

// Package resource bounds the work an engine run may perform concurrently.
//
// A single Controller can be shared by several engines so that parallel
// explanation and subset-search workers never exceed one global budget.
package resource

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MaxWorkers is the maximum number of concurrently running work units
	// (graphs being explained, subsets being scored).
	// If 0, defaults to runtime.GOMAXPROCS(0).
	MaxWorkers int

	// IOLimitBytesPerSec is the maximum export throughput.
	// If 0, unlimited.
	IOLimitBytesPerSec int
}

// Controller manages worker slots and export IO.
type Controller struct {
	cfg Config

	workers *semaphore.Weighted

	// nil if unlimited
	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = runtime.GOMAXPROCS(0)
	}

	c := &Controller{
		cfg:     cfg,
		workers: semaphore.NewWeighted(int64(cfg.MaxWorkers)),
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), cfg.IOLimitBytesPerSec)
	}

	return c
}

// Sequential returns a controller that runs one work unit at a time.
func Sequential() *Controller {
	return NewController(Config{MaxWorkers: 1})
}

// Workers returns the configured worker budget.
// A nil controller reports a budget of one.
func (c *Controller) Workers() int {
	if c == nil {
		return 1
	}
	return c.cfg.MaxWorkers
}

// AcquireWorker reserves a worker slot, blocking until one is free or ctx is canceled.
func (c *Controller) AcquireWorker(ctx context.Context) error {
	if c == nil {
		return ctx.Err()
	}
	return c.workers.Acquire(ctx, 1)
}

// TryAcquireWorker reserves a worker slot without blocking.
func (c *Controller) TryAcquireWorker() bool {
	if c == nil {
		return true
	}
	return c.workers.TryAcquire(1)
}

// ReleaseWorker releases a worker slot.
func (c *Controller) ReleaseWorker() {
	if c == nil {
		return
	}
	c.workers.Release(1)
}

// AcquireIO waits until the IO limit allows writing n bytes.
// Requests larger than the limiter burst are split into burst-sized waits.
func (c *Controller) AcquireIO(ctx context.Context, n int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	burst := c.ioLimiter.Burst()
	for n > 0 {
		chunk := min(n, burst)
		if err := c.ioLimiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

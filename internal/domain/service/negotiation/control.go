package negotiation

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"trade_pilot/internal/domain"
)

// Control carries the three flags an observer may set. The loop only reads
// them, at its checkpoints.
type Control struct {
	stopped atomic.Bool
	skip    atomic.Bool

	mu     sync.Mutex
	paused bool
	wake   chan struct{}
}

func NewControl() *Control {
	return &Control{wake: make(chan struct{})}
}

func (c *Control) Stop() {
	c.stopped.Store(true)
	c.broadcast()
}

func (c *Control) SkipCurrentItem() {
	c.skip.Store(true)
}

func (c *Control) Pause() {
	c.mu.Lock()
	c.paused = true
	c.mu.Unlock()
}

func (c *Control) Resume() {
	c.mu.Lock()
	c.paused = false
	c.mu.Unlock()
	c.broadcast()
}

// TogglePause flips the pause flag and returns the new state.
func (c *Control) TogglePause() bool {
	c.mu.Lock()
	c.paused = !c.paused
	paused := c.paused
	c.mu.Unlock()

	if !paused {
		c.broadcast()
	}
	return paused
}

func (c *Control) Stopped() bool {
	return c.stopped.Load()
}

func (c *Control) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

func (c *Control) SkipRequested() bool {
	return c.skip.Load()
}

func (c *Control) broadcast() {
	c.mu.Lock()
	close(c.wake)
	c.wake = make(chan struct{})
	c.mu.Unlock()
}

// Await blocks while paused and fails once the session is stopped or ctx is
// done.
func (c *Control) Await(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrStopped, err)
		}
		if c.stopped.Load() {
			return domain.ErrStopped
		}

		c.mu.Lock()
		paused, wake := c.paused, c.wake
		c.mu.Unlock()

		if !paused {
			return nil
		}

		select {
		case <-ctx.Done():
		case <-wake:
		}
	}
}

// Checkpoint is Await plus consumption of a pending skip request.
func (c *Control) Checkpoint(ctx context.Context) error {
	if err := c.Await(ctx); err != nil {
		return err
	}
	if c.skip.CompareAndSwap(true, false) {
		return domain.ErrSkipped
	}
	return nil
}

// clearSkip drops a skip request that arrived between items.
func (c *Control) clearSkip() {
	c.skip.Store(false)
}

package cleanup

import (
	"context"
	"sync/atomic"
	"time"
)

// WaitOptions controls the cadence of ReadinessGate.AwaitReady.
type WaitOptions struct {
	Timeout       time.Duration
	PollInterval  time.Duration
	BackoffFactor float64
	MaxInterval   time.Duration
}

// DefaultWaitOptions mirrors the HTTP layer's bounded wait.
func DefaultWaitOptions() WaitOptions {
	return WaitOptions{
		Timeout:       60 * time.Second,
		PollInterval:  500 * time.Millisecond,
		BackoffFactor: 1.5,
		MaxInterval:   5 * time.Second,
	}
}

func (o WaitOptions) normalized() WaitOptions {
	if o.PollInterval <= 0 {
		o.PollInterval = 500 * time.Millisecond
	}
	if o.BackoffFactor < 1 {
		o.BackoffFactor = 1
	}
	if o.MaxInterval < o.PollInterval {
		o.MaxInterval = o.PollInterval
	}
	return o
}

type connection struct {
	platform Platform
}

// ReadinessGate tracks the currently registered platform connection.
// One writer (the bot lifecycle) replaces it; any number of request handlers read it.
type ReadinessGate struct {
	conn atomic.Pointer[connection]
}

// NewReadinessGate returns a gate with no connection registered.
func NewReadinessGate() *ReadinessGate {
	return &ReadinessGate{}
}

// SetConnection records the active connection, replacing any previous one.
func (g *ReadinessGate) SetConnection(p Platform) {
	if p == nil {
		g.conn.Store(nil)
		return
	}
	g.conn.Store(&connection{platform: p})
}

// Ready returns the registered connection if it is usable, or
// ErrNotConfigured / ErrNotReady.
func (g *ReadinessGate) Ready() (Platform, error) {
	c := g.conn.Load()
	if c == nil {
		return nil, ErrNotConfigured
	}
	if !c.platform.Connected() {
		return nil, ErrNotReady
	}
	return c.platform, nil
}

// IsReady reports whether a live connection is registered. It never blocks.
func (g *ReadinessGate) IsReady() bool {
	_, err := g.Ready()
	return err == nil
}

// AwaitReady polls IsReady until it turns true, the timeout elapses or ctx is done.
// The poll interval grows by BackoffFactor up to MaxInterval.
func (g *ReadinessGate) AwaitReady(ctx context.Context, opts WaitOptions) bool {
	if g.IsReady() {
		return true
	}
	opts = opts.normalized()

	deadline := time.Now().Add(opts.Timeout)
	interval := opts.PollInterval
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		wait := interval
		if wait > remaining {
			wait = remaining
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}

		if g.IsReady() {
			return true
		}

		interval = time.Duration(float64(interval) * opts.BackoffFactor)
		if interval > opts.MaxInterval {
			interval = opts.MaxInterval
		}
	}
}

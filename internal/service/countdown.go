package service

import (
	"sync"
	"sync/atomic"
	"time"
)

// countdown is one session's ticking proof-of-payment timer. It is
// cosmetic: reaching zero only changes the displayed time, actual expiry
// is authoritative server-side.
type countdown struct {
	remaining atomic.Int64
	stop      chan struct{}
	stopOnce  sync.Once
}

func (c *countdown) halt() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// CountdownRegistry tracks the active proof countdown per session. Each
// countdown is a self-rescheduling one-second ticker goroutine that must
// be stopped when the session leaves the proof step or is torn down, so
// no timers leak.
type CountdownRegistry struct {
	mu     sync.Mutex
	active map[string]*countdown
}

// NewCountdownRegistry creates an empty registry.
func NewCountdownRegistry() *CountdownRegistry {
	return &CountdownRegistry{active: make(map[string]*countdown)}
}

// Start begins a countdown for the session ending at deadline. A
// countdown already running for the session is replaced.
func (r *CountdownRegistry) Start(sessionID string, deadline time.Time) {
	c := &countdown{stop: make(chan struct{})}
	c.remaining.Store(secondsUntil(deadline))

	r.mu.Lock()
	if prev, ok := r.active[sessionID]; ok {
		prev.halt()
	}
	r.active[sessionID] = c
	r.mu.Unlock()

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-c.stop:
				return
			case <-ticker.C:
				if c.remaining.Add(-1) <= 0 {
					c.remaining.Store(0)
					return
				}
			}
		}
	}()
}

// Remaining reports the countdown's remaining seconds. When no countdown
// is running for the session, it is derived from the deadline so a
// session re-read on another node still shows a sensible value.
func (r *CountdownRegistry) Remaining(sessionID string, deadline time.Time) int64 {
	r.mu.Lock()
	c, ok := r.active[sessionID]
	r.mu.Unlock()

	if ok {
		return c.remaining.Load()
	}
	if deadline.IsZero() {
		return 0
	}
	return secondsUntil(deadline)
}

// Stop cancels the session's countdown, if any.
func (r *CountdownRegistry) Stop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.active[sessionID]; ok {
		c.halt()
		delete(r.active, sessionID)
	}
}

func secondsUntil(deadline time.Time) int64 {
	remaining := int64(time.Until(deadline).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}

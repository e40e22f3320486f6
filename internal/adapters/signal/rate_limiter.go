package signal

import (
	"sync"
	"time"

	"github.com/taskhive/realtime-gateway/internal/core"
)

// EventRateLimiter bounds how many events a single connection may push
// through the dispatch table per sliding window.
type EventRateLimiter struct {
	mu      sync.Mutex
	history map[core.ConnID][]time.Time
	limit   int
	window  time.Duration
}

func NewEventRateLimiter(limit int, window time.Duration) *EventRateLimiter {
	return &EventRateLimiter{
		history: make(map[core.ConnID][]time.Time),
		limit:   limit,
		window:  window,
	}
}

func (rl *EventRateLimiter) Allow(id core.ConnID) bool {
	if rl.limit <= 0 {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-rl.window)

	attempts := rl.history[id]
	fresh := make([]time.Time, 0, len(attempts))
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= rl.limit {
		rl.history[id] = fresh
		return false
	}

	fresh = append(fresh, now)
	rl.history[id] = fresh
	return true
}

// Forget drops the connection's history. Called on disconnect so the
// map does not grow with dead connections.
func (rl *EventRateLimiter) Forget(id core.ConnID) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.history, id)
}

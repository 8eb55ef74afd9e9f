package assignment

import (
	"sync"
	"time"
)

// timerRegistry keeps one pending deadline timer per order. Arming a new
// cycle replaces (and stops) any previous timer for the same order, so a
// stale expiry can never fire after a later cycle was armed.
type timerRegistry struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewTimers returns the production deadline-timer registry.
func NewTimers() *timerRegistry {
	return &timerRegistry{timers: make(map[string]*time.Timer)}
}

// Arm schedules fn after d, replacing any timer already armed for the order.
func (t *timerRegistry) Arm(orderID string, d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if old, ok := t.timers[orderID]; ok {
		old.Stop()
	}
	t.timers[orderID] = time.AfterFunc(d, func() {
		t.mu.Lock()
		delete(t.timers, orderID)
		t.mu.Unlock()
		fn()
	})
}

// Cancel stops and drops the pending timer for the order, if any.
func (t *timerRegistry) Cancel(orderID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if timer, ok := t.timers[orderID]; ok {
		timer.Stop()
		delete(t.timers, orderID)
	}
}

package assignment

import "time"

// SetNow overrides the scheduler clock in tests.
func (s *Scheduler) SetNow(fn func() time.Time) { s.now = fn }

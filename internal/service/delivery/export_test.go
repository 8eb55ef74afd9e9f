package delivery

import "time"

// SetNow overrides the service clock in tests.
func (s *Service) SetNow(fn func() time.Time) { s.now = fn }

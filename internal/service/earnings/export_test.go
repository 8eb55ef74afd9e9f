package earnings

import "time"

// SetNow overrides the projector clock in tests.
func (p *Projector) SetNow(fn func() time.Time) { p.now = fn }

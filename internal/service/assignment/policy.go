package assignment

import (
	"sort"
	"time"

	"campuseats/internal/domain"
)

// Policy is the pure candidate-ranking decision logic of the engine.
// Available couriers come first; among equally-available couriers the one
// with fewer deliveries today wins. Remaining ties keep candidate arrival
// order (stable sort), so the outcome is deterministic.
type Policy struct {
	AcceptWindow time.Duration
}

// NewPolicy creates a Policy with the given acceptance window.
func NewPolicy(acceptWindow time.Duration) Policy {
	return Policy{AcceptWindow: acceptWindow}
}

// SelectNext picks the next courier for the order and computes the
// acceptance deadline. ok is false when the pool is empty or the order
// already hit the attempt cap.
func (p Policy) SelectNext(o *domain.Order, candidates []domain.Candidate, now time.Time) (domain.Candidate, time.Time, bool) {
	if len(candidates) == 0 || o.AssignmentAttempts >= domain.MaxAssignmentAttempts {
		return domain.Candidate{}, time.Time{}, false
	}

	ranked := make([]domain.Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Available != ranked[j].Available {
			return ranked[i].Available
		}
		return ranked[i].CompletedToday < ranked[j].CompletedToday
	})

	return ranked[0], now.Add(p.AcceptWindow), true
}

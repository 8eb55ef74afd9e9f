package assignment_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"campuseats/internal/domain"
	"campuseats/internal/service/assignment"
)

func candidate(id string, available bool, completed int) domain.Candidate {
	return domain.Candidate{
		Courier:        domain.Courier{ID: id},
		Available:      available,
		CompletedToday: completed,
	}
}

func TestPolicy_SelectNext_PrefersAvailable(t *testing.T) {
	t.Parallel()

	p := assignment.NewPolicy(time.Minute)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	pick, deadline, ok := p.SelectNext(&domain.Order{}, []domain.Candidate{
		candidate("busy-idle", false, 0),
		candidate("free-loaded", true, 7),
	}, now)

	require.True(t, ok)
	require.Equal(t, "free-loaded", pick.Courier.ID)
	require.Equal(t, now.Add(time.Minute), deadline)
}

func TestPolicy_SelectNext_FewestCompletedWins(t *testing.T) {
	t.Parallel()

	p := assignment.NewPolicy(time.Minute)
	pick, _, ok := p.SelectNext(&domain.Order{}, []domain.Candidate{
		candidate("c1", true, 3),
		candidate("c2", true, 1),
		candidate("c3", true, 2),
	}, time.Now())

	require.True(t, ok)
	require.Equal(t, "c2", pick.Courier.ID)
}

func TestPolicy_SelectNext_TieKeepsArrivalOrder(t *testing.T) {
	t.Parallel()

	p := assignment.NewPolicy(time.Minute)
	pick, _, ok := p.SelectNext(&domain.Order{}, []domain.Candidate{
		candidate("first", true, 2),
		candidate("second", true, 2),
	}, time.Now())

	require.True(t, ok)
	require.Equal(t, "first", pick.Courier.ID)
}

func TestPolicy_SelectNext_EmptyPool(t *testing.T) {
	t.Parallel()

	p := assignment.NewPolicy(time.Minute)
	_, _, ok := p.SelectNext(&domain.Order{}, nil, time.Now())
	require.False(t, ok)
}

func TestPolicy_SelectNext_AttemptCap(t *testing.T) {
	t.Parallel()

	p := assignment.NewPolicy(time.Minute)
	o := &domain.Order{AssignmentAttempts: domain.MaxAssignmentAttempts}
	_, _, ok := p.SelectNext(o, []domain.Candidate{candidate("c1", true, 0)}, time.Now())
	require.False(t, ok)
}

func TestPolicy_SelectNext_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	p := assignment.NewPolicy(time.Minute)
	in := []domain.Candidate{
		candidate("z", false, 9),
		candidate("a", true, 0),
	}
	_, _, ok := p.SelectNext(&domain.Order{}, in, time.Now())
	require.True(t, ok)
	require.Equal(t, "z", in[0].Courier.ID)
	require.Equal(t, "a", in[1].Courier.ID)
}

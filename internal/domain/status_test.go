package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"campuseats/internal/domain"
)

func TestSubOrderStatus_Valid(t *testing.T) {
	t.Parallel()

	for _, s := range []domain.SubOrderStatus{"pending", "preparing", "ready", "delivered", "cancelled"} {
		require.True(t, s.Valid(), s)
	}
	require.False(t, domain.SubOrderStatus("cooking").Valid())
	require.False(t, domain.SubOrderStatus("").Valid())
}

func TestSubOrderStatus_Terminal(t *testing.T) {
	t.Parallel()

	require.False(t, domain.SubOrderPending.Terminal())
	require.False(t, domain.SubOrderPreparing.Terminal())
	require.True(t, domain.SubOrderReady.Terminal())
	require.True(t, domain.SubOrderDelivered.Terminal())
	require.True(t, domain.SubOrderCancelled.Terminal())
}

func TestDeliveryStatus_CanAdvance(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from, to domain.DeliveryStatus
		want     bool
	}{
		{domain.DeliveryAssigned, domain.DeliveryPickedUp, true},
		{domain.DeliveryPickedUp, domain.DeliveryOnTheWay, true},
		{domain.DeliveryOnTheWay, domain.DeliveryReached, true},
		{domain.DeliveryReached, domain.DeliveryDelivered, false},
		{domain.DeliveryAssigned, domain.DeliveryOnTheWay, false},
		{domain.DeliveryPickedUp, domain.DeliveryAssigned, false},
		{domain.DeliveryNotAssigned, domain.DeliveryPickedUp, false},
		{domain.DeliveryDelivered, domain.DeliveryReached, false},
	}
	for _, c := range cases {
		require.Equal(t, c.want, c.from.CanAdvance(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestDeliveryStatus_Active(t *testing.T) {
	t.Parallel()

	require.True(t, domain.DeliveryAssigned.Active())
	require.True(t, domain.DeliveryPickedUp.Active())
	require.True(t, domain.DeliveryOnTheWay.Active())
	require.False(t, domain.DeliveryNotAssigned.Active())
	require.False(t, domain.DeliveryReached.Active())
	require.False(t, domain.DeliveryDelivered.Active())
}

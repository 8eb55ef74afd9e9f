package kafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"campuseats/internal/service/orders"
)

func TestNewConsumer_SkipsWhenNoKafkaConfig(t *testing.T) {
	t.Parallel()

	noop := func(context.Context, orders.Event) error { return nil }

	got, err := NewConsumer(nil, "gid", "topic", noop)
	require.NoError(t, err)
	require.Nil(t, got)

	got, err = NewConsumer([]string{"b:9092"}, "", "topic", noop)
	require.NoError(t, err)
	require.Nil(t, got)

	got, err = NewConsumer([]string{"b:9092"}, "gid", "   ", noop)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestNewConsumer_ReturnsErrorWhenSaramaFails(t *testing.T) {
	t.Parallel()

	// unreachable broker address fails the consumer-group dial eagerly
	got, err := NewConsumer([]string{"bad address"}, "gid", "topic", nil)
	require.Error(t, err)
	require.Nil(t, got)
}

func TestConsumer_NilRunAndClose(t *testing.T) {
	t.Parallel()

	var c *Consumer
	require.NoError(t, c.Run(context.Background()))
	require.NoError(t, c.Close())
}

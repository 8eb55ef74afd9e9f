package notify_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"campuseats/internal/notify"
	testlog "campuseats/internal/testutil"
)

type stubSender struct {
	mu   sync.Mutex
	sent []notify.Notification
	err  error
}

func (s *stubSender) Send(_ context.Context, n notify.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, n)
	return nil
}

func (s *stubSender) all() []notify.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notify.Notification(nil), s.sent...)
}

type fakeCounter struct {
	mu sync.Mutex
	n  int
}

func (c *fakeCounter) Inc() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *fakeCounter) value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func TestDispatcher_DeliversQueuedNotifications(t *testing.T) {
	t.Parallel()

	sender := &stubSender{}
	d := notify.NewDispatcher(sender, 8, &fakeCounter{}, testlog.New().Logger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = d.Run(ctx)
	}()

	deadline := time.Date(2026, 3, 1, 12, 1, 0, 0, time.UTC)
	d.CourierAssigned("ord-1", "cour-1", deadline)
	d.DeliveryCodeIssued("ord-1", "cust-1", "123456", deadline.Add(10*time.Minute))

	require.Eventually(t, func() bool {
		return len(sender.all()) == 2
	}, time.Second, 10*time.Millisecond)

	got := sender.all()
	require.Equal(t, notify.KindCourierAssigned, got[0].Kind)
	require.Equal(t, "cour-1", got[0].UserID)
	require.Equal(t, notify.KindDeliveryCode, got[1].Kind)
	require.Equal(t, "123456", got[1].Data["code"])

	cancel()
	<-done
}

func TestDispatcher_FullQueueDropsWithoutBlocking(t *testing.T) {
	t.Parallel()

	failures := &fakeCounter{}
	rec := testlog.New()
	// no Run loop draining, capacity 1
	d := notify.NewDispatcher(&stubSender{}, 1, failures, rec.Logger())

	deadline := time.Now().Add(time.Minute)
	d.CourierAssigned("ord-1", "cour-1", deadline)
	d.CourierAssigned("ord-2", "cour-2", deadline)

	require.Equal(t, 1, failures.value())
	require.True(t, rec.Has("error", "notification queue full, dropping"))
}

func TestDispatcher_SenderFailureCounted(t *testing.T) {
	t.Parallel()

	failures := &fakeCounter{}
	rec := testlog.New()
	sender := &stubSender{err: errors.New("broker down")}
	d := notify.NewDispatcher(sender, 8, failures, rec.Logger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.Run(ctx) }()

	d.CourierAssigned("ord-1", "cour-1", time.Now().Add(time.Minute))

	require.Eventually(t, func() bool {
		return failures.value() == 1
	}, time.Second, 10*time.Millisecond)
	require.True(t, rec.Has("error", "notification dispatch failed"))
}

func TestDispatcher_NilSenderIsNoOp(t *testing.T) {
	t.Parallel()

	d := notify.NewDispatcher(nil, 8, nil, testlog.New().Logger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = d.Run(ctx) }()

	// must not panic
	d.CourierAssigned("ord-1", "cour-1", time.Now().Add(time.Minute))
	time.Sleep(50 * time.Millisecond)
}

func TestNewKafkaSender_NilWhenUnconfigured(t *testing.T) {
	t.Parallel()

	s, err := notify.NewKafkaSender(nil, "topic")
	require.NoError(t, err)
	require.Nil(t, s)

	s, err = notify.NewKafkaSender([]string{"b:9092"}, "   ")
	require.NoError(t, err)
	require.Nil(t, s)
}

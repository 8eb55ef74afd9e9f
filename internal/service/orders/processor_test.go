package orders_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"campuseats/internal/apperr"
	"campuseats/internal/domain"
	"campuseats/internal/ports/ordertx"
	"campuseats/internal/service/orders"
	testlog "campuseats/internal/testutil"
)

type fakeRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
}

func newFakeRepo(list ...*domain.Order) *fakeRepo {
	m := make(map[string]*domain.Order, len(list))
	for _, o := range list {
		m[o.ID] = cloneOrder(o)
	}
	return &fakeRepo{orders: m}
}

func cloneOrder(o *domain.Order) *domain.Order {
	cp := *o
	cp.RejectedCouriers = append([]string(nil), o.RejectedCouriers...)
	cp.SubOrders = append([]domain.ShopSubOrder(nil), o.SubOrders...)
	if o.AssignmentDeadline != nil {
		d := *o.AssignmentDeadline
		cp.AssignmentDeadline = &d
	}
	return &cp
}

func (f *fakeRepo) GetOrder(_ context.Context, orderID string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return nil, nil
	}
	return cloneOrder(o), nil
}

func (f *fakeRepo) WithTx(ctx context.Context, fn func(tx ordertx.Repository) error) error {
	return fn(&fakeTx{repo: f})
}

func (f *fakeRepo) stored(orderID string) *domain.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneOrder(f.orders[orderID])
}

type fakeTx struct{ repo *fakeRepo }

func (t *fakeTx) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return t.repo.GetOrder(ctx, orderID)
}

func (t *fakeTx) UpdateOrderAssignment(_ context.Context, o *domain.Order) error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	stored := t.repo.orders[o.ID]
	cp := cloneOrder(o)
	cp.SubOrders = stored.SubOrders
	cp.Version++
	t.repo.orders[o.ID] = cp
	o.Version = cp.Version
	return nil
}

func (t *fakeTx) UpdateSubOrderStatus(_ context.Context, subOrderID int64, status domain.SubOrderStatus) error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	for _, o := range t.repo.orders {
		for i := range o.SubOrders {
			if o.SubOrders[i].ID == subOrderID {
				o.SubOrders[i].Status = status
				return nil
			}
		}
	}
	return apperr.ErrNotFound
}

func (t *fakeTx) PromoteReadySubOrders(context.Context, string) error {
	return nil
}

type fakeScheduler struct {
	mu          sync.Mutex
	triggered   []string
	invalidated []string
	triggerErr  error
}

func (f *fakeScheduler) Trigger(_ context.Context, orderID string) (*domain.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.triggered = append(f.triggered, orderID)
	if f.triggerErr != nil {
		return nil, f.triggerErr
	}
	return &domain.Assignment{OrderID: orderID}, nil
}

func (f *fakeScheduler) Invalidate(orderID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, orderID)
}

func twoShopOrder(id string, s1, s2 domain.SubOrderStatus) *domain.Order {
	return &domain.Order{
		ID:             id,
		CustomerID:     "cust-1",
		DeliveryStatus: domain.DeliveryNotAssigned,
		SubOrders: []domain.ShopSubOrder{
			{ID: 1, ShopID: "shop-1", OwnerID: "own-1", Status: s1},
			{ID: 2, ShopID: "shop-2", OwnerID: "own-2", Status: s2},
		},
		Version: 1,
	}
}

func newProcessor(repo *fakeRepo, sched *fakeScheduler) *orders.Processor {
	return orders.NewProcessor(repo, sched, time.Second, testlog.New().Logger())
}

func TestApply_ReadyTriggersAssignment(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo(twoShopOrder("ord-1", domain.SubOrderPreparing, domain.SubOrderReady))
	sched := &fakeScheduler{}
	p := newProcessor(repo, sched)

	o, err := p.Apply(context.Background(), "ord-1", "shop-1", "own-1", domain.SubOrderReady)
	require.NoError(t, err)
	require.Equal(t, domain.SubOrderReady, o.SubOrderByShop("shop-1").Status)
	require.Equal(t, []string{"ord-1"}, sched.triggered)
}

func TestApply_ReadyToleratesNoCourier(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo(twoShopOrder("ord-1", domain.SubOrderPreparing, domain.SubOrderReady))
	sched := &fakeScheduler{triggerErr: apperr.ErrNoCourierAvailable}
	p := newProcessor(repo, sched)

	_, err := p.Apply(context.Background(), "ord-1", "shop-1", "own-1", domain.SubOrderReady)
	require.NoError(t, err)
}

func TestApply_NonReadyDoesNotTrigger(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo(twoShopOrder("ord-1", domain.SubOrderPending, domain.SubOrderPending))
	sched := &fakeScheduler{}
	p := newProcessor(repo, sched)

	_, err := p.Apply(context.Background(), "ord-1", "shop-1", "own-1", domain.SubOrderPreparing)
	require.NoError(t, err)
	require.Empty(t, sched.triggered)
}

func TestApply_OwnerMismatchForbidden(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo(twoShopOrder("ord-1", domain.SubOrderPending, domain.SubOrderPending))
	p := newProcessor(repo, &fakeScheduler{})

	_, err := p.Apply(context.Background(), "ord-1", "shop-1", "own-2", domain.SubOrderReady)
	require.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestApply_EmptyOwnerSkipsCheck(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo(twoShopOrder("ord-1", domain.SubOrderPending, domain.SubOrderPending))
	p := newProcessor(repo, &fakeScheduler{})

	_, err := p.Apply(context.Background(), "ord-1", "shop-1", "", domain.SubOrderPreparing)
	require.NoError(t, err)
}

func TestApply_InvalidStatus(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo(twoShopOrder("ord-1", domain.SubOrderPending, domain.SubOrderPending))
	p := newProcessor(repo, &fakeScheduler{})

	_, err := p.Apply(context.Background(), "ord-1", "shop-1", "own-1", "cooking")
	require.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestApply_UnknownShop(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo(twoShopOrder("ord-1", domain.SubOrderPending, domain.SubOrderPending))
	p := newProcessor(repo, &fakeScheduler{})

	_, err := p.Apply(context.Background(), "ord-1", "shop-9", "own-1", domain.SubOrderReady)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestApply_RollbackLockedOncePickedUp(t *testing.T) {
	t.Parallel()

	o := twoShopOrder("ord-1", domain.SubOrderReady, domain.SubOrderReady)
	o.DeliveryStatus = domain.DeliveryPickedUp
	o.AssignedCourierID = "cour-1"
	repo := newFakeRepo(o)
	p := newProcessor(repo, &fakeScheduler{})

	_, err := p.Apply(context.Background(), "ord-1", "shop-1", "own-1", domain.SubOrderPreparing)
	require.ErrorIs(t, err, apperr.ErrOrderLocked)
	require.Equal(t, domain.SubOrderReady, repo.stored("ord-1").SubOrderByShop("shop-1").Status)
}

func TestApply_ReversalPartialResetKeepsCycleAlive(t *testing.T) {
	t.Parallel()

	// both shops ready, one rolls back: attempts and rejections reset so
	// the still-ready shop can restart a cycle at once
	o := twoShopOrder("ord-1", domain.SubOrderReady, domain.SubOrderReady)
	o.AssignmentAttempts = 4
	o.RejectedCouriers = []string{"c1", "c2"}
	repo := newFakeRepo(o)
	sched := &fakeScheduler{}
	p := newProcessor(repo, sched)

	_, err := p.Apply(context.Background(), "ord-1", "shop-1", "own-1", domain.SubOrderPreparing)
	require.NoError(t, err)

	stored := repo.stored("ord-1")
	require.Equal(t, 0, stored.AssignmentAttempts)
	require.Empty(t, stored.RejectedCouriers)
	require.Equal(t, domain.DeliveryNotAssigned, stored.DeliveryStatus)
	require.Empty(t, sched.invalidated)
	require.Equal(t, []string{"ord-1"}, sched.triggered)
}

func TestApply_ReversalFullResetWhenNothingReady(t *testing.T) {
	t.Parallel()

	o := twoShopOrder("ord-1", domain.SubOrderReady, domain.SubOrderCancelled)
	o.DeliveryStatus = domain.DeliveryAssigned
	o.AssignedCourierID = "cour-1"
	deadline := time.Date(2026, 3, 1, 12, 1, 0, 0, time.UTC)
	o.AssignmentDeadline = &deadline
	o.AssignmentAttempts = 2
	o.RejectedCouriers = []string{"c1"}
	repo := newFakeRepo(o)
	sched := &fakeScheduler{}
	p := newProcessor(repo, sched)

	_, err := p.Apply(context.Background(), "ord-1", "shop-1", "own-1", domain.SubOrderPreparing)
	require.NoError(t, err)

	stored := repo.stored("ord-1")
	require.Equal(t, domain.DeliveryNotAssigned, stored.DeliveryStatus)
	require.Empty(t, stored.AssignedCourierID)
	require.Nil(t, stored.AssignmentDeadline)
	require.Equal(t, 0, stored.AssignmentAttempts)
	require.Empty(t, stored.RejectedCouriers)

	require.Equal(t, []string{"ord-1"}, sched.invalidated)
	require.Empty(t, sched.triggered)
}

func TestHandle_UnknownOrderConsumed(t *testing.T) {
	t.Parallel()

	p := newProcessor(newFakeRepo(), &fakeScheduler{})
	err := p.Handle(context.Background(), orders.Event{
		OrderID: "missing", ShopID: "shop-1", Status: "ready",
	})
	require.NoError(t, err)
}

func TestHandle_InvalidStatusConsumed(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo(twoShopOrder("ord-1", domain.SubOrderPending, domain.SubOrderPending))
	p := newProcessor(repo, &fakeScheduler{})

	err := p.Handle(context.Background(), orders.Event{
		OrderID: "ord-1", ShopID: "shop-1", Status: "cooking",
	})
	require.NoError(t, err)
}

func TestHandle_LockedRollbackConsumed(t *testing.T) {
	t.Parallel()

	o := twoShopOrder("ord-1", domain.SubOrderReady, domain.SubOrderReady)
	o.DeliveryStatus = domain.DeliveryOnTheWay
	o.AssignedCourierID = "cour-1"
	repo := newFakeRepo(o)
	p := newProcessor(repo, &fakeScheduler{})

	err := p.Handle(context.Background(), orders.Event{
		OrderID: "ord-1", ShopID: "shop-1", Status: "cancelled",
	})
	require.NoError(t, err)
}

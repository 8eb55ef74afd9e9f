package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"campuseats/internal/apperr"
	"campuseats/internal/domain"
	"campuseats/internal/ports/ordertx"
)

// OrderRepo represents the order aggregate repository.
type OrderRepo struct {
	db *pgxpool.Pool
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(db *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{db: db}
}

// querier is the subset of pgx shared by the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// WithTx opens a transaction and executes fn within it.
func (r *OrderRepo) WithTx(ctx context.Context, fn func(tx ordertx.Repository) error) (err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			err = tx.Rollback(ctx)
			if err != nil {
				panic(err)
			}
			panic(p)
		}
	}()

	wrapped := &TxRepo{q: tx}

	if err := fn(wrapped); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback tx: %w (original error: %s)", rbErr, err.Error())
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// TxRepo represents transaction repository.
type TxRepo struct {
	q pgx.Tx
}

const orderColumns = `
        id, customer_id, payment_status, delivery_status,
        COALESCE(assigned_courier_id, ''), assignment_deadline,
        rejected_couriers, assignment_attempts,
        COALESCE(delivery_code, ''), code_expires_at,
        delivery_fee, floor_number, version, created_at, updated_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID, &o.CustomerID, &o.PaymentStatus, &o.DeliveryStatus,
		&o.AssignedCourierID, &o.AssignmentDeadline,
		&o.RejectedCouriers, &o.AssignmentAttempts,
		&o.DeliveryCode, &o.CodeExpiresAt,
		&o.DeliveryFee, &o.FloorNumber, &o.Version, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func getOrder(ctx context.Context, q querier, orderID string) (*domain.Order, error) {
	row := q.QueryRow(ctx, `SELECT`+orderColumns+` FROM orders WHERE id = $1`, orderID)
	o, err := scanOrder(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order %q: %w", orderID, err)
	}
	if err := loadSubOrders(ctx, q, []*domain.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func loadSubOrders(ctx context.Context, q querier, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, 0, len(orders))
	byID := make(map[string]*domain.Order, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		byID[o.ID] = o
	}

	rows, err := q.Query(ctx, `
        SELECT id, order_id, shop_id, owner_id, status, subtotal
        FROM sub_orders
        WHERE order_id = ANY($1)
        ORDER BY id
    `, ids)
	if err != nil {
		return fmt.Errorf("load sub orders: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var so domain.ShopSubOrder
		var orderID string
		if err := rows.Scan(&so.ID, &orderID, &so.ShopID, &so.OwnerID, &so.Status, &so.Subtotal); err != nil {
			return fmt.Errorf("scan sub order: %w", err)
		}
		o := byID[orderID]
		o.SubOrders = append(o.SubOrders, so)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate sub orders: %w", err)
	}

	// index after loading: appending above may reallocate the slices
	subByID := make(map[int64]*domain.ShopSubOrder)
	for _, o := range orders {
		for i := range o.SubOrders {
			subByID[o.SubOrders[i].ID] = &o.SubOrders[i]
		}
	}

	itemRows, err := q.Query(ctx, `
        SELECT i.id, i.sub_order_id, i.item_id, i.name, i.unit_price, i.quantity
        FROM sub_order_items i
        JOIN sub_orders s ON s.id = i.sub_order_id
        WHERE s.order_id = ANY($1)
        ORDER BY i.id
    `, ids)
	if err != nil {
		return fmt.Errorf("load sub order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var it domain.OrderItem
		var subID int64
		if err := itemRows.Scan(&it.ID, &subID, &it.ItemID, &it.Name, &it.UnitPrice, &it.Quantity); err != nil {
			return fmt.Errorf("scan sub order item: %w", err)
		}
		if so, ok := subByID[subID]; ok {
			so.Items = append(so.Items, it)
		}
	}
	return itemRows.Err()
}

// GetOrder returns the order aggregate, nil when absent.
func (r *OrderRepo) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return getOrder(ctx, r.db, orderID)
}

// GetOrder returns the order aggregate within the transaction, nil when absent.
func (r *TxRepo) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return getOrder(ctx, r.q, orderID)
}

// UpdateOrderAssignment writes the assignment-cycle fields of the order,
// conditional on the version it was read at. A stale version returns
// apperr.ErrConflict and bumps nothing.
func (r *TxRepo) UpdateOrderAssignment(ctx context.Context, o *domain.Order) error {
	ct, err := r.q.Exec(ctx, `
        UPDATE orders
        SET delivery_status = $2,
            assigned_courier_id = NULLIF($3, ''),
            assignment_deadline = $4,
            rejected_couriers = $5,
            assignment_attempts = $6,
            delivery_code = NULLIF($7, ''),
            code_expires_at = $8,
            version = version + 1,
            updated_at = now()
        WHERE id = $1 AND version = $9
    `,
		o.ID, string(o.DeliveryStatus), o.AssignedCourierID, o.AssignmentDeadline,
		o.RejectedCouriers, o.AssignmentAttempts, o.DeliveryCode, o.CodeExpiresAt,
		o.Version,
	)
	if err != nil {
		return fmt.Errorf("update order assignment %q: %w", o.ID, err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.ErrConflict
	}
	o.Version++
	return nil
}

// UpdateSubOrderStatus writes the kitchen status of one sub-order.
func (r *TxRepo) UpdateSubOrderStatus(ctx context.Context, subOrderID int64, status domain.SubOrderStatus) error {
	ct, err := r.q.Exec(ctx, `
        UPDATE sub_orders
        SET status = $2
        WHERE id = $1
    `, subOrderID, string(status))
	if err != nil {
		return fmt.Errorf("update sub order status %d: %w", subOrderID, err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// PromoteReadySubOrders marks every still-ready sub-order of an order delivered.
func (r *TxRepo) PromoteReadySubOrders(ctx context.Context, orderID string) error {
	_, err := r.q.Exec(ctx, `
        UPDATE sub_orders
        SET status = $2
        WHERE order_id = $1 AND status = $3
    `, orderID, string(domain.SubOrderDelivered), string(domain.SubOrderReady))
	if err != nil {
		return fmt.Errorf("promote ready sub orders %q: %w", orderID, err)
	}
	return nil
}

// ListAvailable returns not-assigned orders with at least one ready sub-order,
// nearest floor first, then most recent.
func (r *OrderRepo) ListAvailable(ctx context.Context) ([]*domain.Order, error) {
	return r.list(ctx, `
        SELECT`+orderColumns+`
        FROM orders o
        WHERE delivery_status = 'not_assigned'
          AND EXISTS (SELECT 1 FROM sub_orders s WHERE s.order_id = o.id AND s.status = 'ready')
        ORDER BY floor_number ASC, created_at DESC
    `)
}

// ListByCourier returns the courier's orders, newest first.
func (r *OrderRepo) ListByCourier(ctx context.Context, courierID string) ([]*domain.Order, error) {
	return r.list(ctx, `
        SELECT`+orderColumns+`
        FROM orders
        WHERE assigned_courier_id = $1
        ORDER BY created_at DESC
    `, courierID)
}

// ListAssignable returns ids of not-assigned orders with at least one ready
// sub-order and attempts below the cap. Used by the background sweep.
func (r *OrderRepo) ListAssignable(ctx context.Context, maxAttempts int) ([]string, error) {
	rows, err := r.db.Query(ctx, `
        SELECT o.id
        FROM orders o
        WHERE o.delivery_status = 'not_assigned'
          AND o.assignment_attempts < $1
          AND EXISTS (SELECT 1 FROM sub_orders s WHERE s.order_id = o.id AND s.status = 'ready')
          AND NOT EXISTS (SELECT 1 FROM sub_orders s WHERE s.order_id = o.id AND s.status IN ('pending', 'preparing'))
        ORDER BY o.created_at
    `, maxAttempts)
	if err != nil {
		return nil, fmt.Errorf("list assignable orders: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan assignable order id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListOverdueAssigned returns ids of orders still assigned past their
// acceptance deadline. Safety net for deadlines lost to a restart.
func (r *OrderRepo) ListOverdueAssigned(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id
        FROM orders
        WHERE delivery_status = 'assigned'
          AND assignment_deadline IS NOT NULL
          AND assignment_deadline < now()
        ORDER BY assignment_deadline
    `)
	if err != nil {
		return nil, fmt.Errorf("list overdue assignments: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan overdue order id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *OrderRepo) list(ctx context.Context, sql string, args ...any) ([]*domain.Order, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	if err := loadSubOrders(ctx, r.db, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"campuseats/internal/domain"
)

// EarningsRepo is the read-only query surface behind the earnings projector.
type EarningsRepo struct {
	db      *pgxpool.Pool
	builder sq.StatementBuilderType
}

// NewEarningsRepo creates a new EarningsRepo.
func NewEarningsRepo(db *pgxpool.Pool) *EarningsRepo {
	return &EarningsRepo{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// DeliveredOrder is one delivered order as seen from the courier's side.
type DeliveredOrder struct {
	OrderID     string
	CustomerID  string
	DeliveryFee float64
	DeliveredAt time.Time
}

// DeliveredByCourier returns delivered orders of one courier inside the
// half-open range [from, to), newest first.
func (r *EarningsRepo) DeliveredByCourier(ctx context.Context, courierID string, from, to time.Time) ([]DeliveredOrder, error) {
	query, args, err := r.builder.
		Select("id", "customer_id", "delivery_fee", "updated_at").
		From("orders").
		Where(sq.Eq{
			"assigned_courier_id": courierID,
			"delivery_status":     string(domain.DeliveryDelivered),
		}).
		Where(sq.GtOrEq{"updated_at": from}).
		Where(sq.Lt{"updated_at": to}).
		OrderBy("updated_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build courier earnings query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query courier earnings: %w", err)
	}
	defer rows.Close()

	var out []DeliveredOrder
	for rows.Next() {
		var d DeliveredOrder
		if err := rows.Scan(&d.OrderID, &d.CustomerID, &d.DeliveryFee, &d.DeliveredAt); err != nil {
			return nil, fmt.Errorf("scan delivered order: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// OwnerSale is one delivered sub-order of a shop owner.
type OwnerSale struct {
	OrderID     string
	SubOrderID  int64
	ShopID      string
	Subtotal    float64
	DeliveredAt time.Time
}

// DeliveredByOwner returns delivered sub-orders belonging to one shop owner
// inside the half-open range [from, to), newest first.
func (r *EarningsRepo) DeliveredByOwner(ctx context.Context, ownerID string, from, to time.Time) ([]OwnerSale, error) {
	query, args, err := r.builder.
		Select("s.order_id", "s.id", "s.shop_id", "s.subtotal", "o.updated_at").
		From("sub_orders s").
		Join("orders o ON o.id = s.order_id").
		Where(sq.Eq{
			"s.owner_id": ownerID,
			"s.status":   string(domain.SubOrderDelivered),
		}).
		Where(sq.GtOrEq{"o.updated_at": from}).
		Where(sq.Lt{"o.updated_at": to}).
		OrderBy("o.updated_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build owner earnings query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query owner earnings: %w", err)
	}
	defer rows.Close()

	var out []OwnerSale
	for rows.Next() {
		var s OwnerSale
		if err := rows.Scan(&s.OrderID, &s.SubOrderID, &s.ShopID, &s.Subtotal, &s.DeliveredAt); err != nil {
			return nil, fmt.Errorf("scan owner sale: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

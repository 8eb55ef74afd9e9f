package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"campuseats/internal/domain"
)

// CourierDirectory is the read-only query surface over couriers used to
// rank assignment candidates.
type CourierDirectory struct {
	db *pgxpool.Pool
}

// NewCourierDirectory creates a new CourierDirectory.
func NewCourierDirectory(db *pgxpool.Pool) *CourierDirectory {
	return &CourierDirectory{db: db}
}

// Candidates returns every courier-role user not present in excluded,
// with availability and the delivered-since-midnight count attached.
// Rows come back in stable id order so policy tie-breaks are deterministic.
func (d *CourierDirectory) Candidates(ctx context.Context, excluded []string, midnight time.Time) ([]domain.Candidate, error) {
	if excluded == nil {
		excluded = []string{}
	}
	rows, err := d.db.Query(ctx, `
        SELECT c.id, c.name, c.phone,
            NOT EXISTS (
                SELECT 1 FROM orders o
                WHERE o.assigned_courier_id = c.id
                  AND o.delivery_status IN ('assigned', 'picked_up', 'on_the_way')
            ) AS available,
            (
                SELECT COUNT(*) FROM orders o
                WHERE o.assigned_courier_id = c.id
                  AND o.delivery_status = 'delivered'
                  AND o.updated_at >= $2
            ) AS completed_today
        FROM couriers c
        WHERE c.role = 'courier'
          AND NOT (c.id = ANY($1))
        ORDER BY c.created_at, c.id
    `, excluded, midnight)
	if err != nil {
		return nil, fmt.Errorf("list courier candidates: %w", err)
	}
	defer rows.Close()

	var out []domain.Candidate
	for rows.Next() {
		var c domain.Candidate
		if err := rows.Scan(&c.Courier.ID, &c.Courier.Name, &c.Courier.Phone, &c.Available, &c.CompletedToday); err != nil {
			return nil, fmt.Errorf("scan courier candidate: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Exists reports whether a courier-role user with the given id exists.
func (d *CourierDirectory) Exists(ctx context.Context, courierID string) (bool, error) {
	var ok bool
	err := d.db.QueryRow(ctx, `
        SELECT EXISTS (SELECT 1 FROM couriers WHERE id = $1 AND role = 'courier')
    `, courierID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("courier exists %q: %w", courierID, err)
	}
	return ok, nil
}

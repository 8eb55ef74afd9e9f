//go:build integration

package repository_test

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"campuseats/internal/repository"
)

var tcPool *pgxpool.Pool

var tcDSN string

func TestMain(m *testing.M) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_pass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("failed to start postgres testcontainer: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		if termErr := pgContainer.Terminate(ctx); termErr != nil {
			log.Printf("failed to terminate container after conn string error: %v", termErr)
		}
		log.Fatalf("failed to get connection string from container: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		if termErr := pgContainer.Terminate(ctx); termErr != nil {
			log.Printf("failed to terminate container after pool create error: %v", termErr)
		}
		log.Fatalf("failed to create pgx pool: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		if termErr := pgContainer.Terminate(ctx); termErr != nil {
			log.Printf("failed to terminate container after ping error: %v", termErr)
		}
		log.Fatalf("failed to ping postgres in testcontainer: %v", err)
	}

	tcPool = pool
	tcDSN = connStr

	if err := repository.Migrate(tcDSN); err != nil {
		pool.Close()
		if termErr := pgContainer.Terminate(ctx); termErr != nil {
			log.Printf("failed to terminate container after migrate error: %v", termErr)
		}
		log.Fatalf("failed to apply migrations: %v", err)
	}

	code := m.Run()

	pool.Close()
	if err := pgContainer.Terminate(ctx); err != nil {
		log.Printf("failed to terminate postgres container: %v", err)
	}

	os.Exit(code)
}

func truncateAll(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `TRUNCATE orders, couriers RESTART IDENTITY CASCADE`)
	return err
}

type seedCourier struct {
	id        string
	name      string
	role      string
	createdAt time.Time
}

func insertCourier(ctx context.Context, pool *pgxpool.Pool, c seedCourier) error {
	if c.name == "" {
		c.name = c.id
	}
	if c.role == "" {
		c.role = "courier"
	}
	if c.createdAt.IsZero() {
		c.createdAt = time.Now()
	}
	_, err := pool.Exec(ctx, `
        INSERT INTO couriers (id, name, phone, role, created_at)
        VALUES ($1, $2, '', $3, $4)
    `, c.id, c.name, c.role, c.createdAt)
	return err
}

type seedOrder struct {
	id             string
	customerID     string
	deliveryStatus string
	courierID      string
	deadline       *time.Time
	rejected       []string
	attempts       int
	fee            float64
	floor          int
	createdAt      time.Time
	updatedAt      time.Time
}

func insertOrder(ctx context.Context, pool *pgxpool.Pool, o seedOrder) error {
	if o.customerID == "" {
		o.customerID = "cust-1"
	}
	if o.deliveryStatus == "" {
		o.deliveryStatus = "not_assigned"
	}
	if o.rejected == nil {
		o.rejected = []string{}
	}
	if o.fee == 0 {
		o.fee = 20
	}
	if o.createdAt.IsZero() {
		o.createdAt = time.Now()
	}
	if o.updatedAt.IsZero() {
		o.updatedAt = o.createdAt
	}
	_, err := pool.Exec(ctx, `
        INSERT INTO orders (
            id, customer_id, payment_status, delivery_status,
            assigned_courier_id, assignment_deadline,
            rejected_couriers, assignment_attempts,
            delivery_fee, floor_number, created_at, updated_at
        )
        VALUES ($1, $2, 'paid', $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11)
    `,
		o.id, o.customerID, o.deliveryStatus, o.courierID, o.deadline,
		o.rejected, o.attempts, o.fee, o.floor, o.createdAt, o.updatedAt,
	)
	return err
}

type seedSubOrder struct {
	orderID  string
	shopID   string
	ownerID  string
	status   string
	subtotal float64
}

func insertSubOrder(ctx context.Context, pool *pgxpool.Pool, s seedSubOrder) (int64, error) {
	if s.ownerID == "" {
		s.ownerID = "owner-1"
	}
	if s.status == "" {
		s.status = "pending"
	}
	var id int64
	err := pool.QueryRow(ctx, `
        INSERT INTO sub_orders (order_id, shop_id, owner_id, status, subtotal)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `, s.orderID, s.shopID, s.ownerID, s.status, s.subtotal).Scan(&id)
	return id, err
}

func insertItem(ctx context.Context, pool *pgxpool.Pool, subOrderID int64, itemID, name string, price float64, qty int) error {
	_, err := pool.Exec(ctx, `
        INSERT INTO sub_order_items (sub_order_id, item_id, name, unit_price, quantity)
        VALUES ($1, $2, $3, $4, $5)
    `, subOrderID, itemID, name, price, qty)
	return err
}

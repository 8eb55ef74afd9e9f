package earnings

import (
	"context"
	"sort"
	"time"

	"campuseats/internal/logx"
	"campuseats/internal/repository"
)

type earningsRepository interface {
	DeliveredByCourier(ctx context.Context, courierID string, from, to time.Time) ([]repository.DeliveredOrder, error)
	DeliveredByOwner(ctx context.Context, ownerID string, from, to time.Time) ([]repository.OwnerSale, error)
}

// DayBucket is earnings aggregated over one calendar day.
type DayBucket struct {
	Date       string  `json:"date"`
	Earnings   float64 `json:"earnings"`
	Deliveries int     `json:"deliveries"`
}

// CourierReport aggregates a courier's delivered orders over a range.
// The fee per delivery is the fixed per-order delivery charge.
type CourierReport struct {
	TotalDeliveries int                         `json:"total_deliveries"`
	TotalEarnings   float64                     `json:"total_earnings"`
	Days            []DayBucket                 `json:"days,omitempty"`
	Orders          []repository.DeliveredOrder `json:"orders"`
}

// OwnerReport aggregates a shop owner's delivered sub-orders over a range.
type OwnerReport struct {
	TotalOrders   int                    `json:"total_orders"`
	TotalEarnings float64                `json:"total_earnings"`
	Days          []DayBucket            `json:"days,omitempty"`
	Sales         []repository.OwnerSale `json:"sales"`
}

// Projector is the read-side aggregation over completed deliveries.
// No mutation, snapshot-read consistency only.
type Projector struct {
	repo             earningsRepository
	operationTimeout time.Duration
	logger           logx.Logger
	now              func() time.Time
}

// NewProjector creates a new earnings Projector.
func NewProjector(repo earningsRepository, timeout time.Duration, logger logx.Logger) *Projector {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Projector{
		repo:             repo,
		operationTimeout: timeout,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// CourierToday reports the courier's deliveries since local midnight.
func (p *Projector) CourierToday(ctx context.Context, courierID string) (*CourierReport, error) {
	from := startOfDay(p.now())
	return p.courierRange(ctx, courierID, from, from.AddDate(0, 0, 1), false)
}

// CourierMonth reports the courier's deliveries in the current calendar
// month with a daily breakdown.
func (p *Projector) CourierMonth(ctx context.Context, courierID string) (*CourierReport, error) {
	from := startOfMonth(p.now())
	return p.courierRange(ctx, courierID, from, from.AddDate(0, 1, 0), true)
}

// OwnerToday reports the owner's delivered sub-orders since local midnight.
func (p *Projector) OwnerToday(ctx context.Context, ownerID string) (*OwnerReport, error) {
	from := startOfDay(p.now())
	return p.ownerRange(ctx, ownerID, from, from.AddDate(0, 0, 1), false)
}

// OwnerMonth reports the owner's delivered sub-orders in the current
// calendar month with a daily breakdown.
func (p *Projector) OwnerMonth(ctx context.Context, ownerID string) (*OwnerReport, error) {
	from := startOfMonth(p.now())
	return p.ownerRange(ctx, ownerID, from, from.AddDate(0, 1, 0), true)
}

func (p *Projector) courierRange(ctx context.Context, courierID string, from, to time.Time, breakdown bool) (*CourierReport, error) {
	ctx, cancel := context.WithTimeout(ctx, p.operationTimeout)
	defer cancel()

	delivered, err := p.repo.DeliveredByCourier(ctx, courierID, from, to)
	if err != nil {
		return nil, err
	}

	report := &CourierReport{
		TotalDeliveries: len(delivered),
		Orders:          delivered,
	}
	days := make(map[string]*DayBucket)
	for _, d := range delivered {
		report.TotalEarnings += d.DeliveryFee
		if breakdown {
			addDay(days, d.DeliveredAt, d.DeliveryFee)
		}
	}
	report.Days = sortDays(days)
	return report, nil
}

func (p *Projector) ownerRange(ctx context.Context, ownerID string, from, to time.Time, breakdown bool) (*OwnerReport, error) {
	ctx, cancel := context.WithTimeout(ctx, p.operationTimeout)
	defer cancel()

	sales, err := p.repo.DeliveredByOwner(ctx, ownerID, from, to)
	if err != nil {
		return nil, err
	}

	report := &OwnerReport{Sales: sales}
	days := make(map[string]*DayBucket)
	orderSeen := make(map[string]struct{})
	for _, s := range sales {
		report.TotalEarnings += s.Subtotal
		if _, ok := orderSeen[s.OrderID]; !ok {
			orderSeen[s.OrderID] = struct{}{}
			report.TotalOrders++
		}
		if breakdown {
			addDay(days, s.DeliveredAt, s.Subtotal)
		}
	}
	report.Days = sortDays(days)
	return report, nil
}

func addDay(days map[string]*DayBucket, at time.Time, amount float64) {
	key := at.Format("2006-01-02")
	b, ok := days[key]
	if !ok {
		b = &DayBucket{Date: key}
		days[key] = b
	}
	b.Earnings += amount
	b.Deliveries++
}

func sortDays(days map[string]*DayBucket) []DayBucket {
	if len(days) == 0 {
		return nil
	}
	out := make([]DayBucket, 0, len(days))
	for _, b := range days {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

package orders

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"foodorder/internal/apperr"
	"foodorder/internal/models"
	"foodorder/internal/store"
)

const dayLayout = "2006-01-02"

// StatisticsCount is the aggregate block of the order report.
type StatisticsCount struct {
	Orders         int64   `json:"orders"`
	Tips           float64 `json:"tips"`
	Bags           float64 `json:"bags"`
	ServiceCharge  float64 `json:"service_charge"`
	DeliveryCharge float64 `json:"delivery_charge"`
	OrderTotal     float64 `json:"order_total"`
	Discount       float64 `json:"discount"`
	GrandTotal     float64 `json:"grand_total"`
	Card           float64 `json:"card"`
	Cash           float64 `json:"cash"`
}

type OrderStatistics struct {
	Data  []models.Order  `json:"data"`
	Count StatisticsCount `json:"count"`
}

// DateRange is a half-open interval of whole UTC days.
type DateRange struct {
	From   time.Time
	Before time.Time
}

// ResolveRange turns the report dates into a day range. A missing end date,
// or one equal to the start, selects the whole start day; otherwise the end
// day is included.
func ResolveRange(start, end string) (DateRange, error) {
	if start == "" {
		return DateRange{}, apperr.Validation("start_date is required")
	}
	from, err := parseDay(start, "start_date")
	if err != nil {
		return DateRange{}, err
	}

	to := from
	if end != "" {
		to, err = parseDay(end, "end_date")
		if err != nil {
			return DateRange{}, err
		}
	}
	if to.Before(from) {
		return DateRange{}, apperr.Validation("end_date must not be before start_date")
	}
	return DateRange{From: from, Before: to.AddDate(0, 0, 1)}, nil
}

func parseDay(value, field string) (time.Time, error) {
	if day, err := time.Parse(dayLayout, value); err == nil {
		return day, nil
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		ts = ts.UTC()
		return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, apperr.Validation("%s must be a date in YYYY-MM-DD format", field)
}

func (r DateRange) query() store.OrderQuery {
	from, before := r.From, r.Before
	return store.OrderQuery{CreatedFrom: &from, CreatedBefore: &before}
}

// OrderStatistics lists the orders of the range and sums their charges.
func (s *Service) OrderStatistics(ctx context.Context, f StatisticsFilter) (*OrderStatistics, error) {
	rng, err := ResolveRange(f.StartDate, f.EndDate)
	if err != nil {
		return nil, err
	}

	q := rng.query()
	q.OrderType = f.OrderType
	q.Status = f.Status
	switch {
	case f.ItemID != nil:
		q.ItemIDs = []primitive.ObjectID{*f.ItemID}
	case f.CategoryID != nil:
		ids, err := s.items.IDsByCategory(ctx, *f.CategoryID)
		if err != nil {
			return nil, apperr.Runtime("There was an error while fetching the category items", err)
		}
		if ids == nil {
			ids = []primitive.ObjectID{}
		}
		q.ItemIDs = ids
	}

	var (
		found  []models.Order
		totals store.OrderTotals
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.orders.Find(gctx, q)
		if err != nil {
			return apperr.Runtime("There was an error while fetching all orders", err)
		}
		found = rows
		return nil
	})
	g.Go(func() error {
		sums, err := s.orders.Totals(gctx, q)
		if err != nil {
			return apperr.Runtime("There was an error while counting order reporting", err)
		}
		totals = sums
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &OrderStatistics{Data: found, Count: summarize(found, totals)}, nil
}

func summarize(found []models.Order, totals store.OrderTotals) StatisticsCount {
	discount, card, cash := decimal.Zero, decimal.Zero, decimal.Zero
	for i := range found {
		order := &found[i]
		discount = discount.Add(decimal.NewFromFloat(order.DiscountAmount()))
		total := decimal.NewFromFloat(order.OrderTotal)
		if order.PaymentType == models.PaymentTypeCard {
			card = card.Add(total)
		} else {
			cash = cash.Add(total)
		}
	}

	count := StatisticsCount{
		Orders:         totals.Orders,
		Tips:           totals.Tips,
		Bags:           totals.Bags,
		ServiceCharge:  totals.ServiceCharge,
		DeliveryCharge: totals.DeliveryCharge,
		OrderTotal:     totals.OrderTotal,
	}
	count.Discount, _ = discount.Float64()
	count.Card, _ = card.Float64()
	count.Cash, _ = cash.Float64()
	count.GrandTotal, _ = card.Add(cash).Float64()
	return count
}

// InactiveUsers returns the active users without an order in the range.
func (s *Service) InactiveUsers(ctx context.Context, start, end string) ([]models.User, error) {
	rng, err := ResolveRange(start, end)
	if err != nil {
		return nil, err
	}

	ids, err := s.orders.UserIDs(ctx, rng.query())
	if err != nil {
		return nil, apperr.Runtime("There was an error while fetching all orders", err)
	}

	users, err := s.users.FindExcluding(ctx, ids)
	if err != nil {
		return nil, apperr.Runtime("There was an error while fetching all inactive users", err)
	}
	return users, nil
}

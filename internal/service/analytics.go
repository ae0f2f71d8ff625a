package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/shopcore/internal/models"
	"github.com/Skotchmaster/shopcore/internal/repo"
	"github.com/Skotchmaster/shopcore/internal/transport"
)

type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return p, nil
	}
	return "", fmt.Errorf("unknown period %q: %w", s, ErrValidation)
}

// Start returns the UTC start of the period containing now. Weeks start on Sunday.
func (p Period) Start(now time.Time) time.Time {
	now = now.UTC()
	y, m, d := now.Date()
	switch p {
	case PeriodWeek:
		return time.Date(y, m, d-int(now.Weekday()), 0, 0, 0, 0, time.UTC)
	case PeriodMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	case PeriodYear:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
}

// Aggregator computes the analytics views at a given instant.
type Aggregator interface {
	RevenueStats(ctx context.Context, period Period, now time.Time) (*transport.RevenueStats, error)
	TopProducts(ctx context.Context, limit int, period Period, now time.Time) ([]transport.ProductSales, error)
	OrderStats(ctx context.Context) (*transport.OrderStats, error)
}

// ScanAggregator reads the whole order history on every call.
type ScanAggregator struct {
	Repo repo.Store
}

var _ Aggregator = (*ScanAggregator)(nil)

func (a *ScanAggregator) allOrders(ctx context.Context) ([]models.Order, error) {
	orders, err := a.Repo.ListOrders(ctx, repo.OrderFilter{})
	if err != nil {
		return nil, fmt.Errorf("scan orders: %w", err)
	}
	return orders, nil
}

func (a *ScanAggregator) RevenueStats(ctx context.Context, period Period, now time.Time) (*transport.RevenueStats, error) {
	orders, err := a.allOrders(ctx)
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	start := period.Start(now)
	prevStart := start.Add(-now.Sub(start))

	var curRev, curN, prevRev, prevN int64
	for _, o := range orders {
		at := o.CreatedAt.UTC()
		switch {
		case !at.Before(start) && !at.After(now):
			curRev += o.Total
			curN++
		case !at.Before(prevStart) && at.Before(start):
			prevRev += o.Total
			prevN++
		}
	}

	return &transport.RevenueStats{
		Period:            string(period),
		From:              start,
		To:                now,
		TotalRevenue:      curRev,
		TotalOrders:       curN,
		AverageOrderValue: average(curRev, curN),
		Trend: transport.Trend{
			Revenue: trend(curRev, prevRev),
			Orders:  trend(curN, prevN),
		},
	}, nil
}

// TopProducts ranks products by revenue over the orders of the current period,
// or over all orders when period is empty.
func (a *ScanAggregator) TopProducts(ctx context.Context, limit int, period Period, now time.Time) ([]transport.ProductSales, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be > 0: %w", ErrValidation)
	}
	orders, err := a.allOrders(ctx)
	if err != nil {
		return nil, err
	}

	var start time.Time
	if period != "" {
		start = period.Start(now)
	}

	byProduct := map[uuid.UUID]*transport.ProductSales{}
	for _, o := range orders {
		if !start.IsZero() && o.CreatedAt.Before(start) {
			continue
		}
		for _, it := range o.Items {
			ps, ok := byProduct[it.ProductID]
			if !ok {
				ps = &transport.ProductSales{ProductID: it.ProductID, Name: it.Name}
				byProduct[it.ProductID] = ps
			}
			ps.Quantity += it.Quantity
			ps.Revenue += it.LineTotal()
		}
	}

	out := make([]transport.ProductSales, 0, len(byProduct))
	for _, ps := range byProduct {
		out = append(out, *ps)
	}
	slices.SortFunc(out, func(x, y transport.ProductSales) int {
		if c := cmp.Compare(y.Revenue, x.Revenue); c != 0 {
			return c
		}
		if c := cmp.Compare(y.Quantity, x.Quantity); c != 0 {
			return c
		}
		return cmp.Compare(x.ProductID.String(), y.ProductID.String())
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (a *ScanAggregator) OrderStats(ctx context.Context) (*transport.OrderStats, error) {
	orders, err := a.allOrders(ctx)
	if err != nil {
		return nil, err
	}

	stats := &transport.OrderStats{ByStatus: make(map[models.OrderStatus]int64, len(models.OrderStatuses))}
	for _, st := range models.OrderStatuses {
		stats.ByStatus[st] = 0
	}
	for _, o := range orders {
		stats.TotalOrders++
		stats.TotalRevenue += o.Total
		stats.ByStatus[o.Status]++
	}
	stats.AverageOrderValue = average(stats.TotalRevenue, stats.TotalOrders)
	return stats, nil
}

func average(sum, n int64) int64 {
	if n == 0 {
		return 0
	}
	return decimal.NewFromInt(sum).DivRound(decimal.NewFromInt(n), 0).IntPart()
}

// trend is the percentage change against prev, rounded to two places; 0 when prev is 0.
func trend(cur, prev int64) float64 {
	if prev == 0 {
		return 0
	}
	return decimal.NewFromInt(cur - prev).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(prev), 2).
		InexactFloat64()
}

type AnalyticsService struct {
	Aggregator Aggregator
	Now        func() time.Time
}

func (s *AnalyticsService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AnalyticsService) GetRevenueStats(ctx context.Context, period string) (*transport.RevenueStats, error) {
	p, err := ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	return s.Aggregator.RevenueStats(ctx, p, s.now())
}

func (s *AnalyticsService) GetTopProducts(ctx context.Context, limit int, period string) ([]transport.ProductSales, error) {
	var p Period
	if period != "" {
		var err error
		if p, err = ParsePeriod(period); err != nil {
			return nil, err
		}
		if p == PeriodYear {
			return nil, fmt.Errorf("top products period %q: %w", period, ErrValidation)
		}
	}
	return s.Aggregator.TopProducts(ctx, limit, p, s.now())
}

func (s *AnalyticsService) GetOrderStats(ctx context.Context) (*transport.OrderStats, error) {
	return s.Aggregator.OrderStats(ctx)
}

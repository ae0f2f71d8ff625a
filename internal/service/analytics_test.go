package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shopcore/internal/models"
	"github.com/Skotchmaster/shopcore/internal/repo"
)

// Wednesday.
var analyticsNow = time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)

func newAnalytics(r repo.Store) *AnalyticsService {
	return &AnalyticsService{
		Aggregator: &ScanAggregator{Repo: r},
		Now:        func() time.Time { return analyticsNow },
	}
}

func seedOrder(t *testing.T, r repo.Store, at time.Time, status models.OrderStatus, items ...models.OrderItem) *models.Order {
	t.Helper()
	ctx := context.Background()

	var subtotal int64
	for _, it := range items {
		subtotal += it.LineTotal()
	}
	tax, shipping, total := ComputeTotals(subtotal)
	o := &models.Order{
		ID:              uuid.New(),
		UserID:          "u",
		Status:          status,
		Subtotal:        subtotal,
		Tax:             tax,
		Shipping:        shipping,
		Total:           total,
		ShippingAddress: testAddress(),
		CreatedAt:       at,
		UpdatedAt:       at,
	}
	require.NoError(t, r.CreateOrder(ctx, o))
	for i := range items {
		items[i].OrderID = o.ID
		items[i].Position = i
	}
	require.NoError(t, r.CreateOrderItems(ctx, items))
	return o
}

func line(id uuid.UUID, name string, qty, price int64) models.OrderItem {
	return models.OrderItem{ProductID: id, Name: name, Quantity: qty, Price: price}
}

func TestPeriodStart(t *testing.T) {
	t.Parallel()

	tests := []struct {
		period Period
		want   time.Time
	}{
		{PeriodDay, time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC)},
		{PeriodWeek, time.Date(2024, time.May, 12, 0, 0, 0, 0, time.UTC)},
		{PeriodMonth, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)},
		{PeriodYear, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.period.Start(analyticsNow), tt.period)
	}

	sunday := time.Date(2024, time.May, 12, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, time.May, 12, 0, 0, 0, 0, time.UTC), PeriodWeek.Start(sunday))

	_, err := ParsePeriod("decade")
	require.ErrorIs(t, err, ErrValidation)
}

func TestRevenueStats_Empty(t *testing.T) {
	env := newTestEnv(t)

	stats, err := newAnalytics(env.Repo).GetRevenueStats(context.Background(), "month")
	require.NoError(t, err)
	assert.Zero(t, stats.TotalRevenue)
	assert.Zero(t, stats.TotalOrders)
	assert.Zero(t, stats.AverageOrderValue)
	assert.Zero(t, stats.Trend.Revenue)
	assert.Zero(t, stats.Trend.Orders)
}

func TestRevenueStats_Windows(t *testing.T) {
	env := newTestEnv(t)
	p := uuid.New()

	// current day window is [May 15 00:00, 12:00], previous is [May 14 12:00, May 15 00:00)
	seedOrder(t, env.Repo, analyticsNow.Add(-1*time.Hour), models.OrderStatusPending, line(p, "a", 1, 1000))
	seedOrder(t, env.Repo, analyticsNow.Add(-2*time.Hour), models.OrderStatusDelivered, line(p, "a", 2, 1000))
	seedOrder(t, env.Repo, analyticsNow.Add(-13*time.Hour), models.OrderStatusPending, line(p, "a", 1, 1000))
	seedOrder(t, env.Repo, analyticsNow.Add(-30*time.Hour), models.OrderStatusPending, line(p, "a", 5, 1000))

	stats, err := newAnalytics(env.Repo).GetRevenueStats(context.Background(), "day")
	require.NoError(t, err)

	// 1000 -> 1580, 2000 -> 2660
	assert.EqualValues(t, 2, stats.TotalOrders)
	assert.EqualValues(t, 4240, stats.TotalRevenue)
	assert.EqualValues(t, 2120, stats.AverageOrderValue)
	assert.InDelta(t, 168.35, stats.Trend.Revenue, 0.0001)
	assert.InDelta(t, 100.0, stats.Trend.Orders, 0.0001)
	assert.Equal(t, time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC), stats.From)
}

func TestTopProducts(t *testing.T) {
	env := newTestEnv(t)
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	seedOrder(t, env.Repo, analyticsNow.Add(-time.Hour), models.OrderStatusPending,
		line(a, "a", 1, 100), line(b, "b", 3, 100))
	seedOrder(t, env.Repo, analyticsNow.Add(-2*time.Hour), models.OrderStatusDelivered,
		line(c, "c", 2, 100))

	top, err := newAnalytics(env.Repo).GetTopProducts(context.Background(), 2, "")
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, b, top[0].ProductID)
	assert.EqualValues(t, 300, top[0].Revenue)
	assert.EqualValues(t, 3, top[0].Quantity)
	assert.Equal(t, c, top[1].ProductID)
	assert.EqualValues(t, 200, top[1].Revenue)
}

func TestTopProducts_PeriodFilter(t *testing.T) {
	env := newTestEnv(t)
	a, b := uuid.New(), uuid.New()

	seedOrder(t, env.Repo, analyticsNow.Add(-time.Hour), models.OrderStatusPending, line(a, "a", 1, 100))
	seedOrder(t, env.Repo, analyticsNow.AddDate(0, 0, -3), models.OrderStatusPending, line(b, "b", 1, 500))

	svc := newAnalytics(env.Repo)
	top, err := svc.GetTopProducts(context.Background(), 10, "day")
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, a, top[0].ProductID)

	top, err = svc.GetTopProducts(context.Background(), 10, "month")
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, b, top[0].ProductID)

	_, err = svc.GetTopProducts(context.Background(), 0, "")
	require.ErrorIs(t, err, ErrValidation)
	_, err = svc.GetTopProducts(context.Background(), 1, "decade")
	require.ErrorIs(t, err, ErrValidation)
	_, err = svc.GetTopProducts(context.Background(), 1, "year")
	require.ErrorIs(t, err, ErrValidation)
}

func TestOrderStats(t *testing.T) {
	env := newTestEnv(t)
	p := uuid.New()

	seedOrder(t, env.Repo, analyticsNow, models.OrderStatusPending, line(p, "a", 1, 1000))
	seedOrder(t, env.Repo, analyticsNow, models.OrderStatusCancelled, line(p, "a", 2, 1000))
	seedOrder(t, env.Repo, analyticsNow.AddDate(-2, 0, 0), models.OrderStatusDelivered, line(p, "a", 1, 1000))

	stats, err := newAnalytics(env.Repo).GetOrderStats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalOrders)
	assert.EqualValues(t, 1580+2660+1580, stats.TotalRevenue)
	assert.EqualValues(t, 1940, stats.AverageOrderValue)
	assert.EqualValues(t, 1, stats.ByStatus[models.OrderStatusPending])
	assert.EqualValues(t, 1, stats.ByStatus[models.OrderStatusCancelled])
	assert.EqualValues(t, 1, stats.ByStatus[models.OrderStatusDelivered])
	assert.Zero(t, stats.ByStatus[models.OrderStatusShipped])
}

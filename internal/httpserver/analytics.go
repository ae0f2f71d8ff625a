package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shopcore/internal/service"
	"github.com/Skotchmaster/shopcore/internal/util"
	"github.com/Skotchmaster/shopcore/pkg/logging"
)

const defaultTopProducts = 10

type AnalyticsHTTP struct {
	Svc *service.AnalyticsService
}

func (h *AnalyticsHTTP) Revenue(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "analytics.revenue")

	period := c.QueryParam("period")
	if period == "" {
		period = string(service.PeriodMonth)
	}

	stats, err := h.Svc.GetRevenueStats(ctx, period)
	if err != nil {
		return fail(l, "revenue_stats_error", err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *AnalyticsHTTP) TopProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "analytics.top_products")

	limit := util.ParseIntDefault(c.QueryParam("limit"), defaultTopProducts)
	items, err := h.Svc.GetTopProducts(ctx, limit, c.QueryParam("period"))
	if err != nil {
		return fail(l, "top_products_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *AnalyticsHTTP) OrderStats(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "analytics.orders")

	stats, err := h.Svc.GetOrderStats(ctx)
	if err != nil {
		return fail(l, "order_stats_error", err)
	}
	return c.JSON(http.StatusOK, stats)
}

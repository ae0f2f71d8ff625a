package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shopcore/internal/service"
	"github.com/Skotchmaster/shopcore/internal/transport"
	"github.com/Skotchmaster/shopcore/pkg/logging"
)

type InventoryHTTP struct {
	Svc              *service.InventoryService
	DefaultThreshold int64
}

func (h *InventoryHTTP) UpdateInventory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inventory.update")

	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "update_inventory_error", "id is not a uuid", err)
	}

	var req struct {
		Quantity  int64                        `json:"quantity"`
		Operation transport.InventoryOperation `json:"operation"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_inventory_error", "invalid body", err)
	}

	product, err := h.Svc.UpdateInventory(ctx, transport.InventoryUpdate{
		ProductID: id,
		Quantity:  req.Quantity,
		Operation: req.Operation,
	})
	if err != nil {
		return fail(l, "update_inventory_error", err)
	}

	l.Info("update_inventory_success", "product_id", id, "operation", req.Operation, "stock", product.Stock)
	return c.JSON(http.StatusOK, product)
}

func (h *InventoryHTTP) BulkUpdateInventory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inventory.bulk")

	var req transport.BulkInventoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "bulk_inventory_error", "invalid body", err)
	}
	if len(req.Updates) == 0 {
		return badRequest(l, "bulk_inventory_error", "updates required", nil)
	}

	products, err := h.Svc.BulkUpdateInventory(ctx, req.Updates)
	if err != nil {
		return fail(l, "bulk_inventory_error", err)
	}

	l.Info("bulk_inventory_success", "count", len(products))
	return c.JSON(http.StatusOK, products)
}

func (h *InventoryHTTP) GetLowStock(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inventory.low_stock")

	threshold := h.DefaultThreshold
	if raw := c.QueryParam("threshold"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return badRequest(l, "low_stock_error", "threshold must be an integer", err)
		}
		threshold = v
	}

	products, err := h.Svc.GetLowStockProducts(ctx, threshold)
	if err != nil {
		return fail(l, "low_stock_error", err)
	}
	return c.JSON(http.StatusOK, products)
}

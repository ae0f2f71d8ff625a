package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shopcore/internal/models"
	"github.com/Skotchmaster/shopcore/internal/repo"
	"github.com/Skotchmaster/shopcore/internal/service"
	"github.com/Skotchmaster/shopcore/internal/transport"
	"github.com/Skotchmaster/shopcore/internal/util"
	"github.com/Skotchmaster/shopcore/pkg/logging"
	middleware "github.com/Skotchmaster/shopcore/pkg/middleware/auth"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

// ownedOrder loads the order and hides it from everyone except its owner and admins.
func (h *OrderHTTP) ownedOrder(c echo.Context, userID string, id uuid.UUID) (*models.Order, error) {
	o, err := h.Svc.GetOrder(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID && !middleware.IsAdmin(c) {
		return nil, service.ErrNotFound
	}
	return o, nil
}

func (h *OrderHTTP) GetOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(l, "get_orders_error", err)
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	f := repo.OrderFilter{
		UserID: userID,
		Status: models.OrderStatus(c.QueryParam("status")),
		Offset: offset,
		Limit:  limit,
	}
	if middleware.IsAdmin(c) {
		f.UserID = c.QueryParam("user_id")
	}

	orders, total, err := h.Svc.ListOrders(ctx, f)
	if err != nil {
		return fail(l, "get_orders_error", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": orders,
		"meta": util.Meta(page, offset, limit, total),
	})
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(l, "get_order_error", err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "get_order_error", "id is not a uuid", err)
	}

	order, err := h.ownedOrder(c, userID, id)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create")

	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(l, "create_order_error", err)
	}

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_order_error", "invalid body", err)
	}
	req.UserID = userID
	req.IdempotencyKey = c.Request().Header.Get(headerIdempotencyKey)

	order, err := h.Svc.CreateOrder(ctx, req)
	if err != nil {
		return fail(l, "create_order_error", err)
	}

	l.Info("create_order_success", "order_id", order.ID, "total", order.Total)
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHTTP) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.cancel")

	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(l, "cancel_order_error", err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "cancel_order_error", "id is not a uuid", err)
	}

	var req transport.CancelOrderRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return badRequest(l, "cancel_order_error", "invalid body", err)
		}
	}
	restore := true
	if req.RestoreInventory != nil {
		restore = *req.RestoreInventory
	}

	if _, err := h.ownedOrder(c, userID, id); err != nil {
		return fail(l, "cancel_order_error", err)
	}
	order, err := h.Svc.CancelOrder(ctx, id, restore)
	if err != nil {
		return fail(l, "cancel_order_error", err)
	}

	l.Info("cancel_order_success", "order_id", id, "restore_inventory", restore)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "update_order_status_error", "id is not a uuid", err)
	}

	var req transport.UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_order_status_error", "invalid body", err)
	}

	order, err := h.Svc.UpdateOrderStatus(ctx, id, req.Status)
	if err != nil {
		return fail(l, "update_order_status_error", err)
	}

	l.Info("update_order_status_success", "order_id", id, "status", order.Status)
	return c.JSON(http.StatusOK, order)
}

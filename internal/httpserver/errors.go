package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shopcore/internal/service"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrOutOfStock),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrIdempotencyConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail logs err under event and turns it into the HTTP error returned to the client.
// Internal errors are logged at error level and their text is not exposed.
func fail(l *slog.Logger, event string, err error) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		l.Error(event, "status", status, "error", err)
		return echo.NewHTTPError(status, "internal error")
	}
	l.Warn(event, "status", status, "error", err)

	body := map[string]any{"message": err.Error()}

	var stockErr *service.InsufficientStockError
	var oosErr *service.OutOfStockError
	var bulkErr *service.BulkUpdateError
	if errors.As(err, &bulkErr) {
		body["index"] = bulkErr.Index
		body["applied"] = bulkErr.Applied
	}
	switch {
	case errors.As(err, &stockErr):
		body["product_id"] = stockErr.ProductID
		body["available"] = stockErr.Available
		body["requested"] = stockErr.Requested
	case errors.As(err, &oosErr):
		body["products"] = oosErr.Products
	}
	return echo.NewHTTPError(status, body)
}

func badRequest(l *slog.Logger, event, reason string, err error) error {
	l.Warn(event, "status", http.StatusBadRequest, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, reason)
}

func unauthorized(l *slog.Logger, event string, err error) error {
	l.Warn(event, "status", http.StatusUnauthorized, "error", err)
	return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/shopcore/internal/events"
	"github.com/Skotchmaster/shopcore/internal/models"
	"github.com/Skotchmaster/shopcore/internal/repo"
	"github.com/Skotchmaster/shopcore/internal/transport"
	"github.com/Skotchmaster/shopcore/pkg/logging"
)

// IdempotencyStore tracks which order a client supplied key produced. Reserve claims the
// key before the order is placed. For a key that is already claimed it returns the order
// recorded for it, or uuid.Nil while that order is still being placed.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string) (reserved bool, orderID uuid.UUID, err error)
	Complete(ctx context.Context, key string, orderID uuid.UUID) error
	Release(ctx context.Context, key string) error
}

type OrderService struct {
	Repo              repo.Store
	Events            events.Publisher
	Idempotency       IdempotencyStore
	Transitions       TransitionPolicy
	LowStockThreshold int64
	Now               func() time.Time
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *OrderService) transitions() TransitionPolicy {
	if s.Transitions != nil {
		return s.Transitions
	}
	return PermissiveTransitions
}

func validateAddress(a models.Address, field string) error {
	required := []struct{ name, value string }{
		{"line1", a.Line1},
		{"city", a.City},
		{"state", a.State},
		{"postal_code", a.PostalCode},
		{"country", a.Country},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%s.%s required: %w", field, r.name, ErrValidation)
		}
	}
	return nil
}

type placement struct {
	order    *models.Order
	restock  []models.Product
	replayed bool
}

// CreateOrder prices the lines, stores the order with its items and takes the stock, all
// in one transaction.
func (s *OrderService) CreateOrder(ctx context.Context, req transport.CreateOrderRequest) (*models.Order, error) {
	if err := validUser(req.UserID); err != nil {
		return nil, err
	}

	return s.place(ctx, req.UserID, req.IdempotencyKey, func(tx repo.Store) (*placement, error) {
		return s.createOrderTx(ctx, tx, req)
	})
}

// Checkout turns the user's cart into an order and empties the cart. The cart is only
// cleared when the order was created.
func (s *OrderService) Checkout(ctx context.Context, userID string, req transport.CheckoutRequest, idempotencyKey string) (*models.Order, error) {
	if err := validUser(userID); err != nil {
		return nil, err
	}

	return s.place(ctx, userID, idempotencyKey, func(tx repo.Store) (*placement, error) {
		cart, err := tx.ListCartItems(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list cart: %w", err)
		}
		if len(cart) == 0 {
			return nil, ErrEmptyCart
		}

		lines := make([]transport.LineItem, 0, len(cart))
		for _, it := range cart {
			lines = append(lines, transport.LineItem{ProductID: it.ProductID, Quantity: it.Quantity})
		}
		pl, err := s.createOrderTx(ctx, tx, transport.CreateOrderRequest{
			UserID:          userID,
			Items:           lines,
			ShippingAddress: req.ShippingAddress,
			BillingAddress:  req.BillingAddress,
			PaymentMethodID: req.PaymentMethodID,
			Notes:           req.Notes,
		})
		if err != nil {
			return nil, err
		}

		if _, err := tx.ClearCart(ctx, userID); err != nil {
			return nil, fmt.Errorf("clear cart: %w", err)
		}
		return pl, nil
	})
}

// place runs fn in a transaction. A non-empty key is scoped to userID and reserved first,
// so a retried request gets the order placed by the first one instead of a second order.
func (s *OrderService) place(ctx context.Context, userID, key string, fn func(tx repo.Store) (*placement, error)) (*models.Order, error) {
	l := logging.FromContext(ctx)

	scoped := ""
	if key != "" && s.Idempotency != nil {
		scoped = userID + ":" + key
		reserved, id, err := s.Idempotency.Reserve(ctx, scoped)
		switch {
		case err != nil:
			l.Warn("idempotency_reserve_error", "key", key, "error", err)
			scoped = ""
		case reserved:
		case id == uuid.Nil:
			return nil, fmt.Errorf("idempotency key %q is in use by a pending request: %w", key, ErrIdempotencyConflict)
		default:
			return s.replay(ctx, userID, key, id)
		}
	}

	var pl *placement
	err := s.Repo.InTx(ctx, func(tx repo.Store) error {
		var err error
		pl, err = fn(tx)
		return err
	})
	if err != nil {
		if scoped != "" {
			if rerr := s.Idempotency.Release(ctx, scoped); rerr != nil {
				l.Warn("idempotency_release_error", "key", key, "error", rerr)
			}
		}
		return nil, err
	}

	if scoped != "" {
		if err := s.Idempotency.Complete(ctx, scoped, pl.order.ID); err != nil {
			l.Warn("idempotency_complete_error", "key", key, "order_id", pl.order.ID, "error", err)
		}
	}

	publish(ctx, s.Events, events.TopicOrders, pl.order.ID.String(), orderEvent(events.TypeOrderCreated, pl.order, ""))
	for i := range pl.restock {
		p := &pl.restock[i]
		if p.Active && p.Stock <= s.LowStockThreshold {
			publish(ctx, s.Events, events.TopicInventory, p.ID.String(), events.InventoryEvent{
				EventID:   events.NewEventID(),
				Type:      events.TypeInventoryLow,
				ProductID: p.ID,
				Stock:     p.Stock,
				Threshold: s.LowStockThreshold,
				Timestamp: s.now(),
			})
		}
	}
	return pl.order, nil
}

func (s *OrderService) replay(ctx context.Context, userID, key string, id uuid.UUID) (*models.Order, error) {
	o, err := s.GetOrder(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("idempotency key %q points at missing order %s: %w", key, id, ErrIdempotencyConflict)
	}
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, fmt.Errorf("idempotency key %q belongs to another user: %w", key, ErrIdempotencyConflict)
	}
	return o, nil
}

func (s *OrderService) createOrderTx(ctx context.Context, tx repo.Store, req transport.CreateOrderRequest) (*placement, error) {
	if err := validateAddress(req.ShippingAddress, "shipping_address"); err != nil {
		return nil, err
	}
	if req.BillingAddress != nil {
		if err := validateAddress(*req.BillingAddress, "billing_address"); err != nil {
			return nil, err
		}
	}

	totals, err := CalculateOrderTotal(ctx, tx, req.Items)
	if err != nil {
		return nil, err
	}

	now := s.now()
	order := &models.Order{
		ID:              uuid.New(),
		UserID:          req.UserID,
		Status:          models.OrderStatusPending,
		Subtotal:        totals.Subtotal,
		Tax:             totals.Tax,
		Shipping:        totals.Shipping,
		Total:           totals.Total,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		PaymentMethodID: req.PaymentMethodID,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := tx.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	items := make([]models.OrderItem, 0, len(totals.Items))
	for i, line := range totals.Items {
		items = append(items, models.OrderItem{
			OrderID:   order.ID,
			Position:  i,
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			Price:     line.Price,
		})
	}
	if err := tx.CreateOrderItems(ctx, items); err != nil {
		return nil, fmt.Errorf("create order items: %w", err)
	}
	order.Items = items

	touched := make([]models.Product, 0, len(items))
	for _, it := range items {
		p, err := applyInventory(ctx, tx, transport.InventoryUpdate{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Operation: transport.InventoryDecrement,
		})
		if err != nil {
			return nil, err
		}
		touched = append(touched, *p)
	}

	return &placement{order: order, restock: touched}, nil
}

// CancelOrder cancels the order and, when restoreInventory is set, puts every line back
// into stock. Cancelling an already cancelled order changes nothing.
func (s *OrderService) CancelOrder(ctx context.Context, id uuid.UUID, restoreInventory bool) (*models.Order, error) {
	var (
		order   *models.Order
		changed bool
	)
	err := s.Repo.InTx(ctx, func(tx repo.Store) error {
		o, err := tx.GetOrder(ctx, id)
		if err != nil {
			return notFound("order", id, err)
		}
		if o.Status == models.OrderStatusCancelled {
			order = o
			return nil
		}
		if err := s.transitions().Check(o.Status, models.OrderStatusCancelled); err != nil {
			return err
		}

		if restoreInventory {
			for _, it := range o.Items {
				if _, err := applyInventory(ctx, tx, transport.InventoryUpdate{
					ProductID: it.ProductID,
					Quantity:  it.Quantity,
					Operation: transport.InventoryIncrement,
				}); err != nil {
					return err
				}
			}
		}

		order, err = tx.UpdateOrderStatus(ctx, id, models.OrderStatusCancelled)
		if err != nil {
			return fmt.Errorf("cancel order %s: %w", id, err)
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		ev := orderEvent(events.TypeOrderCancelled, order, "")
		ev.Restocked = restoreInventory
		publish(ctx, s.Events, events.TopicOrders, order.ID.String(), ev)
	}
	return order, nil
}

func (s *OrderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown order status %q: %w", status, ErrValidation)
	}

	var (
		order *models.Order
		prev  models.OrderStatus
	)
	err := s.Repo.InTx(ctx, func(tx repo.Store) error {
		o, err := tx.GetOrder(ctx, id)
		if err != nil {
			return notFound("order", id, err)
		}
		prev = o.Status
		if err := s.transitions().Check(prev, status); err != nil {
			return err
		}

		order, err = tx.UpdateOrderStatus(ctx, id, status)
		if err != nil {
			return fmt.Errorf("update order %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, events.TopicOrders, order.ID.String(), orderEvent(events.TypeOrderStatusChanged, order, prev))
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, notFound("order", id, err)
	}
	return o, nil
}

func (s *OrderService) ListOrders(ctx context.Context, f repo.OrderFilter) ([]models.Order, int64, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, fmt.Errorf("unknown order status %q: %w", f.Status, ErrValidation)
	}

	total, err := s.Repo.CountOrders(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}
	orders, err := s.Repo.ListOrders(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

func orderEvent(typ string, o *models.Order, prev models.OrderStatus) events.OrderEvent {
	lines := make([]events.OrderLine, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, events.OrderLine{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}
	return events.OrderEvent{
		EventID:    events.NewEventID(),
		Type:       typ,
		OrderID:    o.ID,
		UserID:     o.UserID,
		Status:     string(o.Status),
		PrevStatus: string(prev),
		Total:      o.Total,
		Items:      lines,
		Timestamp:  time.Now().UTC(),
	}
}

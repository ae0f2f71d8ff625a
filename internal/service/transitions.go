package service

import (
	"fmt"

	"github.com/Skotchmaster/shopcore/internal/models"
)

// TransitionPolicy lists, per status, the statuses an order may move to.
type TransitionPolicy map[models.OrderStatus][]models.OrderStatus

// PermissiveTransitions lets any known status follow any other.
var PermissiveTransitions = func() TransitionPolicy {
	p := TransitionPolicy{}
	for _, from := range models.OrderStatuses {
		p[from] = append([]models.OrderStatus(nil), models.OrderStatuses...)
	}
	return p
}()

var LinearTransitions = TransitionPolicy{
	models.OrderStatusPending:    {models.OrderStatusProcessing, models.OrderStatusCancelled},
	models.OrderStatusProcessing: {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:    {models.OrderStatusDelivered, models.OrderStatusCancelled},
	models.OrderStatusDelivered:  nil,
	models.OrderStatusCancelled:  nil,
}

func (p TransitionPolicy) Allowed(from, to models.OrderStatus) bool {
	for _, next := range p[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (p TransitionPolicy) Check(from, to models.OrderStatus) error {
	if !to.Valid() {
		return fmt.Errorf("unknown order status %q: %w", to, ErrValidation)
	}
	if !p.Allowed(from, to) {
		return fmt.Errorf("%s -> %s: %w", from, to, ErrInvalidTransition)
	}
	return nil
}

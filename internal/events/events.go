package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	TopicOrders    = "order_events"
	TopicInventory = "inventory_events"
)

const (
	TypeOrderCreated       = "order_created"
	TypeOrderStatusChanged = "order_status_changed"
	TypeOrderCancelled     = "order_cancelled"
	TypeInventoryLow       = "inventory_low"
)

type Publisher interface {
	Publish(ctx context.Context, topic, key string, event any) error
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, any) error { return nil }

type OrderLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	Price     int64     `json:"price"`
}

type OrderEvent struct {
	EventID    string      `json:"event_id"`
	Type       string      `json:"type"`
	OrderID    uuid.UUID   `json:"order_id"`
	UserID     string      `json:"user_id"`
	Status     string      `json:"status"`
	PrevStatus string      `json:"prev_status,omitempty"`
	Total      int64       `json:"total"`
	Items      []OrderLine `json:"items,omitempty"`
	Restocked  bool        `json:"restocked,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

type InventoryEvent struct {
	EventID   string    `json:"event_id"`
	Type      string    `json:"type"`
	ProductID uuid.UUID `json:"product_id"`
	Stock     int64     `json:"stock"`
	Threshold int64     `json:"threshold"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEventID() string { return uuid.NewString() }

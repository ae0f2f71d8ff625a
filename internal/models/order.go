package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Order amounts are minor currency units; Total = Subtotal + Tax + Shipping.
type Order struct {
	ID              uuid.UUID   `gorm:"type:uuid;primaryKey"               json:"id"`
	UserID          string      `gorm:"index;not null"                     json:"user_id"`
	Status          OrderStatus `gorm:"index;not null"                     json:"status"`
	Items           []OrderItem `gorm:"foreignKey:OrderID"                 json:"items"`
	Subtotal        int64       `gorm:"not null"                           json:"subtotal"`
	Tax             int64       `gorm:"not null"                           json:"tax"`
	Shipping        int64       `gorm:"not null"                           json:"shipping"`
	Total           int64       `gorm:"not null"                           json:"total"`
	ShippingAddress Address     `gorm:"type:text;serializer:json;not null" json:"shipping_address"`
	BillingAddress  *Address    `gorm:"type:text;serializer:json"          json:"billing_address,omitempty"`
	PaymentMethodID *string     `                                          json:"payment_method_id,omitempty"`
	Notes           *string     `                                          json:"notes,omitempty"`
	CreatedAt       time.Time   `gorm:"index"                              json:"created_at"`
	UpdatedAt       time.Time   `                                          json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem is a snapshot of product name and price taken when the order was placed.
type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"         json:"-"`
	OrderID   uuid.UUID `gorm:"type:uuid;index;not null"     json:"-"`
	Position  int       `gorm:"not null"                     json:"-"`
	ProductID uuid.UUID `gorm:"type:uuid;index;not null"     json:"product_id"`
	Name      string    `gorm:"not null"                     json:"name"`
	Quantity  int64     `gorm:"not null;check:quantity > 0"  json:"quantity"`
	Price     int64     `gorm:"not null"                     json:"price"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (OrderItem) TableName() string {
	return "order_items"
}

func (i OrderItem) LineTotal() int64 {
	return i.Price * i.Quantity
}

package transport

import (
	"github.com/google/uuid"

	"github.com/Skotchmaster/shopcore/internal/models"
)

type CreateProductRequest struct {
	Name        string         `json:"name"`
	Description *string        `json:"description"`
	SKU         string         `json:"sku"`
	Price       int64          `json:"price"`
	Currency    string         `json:"currency"`
	Images      []string       `json:"images"`
	Stock       int64          `json:"stock"`
	Category    *string        `json:"category"`
	Metadata    map[string]any `json:"metadata"`
}

type PatchProductRequest struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Price       *int64         `json:"price"`
	Currency    *string        `json:"currency"`
	Images      *[]string      `json:"images"`
	Category    *string        `json:"category"`
	Metadata    map[string]any `json:"metadata"`
	Active      *bool          `json:"active"`
}

type InventoryOperation string

const (
	InventorySet       InventoryOperation = "set"
	InventoryIncrement InventoryOperation = "increment"
	InventoryDecrement InventoryOperation = "decrement"
)

type InventoryUpdate struct {
	ProductID uuid.UUID          `json:"product_id"`
	Quantity  int64              `json:"quantity"`
	Operation InventoryOperation `json:"operation"`
}

type BulkInventoryRequest struct {
	Updates []InventoryUpdate `json:"updates"`
}

type CartItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int64 `json:"quantity"`
}

type LineItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
}

type CreateOrderRequest struct {
	UserID          string          `json:"-"`
	Items           []LineItem      `json:"items"`
	ShippingAddress models.Address  `json:"shipping_address"`
	BillingAddress  *models.Address `json:"billing_address"`
	PaymentMethodID *string         `json:"payment_method_id"`
	Notes           *string         `json:"notes"`
	IdempotencyKey  string          `json:"-"`
}

type CheckoutRequest struct {
	ShippingAddress models.Address  `json:"shipping_address"`
	BillingAddress  *models.Address `json:"billing_address"`
	PaymentMethodID *string         `json:"payment_method_id"`
	Notes           *string         `json:"notes"`
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

type CancelOrderRequest struct {
	RestoreInventory *bool `json:"restore_inventory"`
}

type PricedLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	Quantity  int64     `json:"quantity"`
	LineTotal int64     `json:"line_total"`
	InStock   bool      `json:"in_stock"`
}

type OrderTotals struct {
	Subtotal int64        `json:"subtotal"`
	Tax      int64        `json:"tax"`
	Shipping int64        `json:"shipping"`
	Total    int64        `json:"total"`
	Items    []PricedLine `json:"items"`
}

type ListMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

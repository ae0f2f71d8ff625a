package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartItem rows exist only while quantity > 0.
type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"                         json:"-"`
	UserID    string    `gorm:"uniqueIndex:idx_cart_user_product;not null"   json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_user_product"  json:"product_id"`
	Quantity  int64     `gorm:"not null;check:quantity > 0"                  json:"quantity"`
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (CartItem) TableName() string {
	return "carts"
}

type CartItemWithProduct struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	Product   Product   `json:"product"`
	LineTotal int64     `json:"line_total"`
}

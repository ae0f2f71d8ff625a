package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Product prices are in minor currency units.
type Product struct {
	ID          uuid.UUID                   `gorm:"type:uuid;primaryKey"        json:"id"`
	Name        string                      `gorm:"not null"                    json:"name"`
	Description *string                     `                                   json:"description,omitempty"`
	SKU         string                      `gorm:"uniqueIndex;not null"        json:"sku"`
	Price       int64                       `gorm:"not null;check:price >= 0"   json:"price"`
	Currency    string                      `gorm:"size:3;not null"             json:"currency"`
	Images      datatypes.JSONSlice[string] `                                   json:"images"`
	Stock       int64                       `gorm:"not null"                    json:"stock"`
	Active      bool                        `gorm:"not null;index"              json:"active"`
	Category    *string                     `gorm:"index"                       json:"category,omitempty"`
	Metadata    datatypes.JSONMap           `                                   json:"metadata,omitempty"`
	CreatedAt   time.Time                   `                                   json:"created_at"`
	UpdatedAt   time.Time                   `                                   json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (Product) TableName() string {
	return "products"
}

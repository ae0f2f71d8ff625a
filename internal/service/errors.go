package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrValidation        = errors.New("validation")
	ErrNotFound          = errors.New("not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrOutOfStock        = errors.New("out of stock")
	ErrInvalidTransition = errors.New("invalid status transition")

	ErrIdempotencyConflict = errors.New("idempotency key conflict")
)

type InsufficientStockError struct {
	ProductID uuid.UUID
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d",
		e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// OutOfStockError names every line of an order that cannot be satisfied.
type OutOfStockError struct {
	Products []string
}

func (e *OutOfStockError) Error() string {
	return "insufficient stock for: " + strings.Join(e.Products, ", ")
}

func (e *OutOfStockError) Unwrap() error { return ErrOutOfStock }

// BulkUpdateError reports how many entries of a bulk inventory update were applied
// before entry Index failed.
type BulkUpdateError struct {
	Index   int
	Applied int
	Err     error
}

func (e *BulkUpdateError) Error() string {
	return fmt.Sprintf("bulk inventory update failed at entry %d (%d applied): %v", e.Index, e.Applied, e.Err)
}

func (e *BulkUpdateError) Unwrap() error { return e.Err }

func notFound(what string, id any, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %v: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("load %s %v: %w", what, id, err)
}

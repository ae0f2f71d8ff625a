package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shopcore/internal/models"
	"github.com/Skotchmaster/shopcore/internal/repo"
	"github.com/Skotchmaster/shopcore/internal/transport"
)

type CartService struct {
	Repo repo.Store
}

func validUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("user id required: %w", ErrValidation)
	}
	return nil
}

// AddToCart adds item.Quantity to the user's row for the product, creating it if needed,
// and returns the whole cart.
func (s *CartService) AddToCart(ctx context.Context, userID string, item transport.CartItemRequest) ([]models.CartItem, error) {
	if err := validUser(userID); err != nil {
		return nil, err
	}
	if item.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be > 0: %w", ErrValidation)
	}
	if _, err := s.Repo.GetProduct(ctx, item.ProductID); err != nil {
		return nil, notFound("product", item.ProductID, err)
	}

	if err := s.Repo.AddCartQuantity(ctx, userID, item.ProductID, item.Quantity); err != nil {
		return nil, fmt.Errorf("add to cart: %w", err)
	}
	return s.GetCart(ctx, userID)
}

// UpdateCartItem overwrites the quantity of an existing row; zero removes it.
func (s *CartService) UpdateCartItem(ctx context.Context, userID string, productID uuid.UUID, quantity int64) ([]models.CartItem, error) {
	if err := validUser(userID); err != nil {
		return nil, err
	}
	if quantity < 0 {
		return nil, fmt.Errorf("quantity must be >= 0: %w", ErrValidation)
	}

	var err error
	if quantity == 0 {
		err = s.Repo.DeleteCartItem(ctx, userID, productID)
	} else {
		err = s.Repo.SetCartQuantity(ctx, userID, productID, quantity)
	}
	if err != nil {
		return nil, notFound("cart item", productID, err)
	}
	return s.GetCart(ctx, userID)
}

func (s *CartService) GetCart(ctx context.Context, userID string) ([]models.CartItem, error) {
	items, err := s.Repo.ListCartItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	return items, nil
}

// GetCartWithDetails joins every row with its current product record.
func (s *CartService) GetCartWithDetails(ctx context.Context, userID string) ([]models.CartItemWithProduct, error) {
	items, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]models.CartItemWithProduct, 0, len(items))
	for _, it := range items {
		p, err := s.Repo.GetProduct(ctx, it.ProductID)
		if err != nil {
			return nil, notFound("product", it.ProductID, err)
		}
		amount, err := lineTotal(p.Price, it.Quantity)
		if err != nil {
			return nil, err
		}
		out = append(out, models.CartItemWithProduct{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Product:   *p,
			LineTotal: amount,
		})
	}
	return out, nil
}

func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	if _, err := s.Repo.ClearCart(ctx, userID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/shopcore/internal/models"
	"github.com/Skotchmaster/shopcore/internal/repo"
	"github.com/Skotchmaster/shopcore/internal/transport"
)

const defaultCurrency = "USD"

type CatalogService struct {
	Repo repo.Store
	Now  func() time.Time
}

// NewSKU returns "<base36 unix millis>-<4 random base36 chars>", uppercased.
func NewSKU(now time.Time) string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffix := make([]byte, 4)
	for i := range suffix {
		suffix[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36) + "-" + string(suffix))
}

func (s *CatalogService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("name required: %w", ErrValidation)
	}
	if req.Price < 0 {
		return nil, fmt.Errorf("price must be >= 0: %w", ErrValidation)
	}
	if req.Stock < 0 {
		return nil, fmt.Errorf("stock must be >= 0: %w", ErrValidation)
	}

	p := &models.Product{
		Name:        name,
		Description: req.Description,
		SKU:         strings.TrimSpace(req.SKU),
		Price:       req.Price,
		Currency:    strings.ToUpper(req.Currency),
		Images:      req.Images,
		Stock:       req.Stock,
		Active:      true,
		Category:    req.Category,
		Metadata:    req.Metadata,
	}
	if p.SKU == "" {
		p.SKU = NewSKU(s.now())
	}
	if p.Currency == "" {
		p.Currency = defaultCurrency
	}

	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound("product", id, err)
	}
	return p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, f repo.ProductFilter) ([]models.Product, int64, error) {
	items, total, err := s.Repo.ListProducts(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return items, total, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req transport.PatchProductRequest) (*models.Product, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("name must not be empty: %w", ErrValidation)
		}
		p.Name = name
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, fmt.Errorf("price must be >= 0: %w", ErrValidation)
		}
		p.Price = *req.Price
	}
	if req.Currency != nil {
		p.Currency = strings.ToUpper(*req.Currency)
	}
	if req.Images != nil {
		p.Images = *req.Images
	}
	if req.Category != nil {
		p.Category = req.Category
	}
	if req.Metadata != nil {
		p.Metadata = req.Metadata
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
	p.UpdatedAt = s.now()

	if err := s.Repo.SaveProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("save product %s: %w", id, err)
	}
	return p, nil
}

// DeleteProduct deactivates the product; order history keeps referencing it.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	active := false
	_, err := s.UpdateProduct(ctx, id, transport.PatchProductRequest{Active: &active})
	return err
}

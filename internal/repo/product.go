package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shopcore/internal/models"
)

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{})
	if f.Active != nil {
		q = q.Where("active = ?", *f.Active)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = q.Order("created_at ASC").Order("id ASC").Offset(f.Offset)
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var items []models.Product
	if err := q.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// SaveProduct writes every field except stock, which only moves through the stock operations.
func (r *GormRepo) SaveProduct(ctx context.Context, p *models.Product) error {
	res := r.DB.WithContext(ctx).
		Model(p).
		Select("*").
		Omit("id", "stock", "created_at").
		Updates(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) SetStock(ctx context.Context, id uuid.UUID, stock int64) (*models.Product, error) {
	return r.updateStock(ctx, id, stock, "id = ?", id)
}

func (r *GormRepo) IncrementStock(ctx context.Context, id uuid.UUID, qty int64) (*models.Product, error) {
	return r.updateStock(ctx, id, gorm.Expr("stock + ?", qty), "id = ?", id)
}

// DecrementStock applies the floor check and the write in one statement, so concurrent
// decrements cannot push stock below zero.
func (r *GormRepo) DecrementStock(ctx context.Context, id uuid.UUID, qty int64) (*models.Product, error) {
	p, err := r.updateStock(ctx, id, gorm.Expr("stock - ?", qty), "id = ? AND stock >= ?", id, qty)
	if err == nil {
		return p, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	current, err := r.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return current, ErrInsufficientStock
}

func (r *GormRepo) updateStock(ctx context.Context, id uuid.UUID, value any, where string, args ...any) (*models.Product, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where(where, args...).
		Updates(map[string]any{"stock": value, "updated_at": r.now()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetProduct(ctx, id)
}

func (r *GormRepo) ListLowStock(ctx context.Context, threshold int64) ([]models.Product, error) {
	var items []models.Product
	err := r.DB.WithContext(ctx).
		Where("active = ? AND stock <= ?", true, threshold).
		Order("stock ASC").Order("name ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

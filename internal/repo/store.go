package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shopcore/internal/models"
)

// ErrInsufficientStock is returned by DecrementStock together with the current product.
var ErrInsufficientStock = errors.New("insufficient stock")

type ProductFilter struct {
	Active   *bool
	Category string
	Offset   int
	Limit    int
}

type OrderFilter struct {
	UserID string
	Status models.OrderStatus
	Since  time.Time
	Until  time.Time
	Offset int
	Limit  int
}

// Store is the record store the services are written against.
// Missing records are reported as gorm.ErrRecordNotFound.
type Store interface {
	InTx(ctx context.Context, fn func(Store) error) error

	CreateProduct(ctx context.Context, p *models.Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, int64, error)
	SaveProduct(ctx context.Context, p *models.Product) error
	SetStock(ctx context.Context, id uuid.UUID, stock int64) (*models.Product, error)
	IncrementStock(ctx context.Context, id uuid.UUID, qty int64) (*models.Product, error)
	DecrementStock(ctx context.Context, id uuid.UUID, qty int64) (*models.Product, error)
	ListLowStock(ctx context.Context, threshold int64) ([]models.Product, error)

	ListCartItems(ctx context.Context, userID string) ([]models.CartItem, error)
	GetCartItem(ctx context.Context, userID string, productID uuid.UUID) (*models.CartItem, error)
	AddCartQuantity(ctx context.Context, userID string, productID uuid.UUID, qty int64) error
	SetCartQuantity(ctx context.Context, userID string, productID uuid.UUID, qty int64) error
	DeleteCartItem(ctx context.Context, userID string, productID uuid.UUID) error
	ClearCart(ctx context.Context, userID string) (int64, error)

	CreateOrder(ctx context.Context, o *models.Order) error
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error)
	CountOrders(ctx context.Context, f OrderFilter) (int64, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error)
}

type GormRepo struct {
	DB *gorm.DB
}

var _ Store = (*GormRepo)(nil)

func (r *GormRepo) InTx(ctx context.Context, fn func(Store) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepo{DB: tx})
	})
}

func (r *GormRepo) now() time.Time {
	return r.DB.NowFunc()
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Product{}, &models.CartItem{}, &models.Order{}, &models.OrderItem{})
}

package transport

import (
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/shopcore/internal/models"
)

type Trend struct {
	Revenue float64 `json:"revenue"`
	Orders  float64 `json:"orders"`
}

type RevenueStats struct {
	Period            string    `json:"period"`
	From              time.Time `json:"from"`
	To                time.Time `json:"to"`
	TotalRevenue      int64     `json:"total_revenue"`
	TotalOrders       int64     `json:"total_orders"`
	AverageOrderValue int64     `json:"average_order_value"`
	Trend             Trend     `json:"trend"`
}

type ProductSales struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Quantity  int64     `json:"quantity"`
	Revenue   int64     `json:"revenue"`
}

type OrderStats struct {
	TotalOrders       int64                        `json:"total_orders"`
	TotalRevenue      int64                        `json:"total_revenue"`
	AverageOrderValue int64                        `json:"average_order_value"`
	ByStatus          map[models.OrderStatus]int64 `json:"by_status"`
}

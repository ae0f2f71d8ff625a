package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/shopcore/pkg/middleware/auth"
)

type Deps struct {
	CatalogHandler   *CatalogHTTP
	InventoryHandler *InventoryHTTP
	CartHandler      *CartHTTP
	OrderHandler     *OrderHTTP
	AnalyticsHandler *AnalyticsHTTP
	JWTSecret        []byte
	Ready            func() error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(); err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
			}
		}
		return c.NoContent(http.StatusOK)
	})

	auth := middleware.NewVerifier(d.JWTSecret)

	products := e.Group("/products")
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)

	adminProducts := products.Group("", auth.RequireAdmin)
	adminProducts.POST("", d.CatalogHandler.CreateProduct)
	adminProducts.PATCH("/:id", d.CatalogHandler.PatchProduct)
	adminProducts.DELETE("/:id", d.CatalogHandler.DeleteProduct)
	adminProducts.PUT("/:id/inventory", d.InventoryHandler.UpdateInventory)
	adminProducts.POST("/inventory/bulk", d.InventoryHandler.BulkUpdateInventory)
	adminProducts.GET("/inventory/low-stock", d.InventoryHandler.GetLowStock)

	cart := e.Group("/cart", auth.RequireAuth)
	cart.GET("", d.CartHandler.GetCart)
	cart.GET("/details", d.CartHandler.GetCartDetails)
	cart.POST("", d.CartHandler.AddToCart)
	cart.PATCH("/items/:productId", d.CartHandler.UpdateCartItem)
	cart.DELETE("", d.CartHandler.ClearCart)
	cart.POST("/checkout", d.CartHandler.Checkout)

	orders := e.Group("/orders", auth.RequireAuth)
	orders.GET("", d.OrderHandler.GetOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.POST("/:id/cancel", d.OrderHandler.CancelOrder)
	orders.PATCH("/:id/status", d.OrderHandler.UpdateOrderStatus, auth.RequireAdmin)

	analytics := e.Group("/analytics", auth.RequireAdmin)
	analytics.GET("/revenue", d.AnalyticsHandler.Revenue)
	analytics.GET("/top-products", d.AnalyticsHandler.TopProducts)
	analytics.GET("/orders", d.AnalyticsHandler.OrderStats)
}

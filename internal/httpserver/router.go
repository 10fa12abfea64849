package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "sweetshop/internal/middleware/auth"
	"sweetshop/internal/models"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	CatalogHandler *CatalogHTTP
	Gate           *authmw.Gate
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"message": "Welcome to the Sweet Shop API!"})
	})

	e.POST("/register", d.AuthHandler.Register)
	e.POST("/token", d.AuthHandler.Token)

	seller := d.Gate.RequireRole(models.RoleSeller)

	products := e.Group("/products")
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)

	products.POST("", d.CatalogHandler.CreateProduct, seller)
	products.PUT("/:id", d.CatalogHandler.UpdateProduct, seller)
	products.DELETE("/:id", d.CatalogHandler.DeleteProduct, seller)

	products.POST("/:id/purchase", d.CatalogHandler.PurchaseProduct, d.Gate.RequireAuth)
	products.POST("/:id/restock", d.CatalogHandler.RestockProduct, seller)
}

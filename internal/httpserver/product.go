package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"sweetshop/internal/logging"
	"sweetshop/internal/models"
	"sweetshop/internal/repo"
	"sweetshop/internal/service"
	"sweetshop/internal/transport"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func productID(c echo.Context) (uint, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "id is not a valid integer")
	}
	return uint(id), nil
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := productID(c)
	if err != nil {
		return err
	}

	prod, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("get_product_failed", "status", 404, "productID", id)
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		l.Error("get_product_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get product")
	}

	return c.JSON(http.StatusOK, prod)
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	items, err := h.Svc.GetProducts(ctx)
	if err != nil {
		l.Error("get_products_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list products")
	}

	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search_products")

	items, err := h.Svc.SearchProducts(ctx, c.QueryParam("query"))
	if err != nil {
		l.Error("search_products_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot search products")
	}

	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_product_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	prod, err := h.Svc.CreateProduct(ctx, &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("create_product_failed", "status", 422, "error", err)
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, repo.ErrConflict):
			return echo.NewHTTPError(http.StatusBadRequest, "Product name already exists")
		}
		l.Error("create_product_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create product")
	}

	return c.JSON(http.StatusCreated, prod)
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update_product")

	id, err := productID(c)
	if err != nil {
		return err
	}

	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_product_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	prod, err := h.Svc.UpdateProduct(ctx, id, &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("update_product_failed", "status", 422, "error", err)
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, repo.ErrConflict):
			return echo.NewHTTPError(http.StatusBadRequest, "Product name already exists")
		case errors.Is(err, repo.ErrNotFound):
			l.Warn("update_product_failed", "status", 404, "productID", id)
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		l.Error("update_product_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update product")
	}

	return c.JSON(http.StatusOK, prod)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_product")

	id, err := productID(c)
	if err != nil {
		return err
	}

	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("delete_product_failed", "status", 404, "productID", id)
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		l.Error("delete_product_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete product")
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) PurchaseProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.purchase")

	id, err := productID(c)
	if err != nil {
		return err
	}

	var req transport.QuantityRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("purchase_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	prod, err := h.Svc.Purchase(ctx, id, req.Quantity)
	if err != nil {
		var stock *repo.InsufficientStockError
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("purchase_failed", "status", 422, "error", err)
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, repo.ErrNotFound):
			l.Warn("purchase_failed", "status", 404, "productID", id)
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		case errors.As(err, &stock):
			l.Warn("purchase_failed", "status", 400, "productID", id, "available", stock.Available)
			return echo.NewHTTPError(http.StatusBadRequest, stock.Error())
		}
		l.Error("purchase_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot purchase product")
	}

	return c.JSON(http.StatusOK, prod)
}

func (h *CatalogHTTP) RestockProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.restock")

	id, err := productID(c)
	if err != nil {
		return err
	}

	var req transport.QuantityRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("restock_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	prod, err := h.Svc.Restock(ctx, id, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("restock_failed", "status", 422, "error", err)
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, repo.ErrNotFound):
			l.Warn("restock_failed", "status", 404, "productID", id)
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		l.Error("restock_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot restock product")
	}

	return c.JSON(http.StatusOK, prod)
}

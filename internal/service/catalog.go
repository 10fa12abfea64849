package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sweetshop/internal/events"
	"sweetshop/internal/logging"
	"sweetshop/internal/models"
	"sweetshop/internal/repo"
	"sweetshop/internal/search"
)

var ErrValidation = errors.New("validation failed")

const maxNameLength = 100

type CatalogService struct {
	Repo     *repo.GormRepo
	Producer *events.Producer
	Search   *search.Service
}

func validateProduct(p *models.Product) error {
	if p.Name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrValidation)
	}
	if len(p.Name) > maxNameLength {
		return fmt.Errorf("%w: name must be at most %d characters", ErrValidation, maxNameLength)
	}
	if p.Price <= 0 {
		return fmt.Errorf("%w: price must be greater than zero", ErrValidation)
	}
	if p.Quantity < 0 {
		return fmt.Errorf("%w: quantity must be zero or greater", ErrValidation)
	}
	return nil
}

func (s *CatalogService) publish(ctx context.Context, key string, event map[string]any) {
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Producer.PublishEvent(pubCtx, events.TopicProductEvents, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_error", "topic", events.TopicProductEvents, "error", err)
	}
}

func (s *CatalogService) reindex(ctx context.Context, p *models.Product) {
	if err := s.Search.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Error("es_index_error", "productID", p.ID, "error", err)
	}
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	return s.Repo.GetProduct(ctx, id)
}

func (s *CatalogService) GetProducts(ctx context.Context) ([]models.Product, error) {
	return s.Repo.GetProducts(ctx)
}

func (s *CatalogService) CreateProduct(ctx context.Context, req *models.Product) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create_product")

	if err := validateProduct(req); err != nil {
		return nil, err
	}

	if _, err := s.Repo.FindProductByName(ctx, req.Name); err == nil {
		l.Warn("create_conflict", "name", req.Name)
		return nil, repo.ErrConflict
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	prod := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
	}
	if err := s.Repo.CreateProduct(ctx, &prod); err != nil {
		return nil, err
	}

	s.reindex(ctx, &prod)
	s.publish(ctx, fmt.Sprint(prod.ID), map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"name":      prod.Name,
	})

	l.Info("create_product_success", "productID", prod.ID)
	return &prod, nil
}

// UpdateProduct replaces name/description/price/quantity. Renaming to
// another product's name is a conflict; renaming to an unused name is fine.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, req *models.Product) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.update_product")

	if err := validateProduct(req); err != nil {
		return nil, err
	}

	if existing, err := s.Repo.FindProductByName(ctx, req.Name); err == nil {
		if existing.ID != id {
			l.Warn("update_conflict", "name", req.Name)
			return nil, repo.ErrConflict
		}
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	prod, err := s.Repo.UpdateProduct(ctx, id, req)
	if err != nil {
		return nil, err
	}

	s.reindex(ctx, prod)
	s.publish(ctx, fmt.Sprint(prod.ID), map[string]any{
		"type":      "product_updated",
		"productID": prod.ID,
		"name":      prod.Name,
	})

	l.Info("update_product_success", "productID", prod.ID)
	return prod, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	l := logging.FromContext(ctx).With("svc", "catalog.delete_product")

	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return err
	}

	if err := s.Search.DeleteProduct(ctx, id); err != nil {
		l.Error("es_delete_error", "productID", id, "error", err)
	}
	s.publish(ctx, fmt.Sprint(id), map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})

	l.Info("delete_product_success", "productID", id)
	return nil
}

func (s *CatalogService) Purchase(ctx context.Context, id uint, qty int) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.purchase")

	if qty <= 0 {
		return nil, fmt.Errorf("%w: quantity must be greater than zero", ErrValidation)
	}

	prod, err := s.Repo.PurchaseProduct(ctx, id, qty)
	if err != nil {
		return nil, err
	}

	s.reindex(ctx, prod)
	s.publish(ctx, fmt.Sprint(prod.ID), map[string]any{
		"type":      "product_purchased",
		"productID": prod.ID,
		"quantity":  qty,
	})

	l.Info("purchase_success", "productID", prod.ID, "quantity", qty)
	return prod, nil
}

func (s *CatalogService) Restock(ctx context.Context, id uint, qty int) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.restock")

	if qty <= 0 {
		return nil, fmt.Errorf("%w: quantity must be greater than zero", ErrValidation)
	}

	prod, err := s.Repo.RestockProduct(ctx, id, qty)
	if err != nil {
		return nil, err
	}

	s.reindex(ctx, prod)
	s.publish(ctx, fmt.Sprint(prod.ID), map[string]any{
		"type":      "product_restocked",
		"productID": prod.ID,
		"quantity":  qty,
	})

	l.Info("restock_success", "productID", prod.ID, "quantity", qty)
	return prod, nil
}

// SearchProducts prefers elasticsearch when it is configured and the query
// is non-empty, and falls back to the repo's case-insensitive LIKE match.
func (s *CatalogService) SearchProducts(ctx context.Context, q string) ([]models.Product, error) {
	if s.Search.Enabled(q) {
		items, err := s.Search.Search(ctx, q)
		if err == nil {
			return items, nil
		}
		logging.FromContext(ctx).Error("es_search_error", "query", q, "error", err)
	}
	return s.Repo.SearchProducts(ctx, q)
}

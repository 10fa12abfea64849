package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"sweetshop/internal/models"
)

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *GormRepo) GetProducts(ctx context.Context) ([]models.Product, error) {
	items := make([]models.Product, 0)
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) FindProductByName(ctx context.Context, name string) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).Where("name = ?", name).First(&product).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	if err := r.DB.WithContext(ctx).Create(p).Error; err != nil {
		return translate(err)
	}
	return nil
}

// UpdateProduct is a full replace of name/description/price/quantity.
func (r *GormRepo) UpdateProduct(ctx context.Context, id uint, req *models.Product) (*models.Product, error) {
	var prod models.Product
	if err := r.DB.WithContext(ctx).First(&prod, id).Error; err != nil {
		return nil, translate(err)
	}

	prod.Name = req.Name
	prod.Description = req.Description
	prod.Price = req.Price
	prod.Quantity = req.Quantity

	if err := r.DB.WithContext(ctx).Save(&prod).Error; err != nil {
		return nil, translate(err)
	}
	return &prod, nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchProducts matches q case-insensitively against name or description.
// An empty q matches everything.
func (r *GormRepo) SearchProducts(ctx context.Context, q string) ([]models.Product, error) {
	pattern := "%" + strings.ToLower(q) + "%"
	items := make([]models.Product, 0)
	if err := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// PurchaseProduct decrements the stock with a single conditional update,
// so two concurrent purchases can never drive quantity negative.
func (r *GormRepo) PurchaseProduct(ctx context.Context, id uint, qty int) (*models.Product, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND quantity >= ?", id, qty).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		prod, err := r.GetProduct(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, &InsufficientStockError{Available: prod.Quantity}
	}
	return r.GetProduct(ctx, id)
}

// RestockProduct has no upper bound on quantity.
func (r *GormRepo) RestockProduct(ctx context.Context, id uint, qty int) (*models.Product, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", qty))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetProduct(ctx, id)
}

package repo

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"sweetshop/internal/models"
)

func newTestRepo(t *testing.T) *GormRepo {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}))
	return &GormRepo{DB: db}
}

func seedProduct(t *testing.T, r *GormRepo, name string, qty int) *models.Product {
	p := &models.Product{Name: name, Description: "a sweet", Price: 2.5, Quantity: qty}
	require.NoError(t, r.CreateProduct(context.Background(), p))
	return p
}

func TestPurchaseDecrementsQuantity(t *testing.T) {
	r := newTestRepo(t)
	p := seedProduct(t, r, "fudge", 100)

	got, err := r.PurchaseProduct(context.Background(), p.ID, 30)
	require.NoError(t, err)
	require.Equal(t, 70, got.Quantity)
}

func TestPurchaseInsufficientStock(t *testing.T) {
	r := newTestRepo(t)
	p := seedProduct(t, r, "fudge", 5)

	_, err := r.PurchaseProduct(context.Background(), p.ID, 6)

	var stock *InsufficientStockError
	require.ErrorAs(t, err, &stock)
	require.Equal(t, 5, stock.Available)

	got, err := r.GetProduct(context.Background(), p.ID)
	require.NoError(t, err)
	require.Equal(t, 5, got.Quantity, "failed purchase must not change quantity")
}

func TestPurchaseExactQuantity(t *testing.T) {
	r := newTestRepo(t)
	p := seedProduct(t, r, "fudge", 5)

	got, err := r.PurchaseProduct(context.Background(), p.ID, 5)
	require.NoError(t, err)
	require.Equal(t, 0, got.Quantity)
}

func TestPurchaseMissingProduct(t *testing.T) {
	r := newTestRepo(t)

	_, err := r.PurchaseProduct(context.Background(), 404, 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRestockIncrementsQuantity(t *testing.T) {
	r := newTestRepo(t)
	p := seedProduct(t, r, "fudge", 1)

	got, err := r.RestockProduct(context.Background(), p.ID, 99)
	require.NoError(t, err)
	require.Equal(t, 100, got.Quantity)
}

func TestRestockMissingProduct(t *testing.T) {
	r := newTestRepo(t)

	_, err := r.RestockProduct(context.Background(), 404, 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateProductDuplicateName(t *testing.T) {
	r := newTestRepo(t)
	seedProduct(t, r, "fudge", 1)

	err := r.CreateProduct(context.Background(), &models.Product{Name: "fudge", Price: 1, Quantity: 1})
	require.ErrorIs(t, err, ErrConflict)
}

func TestDeleteProduct(t *testing.T) {
	r := newTestRepo(t)
	p := seedProduct(t, r, "fudge", 1)

	require.NoError(t, r.DeleteProduct(context.Background(), p.ID))

	_, err := r.GetProduct(context.Background(), p.ID)
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, r.DeleteProduct(context.Background(), p.ID), ErrNotFound)
}

func TestSearchProducts(t *testing.T) {
	r := newTestRepo(t)
	seedProduct(t, r, "Chocolate Fudge", 1)
	seedProduct(t, r, "Lemon Drop", 1)
	p := &models.Product{Name: "Gummy Bear", Description: "chewy chocolate-free sweet", Price: 1, Quantity: 1}
	require.NoError(t, r.CreateProduct(context.Background(), p))

	items, err := r.SearchProducts(context.Background(), "CHOCOLATE")
	require.NoError(t, err)
	require.Len(t, items, 2, "matches name and description case-insensitively")

	items, err = r.SearchProducts(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, items, 3, "empty query matches all")

	items, err = r.SearchProducts(context.Background(), "licorice")
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestCreateUserDuplicate(t *testing.T) {
	r := newTestRepo(t)

	u := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x", Role: models.RoleCustomer}
	require.NoError(t, r.CreateUser(context.Background(), u))

	sameName := &models.User{Username: "alice", Email: "other@example.com", PasswordHash: "x", Role: models.RoleCustomer}
	require.ErrorIs(t, r.CreateUser(context.Background(), sameName), ErrConflict)

	sameEmail := &models.User{Username: "bob", Email: "alice@example.com", PasswordHash: "x", Role: models.RoleCustomer}
	require.ErrorIs(t, r.CreateUser(context.Background(), sameEmail), ErrConflict)
}

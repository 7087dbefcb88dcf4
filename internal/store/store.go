package store

import (
	"context"
	"errors"
	"time"

	"rvmanagement/internal/domain"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("already exists")
	ErrInvalidRequest = errors.New("invalid request")
)

type Repository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, barcode string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	BuyInProduct(ctx context.Context, buyIn domain.BuyIn) (*domain.Product, error)

	ListBoxes(ctx context.Context) ([]domain.Box, error)
	GetBox(ctx context.Context, boxBarcode string) (*domain.Box, error)
	CreateBox(ctx context.Context, box domain.Box) (*domain.Box, error)
	// BuyInBox adds buyIn.Count boxes; prices are per unit of the boxed product.
	BuyInBox(ctx context.Context, buyIn domain.BuyIn) (*domain.Product, error)

	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, category domain.Category) (*domain.Category, error)

	ListDeposits(ctx context.Context, from time.Time, to time.Time) ([]domain.Deposit, error)
	ListPurchases(ctx context.Context, from time.Time, to time.Time) ([]domain.Purchase, error)
}

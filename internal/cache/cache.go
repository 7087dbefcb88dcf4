package cache

import (
	"context"
	"time"

	"rvmanagement/internal/domain"
)

// ProductCache holds products by barcode so repeated scans in the buy-in
// form do not hit the backend each time.
type ProductCache interface {
	Get(ctx context.Context, barcode string) (*domain.Product, bool, error)
	Set(ctx context.Context, product domain.Product, ttl time.Duration) error
	Delete(ctx context.Context, barcode string) error
}

type NoopProductCache struct{}

func (NoopProductCache) Get(_ context.Context, _ string) (*domain.Product, bool, error) {
	return nil, false, nil
}

func (NoopProductCache) Set(_ context.Context, _ domain.Product, _ time.Duration) error {
	return nil
}

func (NoopProductCache) Delete(_ context.Context, _ string) error {
	return nil
}

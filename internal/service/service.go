package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"rvmanagement/internal/barcode"
	"rvmanagement/internal/cache"
	"rvmanagement/internal/domain"
	"rvmanagement/internal/logger"
	"rvmanagement/internal/metrics"
	"rvmanagement/internal/pricing"
	"rvmanagement/internal/store"
)

const (
	defaultCategoryID = 1
	barcodeAttempts   = 3
)

type Service struct {
	repo          store.Repository
	cache         cache.ProductCache
	metrics       *metrics.Metrics
	logger        *slog.Logger
	barcodes      *barcode.Generator
	defaultMargin float64
	cacheTTL      time.Duration
	now           func() time.Time
}

// New wires the use cases. productCache, m and log may be nil.
func New(repo store.Repository, productCache cache.ProductCache, m *metrics.Metrics, log *slog.Logger, defaultMargin float64, cacheTTL time.Duration) *Service {
	if productCache == nil {
		productCache = cache.NoopProductCache{}
	}
	if log == nil {
		log = logger.Discard()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}

	return &Service{
		repo:          repo,
		cache:         productCache,
		metrics:       m,
		logger:        log,
		barcodes:      barcode.NewGenerator(nil),
		defaultMargin: defaultMargin,
		cacheTTL:      cacheTTL,
		now:           time.Now,
	}
}

func (s *Service) DefaultMargin() float64 {
	return s.defaultMargin
}

func (s *Service) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	sortBy := strings.ToLower(strings.TrimSpace(filter.SortBy))
	if sortBy == "" {
		sortBy = domain.SortByName
	}
	cmp, ok := productOrder[sortBy]
	if !ok {
		return nil, fmt.Errorf("%w: unknown sort %q", store.ErrInvalidRequest, filter.SortBy)
	}

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	result := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if filter.ActiveOnly && !p.Active {
			continue
		}
		if filter.CategoryID > 0 && p.CategoryID != filter.CategoryID {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) && !strings.HasPrefix(p.Barcode, query) {
			continue
		}
		result = append(result, p)
	}

	slices.SortStableFunc(result, func(a, b domain.Product) int {
		if c := cmp(a, b); c != 0 {
			if filter.Descending {
				return -c
			}
			return c
		}
		return strings.Compare(a.Barcode, b.Barcode)
	})
	return result, nil
}

var productOrder = map[string]func(a, b domain.Product) int{
	domain.SortByName: func(a, b domain.Product) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	},
	domain.SortByStock: func(a, b domain.Product) int {
		return a.Stock - b.Stock
	},
	domain.SortBySellPrice: func(a, b domain.Product) int {
		return compareInt64(a.SellPriceCents, b.SellPriceCents)
	},
	domain.SortByBarcode: func(a, b domain.Product) int {
		return strings.Compare(a.Barcode, b.Barcode)
	},
}

// GetProduct reads through the product cache. Cache failures are logged and
// never fail the request.
func (s *Service) GetProduct(ctx context.Context, barcodeValue string) (domain.Product, error) {
	barcodeValue = strings.TrimSpace(barcodeValue)
	if barcodeValue == "" {
		return domain.Product{}, store.ErrInvalidRequest
	}

	cached, hit, err := s.cache.Get(ctx, barcodeValue)
	if err != nil {
		s.logger.Warn("product cache read failed", "barcode", barcodeValue, "error", err)
	}
	if hit && cached != nil {
		return *cached, nil
	}

	product, err := s.repo.GetProduct(ctx, barcodeValue)
	if err != nil {
		return domain.Product{}, err
	}
	if err := s.cache.Set(ctx, *product, s.cacheTTL); err != nil {
		s.logger.Warn("product cache write failed", "barcode", barcodeValue, "error", err)
	}
	return *product, nil
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	req.Barcode = strings.TrimSpace(req.Barcode)
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.Product{}, fmt.Errorf("%w: name is required", store.ErrInvalidRequest)
	}
	if req.Stock < 0 {
		return domain.Product{}, fmt.Errorf("%w: stock must not be negative", store.ErrInvalidRequest)
	}
	if req.CategoryID == 0 {
		req.CategoryID = defaultCategoryID
	}

	buyCents, err := pricing.PositiveCentsFromDecimalString(req.BuyPrice)
	if err != nil {
		return domain.Product{}, fmt.Errorf("buy price: %w", err)
	}
	sellText := req.SellPrice
	if strings.TrimSpace(sellText) == "" {
		sellText = pricing.DeriveSellPrice(req.BuyPrice, s.marginOrDefault(req.Margin))
	}
	sellCents, err := pricing.PositiveCentsFromDecimalString(sellText)
	if err != nil {
		return domain.Product{}, fmt.Errorf("sell price: %w", err)
	}

	var created *domain.Product
	err = s.withBarcode(ctx, req.Barcode, func(code string) error {
		var err error
		created, err = s.repo.CreateProduct(ctx, domain.Product{
			Barcode:        code,
			Name:           req.Name,
			CategoryID:     req.CategoryID,
			BuyPriceCents:  buyCents,
			SellPriceCents: sellCents,
			Stock:          req.Stock,
			Active:         true,
		})
		return err
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit("product_create", "product", created.Barcode, fmt.Sprintf("name=%s,buy=%d,sell=%d,stock=%d", created.Name, created.BuyPriceCents, created.SellPriceCents, created.Stock))
	return *created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, barcodeValue string, req domain.ProductUpdateRequest) (domain.Product, error) {
	barcodeValue = strings.TrimSpace(barcodeValue)
	if barcodeValue == "" {
		return domain.Product{}, store.ErrInvalidRequest
	}

	existing, err := s.repo.GetProduct(ctx, barcodeValue)
	if err != nil {
		return domain.Product{}, err
	}

	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Product{}, fmt.Errorf("%w: name is required", store.ErrInvalidRequest)
		}
		updated.Name = name
	}
	if req.CategoryID != nil {
		if *req.CategoryID < 1 {
			return domain.Product{}, fmt.Errorf("%w: category id must be positive", store.ErrInvalidRequest)
		}
		updated.CategoryID = *req.CategoryID
	}
	if req.BuyPrice != nil {
		cents, err := pricing.PositiveCentsFromDecimalString(*req.BuyPrice)
		if err != nil {
			return domain.Product{}, fmt.Errorf("buy price: %w", err)
		}
		updated.BuyPriceCents = cents
	}
	if req.SellPrice != nil {
		cents, err := pricing.PositiveCentsFromDecimalString(*req.SellPrice)
		if err != nil {
			return domain.Product{}, fmt.Errorf("sell price: %w", err)
		}
		updated.SellPriceCents = cents
	}
	if req.Active != nil {
		updated.Active = *req.Active
	}

	saved, err := s.repo.UpdateProduct(ctx, updated)
	if err != nil {
		return domain.Product{}, err
	}
	s.invalidate(ctx, saved.Barcode)

	s.logAudit("product_update", "product", saved.Barcode, fmt.Sprintf("active=%t,buy=%d,sell=%d", saved.Active, saved.BuyPriceCents, saved.SellPriceCents))
	return *saved, nil
}

func (s *Service) ListBoxes(ctx context.Context) ([]domain.Box, error) {
	return s.repo.ListBoxes(ctx)
}

func (s *Service) GetBox(ctx context.Context, boxBarcode string) (domain.Box, error) {
	boxBarcode = strings.TrimSpace(boxBarcode)
	if boxBarcode == "" {
		return domain.Box{}, store.ErrInvalidRequest
	}
	box, err := s.repo.GetBox(ctx, boxBarcode)
	if err != nil {
		return domain.Box{}, err
	}
	return *box, nil
}

func (s *Service) CreateBox(ctx context.Context, req domain.BoxCreateRequest) (domain.Box, error) {
	req.BoxBarcode = strings.TrimSpace(req.BoxBarcode)
	req.ProductBarcode = strings.TrimSpace(req.ProductBarcode)
	if req.ProductBarcode == "" {
		return domain.Box{}, fmt.Errorf("%w: product barcode is required", store.ErrInvalidRequest)
	}
	if req.ItemsPerBox < 1 {
		return domain.Box{}, fmt.Errorf("%w: items per box must be at least 1", store.ErrInvalidRequest)
	}

	var created *domain.Box
	err := s.withBarcode(ctx, req.BoxBarcode, func(code string) error {
		var err error
		created, err = s.repo.CreateBox(ctx, domain.Box{
			BoxBarcode:     code,
			ProductBarcode: req.ProductBarcode,
			ItemsPerBox:    req.ItemsPerBox,
		})
		return err
	})
	if err != nil {
		return domain.Box{}, err
	}

	s.logAudit("box_create", "box", created.BoxBarcode, fmt.Sprintf("product=%s,items=%d", created.ProductBarcode, created.ItemsPerBox))
	return *created, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, req domain.CategoryCreateRequest) (domain.Category, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return domain.Category{}, fmt.Errorf("%w: description is required", store.ErrInvalidRequest)
	}
	created, err := s.repo.CreateCategory(ctx, domain.Category{Description: description})
	if err != nil {
		return domain.Category{}, err
	}
	s.logAudit("category_create", "category", strconv.Itoa(created.ID), created.Description)
	return *created, nil
}

// withBarcode calls create with code, or with freshly generated EAN-13 codes
// when code is blank. A generated code that is already taken is replaced, up
// to barcodeAttempts times.
func (s *Service) withBarcode(ctx context.Context, code string, create func(code string) error) error {
	if code != "" {
		return create(code)
	}
	var err error
	for range barcodeAttempts {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		generated := s.barcodes.EAN13()
		s.countBarcodes(1)
		err = create(generated)
		if !errors.Is(err, store.ErrConflict) {
			return err
		}
		s.logger.Warn("generated barcode already in use", "barcode", generated)
	}
	return err
}

func (s *Service) marginOrDefault(margin *float64) float64 {
	if margin == nil {
		return s.defaultMargin
	}
	return *margin
}

func (s *Service) invalidate(ctx context.Context, barcodeValue string) {
	if err := s.cache.Delete(ctx, barcodeValue); err != nil {
		s.logger.Warn("product cache invalidation failed", "barcode", barcodeValue, "error", err)
	}
}

func (s *Service) logAudit(action string, entity string, entityID string, detail string) {
	s.logger.Info("audit", "action", action, "entity", entity, "entity_id", entityID, "detail", detail)
}

func (s *Service) countBarcodes(n int) {
	if s.metrics == nil {
		return
	}
	s.metrics.BarcodesGenerated.Add(float64(n))
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

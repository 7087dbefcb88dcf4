package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"rvmanagement/internal/domain"
	"rvmanagement/internal/store"
	"rvmanagement/internal/xid"
)

type Store struct {
	mu             sync.RWMutex
	products       map[string]domain.Product
	boxes          map[string]domain.Box
	categories     map[int]domain.Category
	nextCategoryID int
	deposits       []domain.Deposit
	purchases      []domain.Purchase
}

func New() *Store {
	return &Store{
		products:       make(map[string]domain.Product),
		boxes:          make(map[string]domain.Box),
		categories:     make(map[int]domain.Category),
		nextCategoryID: 1,
	}
}

// NewSeeded returns a store with a small kiosk catalogue and a week of
// history, for local development and tests.
func NewSeeded() *Store {
	s := New()

	for _, c := range []domain.Category{
		{ID: 1, Description: "Uncategorized"},
		{ID: 2, Description: "Sweets"},
		{ID: 3, Description: "Drinks"},
		{ID: 4, Description: "Food"},
	} {
		s.categories[c.ID] = c
	}
	s.nextCategoryID = 5

	for _, p := range []domain.Product{
		{Barcode: "6415600501569", Name: "Chocolate Bar 200g", CategoryID: 2, BuyPriceCents: 210, SellPriceCents: 260, Stock: 40, Active: true},
		{Barcode: "6414200000120", Name: "Cola 0.5l", CategoryID: 3, BuyPriceCents: 120, SellPriceCents: 150, Stock: 96, Active: true},
		{Barcode: "6413100077416", Name: "Energy Drink 0.33l", CategoryID: 3, BuyPriceCents: 145, SellPriceCents: 180, Stock: 48, Active: true},
		{Barcode: "6416500302027", Name: "Liquorice 150g", CategoryID: 2, BuyPriceCents: 99, SellPriceCents: 125, Stock: 30, Active: true},
		{Barcode: "6416113004400", Name: "Instant Noodles", CategoryID: 4, BuyPriceCents: 55, SellPriceCents: 70, Stock: 60, Active: true},
		{Barcode: "6416600012345", Name: "Coffee Cup", CategoryID: 3, BuyPriceCents: 30, SellPriceCents: 40, Stock: 0, Active: false},
	} {
		s.products[p.Barcode] = p
	}

	for _, b := range []domain.Box{
		{BoxBarcode: "2000000001012", ProductBarcode: "6414200000120", ItemsPerBox: 24},
		{BoxBarcode: "2000000002026", ProductBarcode: "6413100077416", ItemsPerBox: 12},
		{BoxBarcode: "2000000003030", ProductBarcode: "6415600501569", ItemsPerBox: 3},
	} {
		s.boxes[b.BoxBarcode] = b
	}

	now := time.Now().UTC()
	users := []string{"alice", "bob", "carol"}
	for day := 0; day < 7; day++ {
		at := now.Add(-time.Duration(day) * 24 * time.Hour)
		user := users[day%len(users)]
		s.deposits = append(s.deposits, domain.Deposit{
			ID:          xid.New("dep"),
			Username:    user,
			AmountCents: int64(500 + day*250),
			Time:        at.Add(-2 * time.Hour),
		})
		for i, barcode := range []string{"6414200000120", "6415600501569"} {
			p := s.products[barcode]
			s.purchases = append(s.purchases, domain.Purchase{
				ID:          xid.New("pur"),
				Username:    user,
				Barcode:     p.Barcode,
				ProductName: p.Name,
				PriceCents:  p.SellPriceCents,
				Returned:    day == 3 && i == 1,
				Time:        at.Add(-time.Duration(i+1) * time.Hour),
			})
		}
	}

	return s
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	slices.SortFunc(products, func(a, b domain.Product) int {
		return strings.Compare(a.Barcode, b.Barcode)
	})
	return products, nil
}

func (s *Store) GetProduct(_ context.Context, barcode string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[barcode]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", barcode, store.ErrNotFound)
	}
	return &p, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	if product.Barcode == "" || product.Name == "" {
		return nil, store.ErrInvalidRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[product.Barcode]; exists {
		return nil, fmt.Errorf("product %s: %w", product.Barcode, store.ErrConflict)
	}
	if _, exists := s.boxes[product.Barcode]; exists {
		return nil, fmt.Errorf("barcode %s is a box: %w", product.Barcode, store.ErrConflict)
	}
	if _, ok := s.categories[product.CategoryID]; !ok {
		return nil, fmt.Errorf("category %d: %w", product.CategoryID, store.ErrNotFound)
	}

	s.products[product.Barcode] = product
	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[product.Barcode]; !ok {
		return nil, fmt.Errorf("product %s: %w", product.Barcode, store.ErrNotFound)
	}
	if _, ok := s.categories[product.CategoryID]; !ok {
		return nil, fmt.Errorf("category %d: %w", product.CategoryID, store.ErrNotFound)
	}

	s.products[product.Barcode] = product
	updated := product
	return &updated, nil
}

func (s *Store) BuyInProduct(_ context.Context, buyIn domain.BuyIn) (*domain.Product, error) {
	if buyIn.Count < 1 || buyIn.BuyPriceCents < 1 || buyIn.SellPriceCents < 1 {
		return nil, store.ErrInvalidRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.applyBuyInLocked(buyIn.Barcode, buyIn.Count, buyIn.BuyPriceCents, buyIn.SellPriceCents)
}

func (s *Store) ListBoxes(_ context.Context) ([]domain.Box, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	boxes := make([]domain.Box, 0, len(s.boxes))
	for _, b := range s.boxes {
		boxes = append(boxes, b)
	}
	slices.SortFunc(boxes, func(a, b domain.Box) int {
		return strings.Compare(a.BoxBarcode, b.BoxBarcode)
	})
	return boxes, nil
}

func (s *Store) GetBox(_ context.Context, boxBarcode string) (*domain.Box, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.boxes[boxBarcode]
	if !ok {
		return nil, fmt.Errorf("box %s: %w", boxBarcode, store.ErrNotFound)
	}
	return &b, nil
}

func (s *Store) CreateBox(_ context.Context, box domain.Box) (*domain.Box, error) {
	if box.BoxBarcode == "" || box.ProductBarcode == "" || box.ItemsPerBox < 1 {
		return nil, store.ErrInvalidRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.boxes[box.BoxBarcode]; exists {
		return nil, fmt.Errorf("box %s: %w", box.BoxBarcode, store.ErrConflict)
	}
	if _, exists := s.products[box.BoxBarcode]; exists {
		return nil, fmt.Errorf("barcode %s is a product: %w", box.BoxBarcode, store.ErrConflict)
	}
	if _, ok := s.products[box.ProductBarcode]; !ok {
		return nil, fmt.Errorf("product %s: %w", box.ProductBarcode, store.ErrNotFound)
	}

	s.boxes[box.BoxBarcode] = box
	created := box
	return &created, nil
}

func (s *Store) BuyInBox(_ context.Context, buyIn domain.BuyIn) (*domain.Product, error) {
	if buyIn.Count < 1 || buyIn.BuyPriceCents < 1 || buyIn.SellPriceCents < 1 {
		return nil, store.ErrInvalidRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	box, ok := s.boxes[buyIn.Barcode]
	if !ok {
		return nil, fmt.Errorf("box %s: %w", buyIn.Barcode, store.ErrNotFound)
	}
	return s.applyBuyInLocked(box.ProductBarcode, buyIn.Count*box.ItemsPerBox, buyIn.BuyPriceCents, buyIn.SellPriceCents)
}

func (s *Store) applyBuyInLocked(barcode string, units int, buyCents int64, sellCents int64) (*domain.Product, error) {
	p, ok := s.products[barcode]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", barcode, store.ErrNotFound)
	}
	p.Stock += units
	p.BuyPriceCents = buyCents
	p.SellPriceCents = sellCents
	s.products[barcode] = p
	return &p, nil
}

func (s *Store) ListCategories(_ context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := make([]domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		categories = append(categories, c)
	}
	slices.SortFunc(categories, func(a, b domain.Category) int {
		return a.ID - b.ID
	})
	return categories, nil
}

func (s *Store) CreateCategory(_ context.Context, category domain.Category) (*domain.Category, error) {
	if strings.TrimSpace(category.Description) == "" {
		return nil, store.ErrInvalidRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.categories {
		if strings.EqualFold(existing.Description, category.Description) {
			return nil, fmt.Errorf("category %q: %w", category.Description, store.ErrConflict)
		}
	}

	category.ID = s.nextCategoryID
	s.nextCategoryID++
	s.categories[category.ID] = category
	created := category
	return &created, nil
}

func (s *Store) ListDeposits(_ context.Context, from time.Time, to time.Time) ([]domain.Deposit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Deposit, 0, len(s.deposits))
	for _, d := range s.deposits {
		if inRange(d.Time, from, to) {
			result = append(result, d)
		}
	}
	slices.SortFunc(result, func(a, b domain.Deposit) int {
		return b.Time.Compare(a.Time)
	})
	return result, nil
}

func (s *Store) ListPurchases(_ context.Context, from time.Time, to time.Time) ([]domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Purchase, 0, len(s.purchases))
	for _, p := range s.purchases {
		if inRange(p.Time, from, to) {
			result = append(result, p)
		}
	}
	slices.SortFunc(result, func(a, b domain.Purchase) int {
		return b.Time.Compare(a.Time)
	})
	return result, nil
}

// AddDeposit and AddPurchase record history entries; the management API only
// reads history, so these exist for seeding and tests.
func (s *Store) AddDeposit(d domain.Deposit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == "" {
		d.ID = xid.New("dep")
	}
	s.deposits = append(s.deposits, d)
}

func (s *Store) AddPurchase(p domain.Purchase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = xid.New("pur")
	}
	s.purchases = append(s.purchases, p)
}

// inRange is half open: from <= at < to.
func inRange(at time.Time, from time.Time, to time.Time) bool {
	return !at.Before(from) && at.Before(to)
}

// Package remote implements store.Repository on top of the backend REST API.
// All monetary fields on the wire are integer cents.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"rvmanagement/internal/domain"
	"rvmanagement/internal/store"
)

const adminPrefix = "/api/v1/admin"

// ErrBackendFailure marks 5xx answers from the backend.
var ErrBackendFailure = errors.New("backend failure")

type Store struct {
	base  string
	token string
	http  *http.Client
}

func New(baseURL string, token string, timeout time.Duration) (*Store, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("backend url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("backend url %q: scheme must be http or https", baseURL)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Store{
		base:  strings.TrimRight(parsed.String(), "/"),
		token: strings.TrimSpace(token),
		http:  &http.Client{Timeout: timeout},
	}, nil
}

var _ store.Repository = (*Store)(nil)

type categoryDTO struct {
	CategoryID  int    `json:"categoryId"`
	Description string `json:"description"`
}

type productDTO struct {
	Barcode   string      `json:"barcode"`
	Name      string      `json:"name"`
	Category  categoryDTO `json:"category"`
	BuyPrice  int64       `json:"buyPrice"`
	SellPrice int64       `json:"sellPrice"`
	Stock     int         `json:"stock"`
	Active    bool        `json:"active"`
}

func (p productDTO) toDomain() domain.Product {
	return domain.Product{
		Barcode:        p.Barcode,
		Name:           p.Name,
		CategoryID:     p.Category.CategoryID,
		BuyPriceCents:  p.BuyPrice,
		SellPriceCents: p.SellPrice,
		Stock:          p.Stock,
		Active:         p.Active,
	}
}

type productWriteDTO struct {
	Barcode    string `json:"barcode,omitempty"`
	Name       string `json:"name"`
	CategoryID int    `json:"categoryId"`
	BuyPrice   int64  `json:"buyPrice"`
	SellPrice  int64  `json:"sellPrice"`
	Stock      int    `json:"stock"`
	Active     bool   `json:"active"`
}

type boxDTO struct {
	BoxBarcode  string     `json:"boxBarcode"`
	ItemsPerBox int        `json:"itemsPerBox"`
	Product     productDTO `json:"product"`
}

func (b boxDTO) toDomain() domain.Box {
	return domain.Box{
		BoxBarcode:     b.BoxBarcode,
		ProductBarcode: b.Product.Barcode,
		ItemsPerBox:    b.ItemsPerBox,
	}
}

type userDTO struct {
	Username string `json:"username"`
}

type depositDTO struct {
	DepositID json.Number `json:"depositId"`
	Time      time.Time   `json:"time"`
	Amount    int64       `json:"amount"`
	User      userDTO     `json:"user"`
}

type purchaseDTO struct {
	PurchaseID json.Number `json:"purchaseId"`
	Time       time.Time   `json:"time"`
	Price      int64       `json:"price"`
	Returned   bool        `json:"returned"`
	User       userDTO     `json:"user"`
	Product    productDTO  `json:"product"`
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var out struct {
		Products []productDTO `json:"products"`
	}
	if err := s.do(ctx, http.MethodGet, adminPrefix+"/products", nil, &out); err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(out.Products))
	for _, p := range out.Products {
		products = append(products, p.toDomain())
	}
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, barcode string) (*domain.Product, error) {
	var out struct {
		Product productDTO `json:"product"`
	}
	if err := s.do(ctx, http.MethodGet, adminPrefix+"/products/"+url.PathEscape(barcode), nil, &out); err != nil {
		return nil, err
	}
	product := out.Product.toDomain()
	return &product, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	body := productWriteDTO{
		Barcode:    product.Barcode,
		Name:       product.Name,
		CategoryID: product.CategoryID,
		BuyPrice:   product.BuyPriceCents,
		SellPrice:  product.SellPriceCents,
		Stock:      product.Stock,
		Active:     product.Active,
	}
	var out struct {
		Product productDTO `json:"product"`
	}
	if err := s.do(ctx, http.MethodPost, adminPrefix+"/products", body, &out); err != nil {
		return nil, err
	}
	created := out.Product.toDomain()
	return &created, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	body := productWriteDTO{
		Name:       product.Name,
		CategoryID: product.CategoryID,
		BuyPrice:   product.BuyPriceCents,
		SellPrice:  product.SellPriceCents,
		Stock:      product.Stock,
		Active:     product.Active,
	}
	var out struct {
		Product productDTO `json:"product"`
	}
	if err := s.do(ctx, http.MethodPatch, adminPrefix+"/products/"+url.PathEscape(product.Barcode), body, &out); err != nil {
		return nil, err
	}
	updated := out.Product.toDomain()
	return &updated, nil
}

func (s *Store) BuyInProduct(ctx context.Context, buyIn domain.BuyIn) (*domain.Product, error) {
	body := map[string]any{
		"count":     buyIn.Count,
		"buyPrice":  buyIn.BuyPriceCents,
		"sellPrice": buyIn.SellPriceCents,
	}
	path := adminPrefix + "/products/" + url.PathEscape(buyIn.Barcode) + "/buyIn"
	if err := s.do(ctx, http.MethodPost, path, body, nil); err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, buyIn.Barcode)
}

func (s *Store) ListBoxes(ctx context.Context) ([]domain.Box, error) {
	var out struct {
		Boxes []boxDTO `json:"boxes"`
	}
	if err := s.do(ctx, http.MethodGet, adminPrefix+"/boxes", nil, &out); err != nil {
		return nil, err
	}
	boxes := make([]domain.Box, 0, len(out.Boxes))
	for _, b := range out.Boxes {
		boxes = append(boxes, b.toDomain())
	}
	return boxes, nil
}

func (s *Store) GetBox(ctx context.Context, boxBarcode string) (*domain.Box, error) {
	var out struct {
		Box boxDTO `json:"box"`
	}
	if err := s.do(ctx, http.MethodGet, adminPrefix+"/boxes/"+url.PathEscape(boxBarcode), nil, &out); err != nil {
		return nil, err
	}
	box := out.Box.toDomain()
	return &box, nil
}

func (s *Store) CreateBox(ctx context.Context, box domain.Box) (*domain.Box, error) {
	body := map[string]any{
		"boxBarcode":     box.BoxBarcode,
		"itemsPerBox":    box.ItemsPerBox,
		"productBarcode": box.ProductBarcode,
	}
	var out struct {
		Box boxDTO `json:"box"`
	}
	if err := s.do(ctx, http.MethodPost, adminPrefix+"/boxes", body, &out); err != nil {
		return nil, err
	}
	created := out.Box.toDomain()
	return &created, nil
}

func (s *Store) BuyInBox(ctx context.Context, buyIn domain.BuyIn) (*domain.Product, error) {
	box, err := s.GetBox(ctx, buyIn.Barcode)
	if err != nil {
		return nil, err
	}
	body := map[string]any{
		"boxCount":         buyIn.Count,
		"productBuyPrice":  buyIn.BuyPriceCents,
		"productSellPrice": buyIn.SellPriceCents,
	}
	path := adminPrefix + "/boxes/" + url.PathEscape(buyIn.Barcode) + "/buyIn"
	if err := s.do(ctx, http.MethodPost, path, body, nil); err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, box.ProductBarcode)
}

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var out struct {
		Categories []categoryDTO `json:"categories"`
	}
	if err := s.do(ctx, http.MethodGet, adminPrefix+"/categories", nil, &out); err != nil {
		return nil, err
	}
	categories := make([]domain.Category, 0, len(out.Categories))
	for _, c := range out.Categories {
		categories = append(categories, domain.Category{ID: c.CategoryID, Description: c.Description})
	}
	return categories, nil
}

func (s *Store) CreateCategory(ctx context.Context, category domain.Category) (*domain.Category, error) {
	var out struct {
		Category categoryDTO `json:"category"`
	}
	body := map[string]string{"description": category.Description}
	if err := s.do(ctx, http.MethodPost, adminPrefix+"/categories", body, &out); err != nil {
		return nil, err
	}
	return &domain.Category{ID: out.Category.CategoryID, Description: out.Category.Description}, nil
}

func (s *Store) ListDeposits(ctx context.Context, from time.Time, to time.Time) ([]domain.Deposit, error) {
	var out struct {
		Deposits []depositDTO `json:"deposits"`
	}
	if err := s.do(ctx, http.MethodGet, adminPrefix+"/depositHistory?"+rangeQuery(from, to), nil, &out); err != nil {
		return nil, err
	}
	deposits := make([]domain.Deposit, 0, len(out.Deposits))
	for _, d := range out.Deposits {
		if d.Time.Before(from) || !d.Time.Before(to) {
			continue
		}
		deposits = append(deposits, domain.Deposit{
			ID:          d.DepositID.String(),
			Username:    d.User.Username,
			AmountCents: d.Amount,
			Time:        d.Time.UTC(),
		})
	}
	return deposits, nil
}

func (s *Store) ListPurchases(ctx context.Context, from time.Time, to time.Time) ([]domain.Purchase, error) {
	var out struct {
		Purchases []purchaseDTO `json:"purchases"`
	}
	if err := s.do(ctx, http.MethodGet, adminPrefix+"/purchaseHistory?"+rangeQuery(from, to), nil, &out); err != nil {
		return nil, err
	}
	purchases := make([]domain.Purchase, 0, len(out.Purchases))
	for _, p := range out.Purchases {
		if p.Time.Before(from) || !p.Time.Before(to) {
			continue
		}
		purchases = append(purchases, domain.Purchase{
			ID:          p.PurchaseID.String(),
			Username:    p.User.Username,
			Barcode:     p.Product.Barcode,
			ProductName: p.Product.Name,
			PriceCents:  p.Price,
			Returned:    p.Returned,
			Time:        p.Time.UTC(),
		})
	}
	return purchases, nil
}

func rangeQuery(from time.Time, to time.Time) string {
	q := url.Values{}
	q.Set("from", from.UTC().Format(time.RFC3339))
	q.Set("to", to.UTC().Format(time.RFC3339))
	return q.Encode()
}

type backendError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (s *Store) do(ctx context.Context, method string, path string, body any, dest any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.base+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return statusError(method, path, resp)
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("backend %s %s: decode: %w", method, path, err)
	}
	return nil
}

func statusError(method string, path string, resp *http.Response) error {
	msg := resp.Status
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var be backendError
	if json.Unmarshal(raw, &be) == nil && be.Error.Message != "" {
		msg = be.Error.Message
	}

	var kind error
	switch resp.StatusCode {
	case http.StatusNotFound:
		kind = store.ErrNotFound
	case http.StatusConflict:
		kind = store.ErrConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		kind = store.ErrInvalidRequest
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		kind = ErrBackendFailure
	default:
		return fmt.Errorf("backend %s %s: %s", method, path, msg)
	}
	return fmt.Errorf("backend %s %s: %s: %w", method, path, msg, kind)
}

// IsBackendUnavailable reports whether err came from the transport or from a
// backend that answered with a server error.
func IsBackendUnavailable(err error) bool {
	if errors.Is(err, ErrBackendFailure) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

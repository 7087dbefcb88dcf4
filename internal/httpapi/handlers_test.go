package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"rvmanagement/internal/metrics"
	"rvmanagement/internal/service"
	"rvmanagement/internal/store/memory"
	"rvmanagement/internal/store/remote"
)

// newTestAPI builds the full API over the seeded memory store so handler
// tests exercise the complete request path.
func newTestAPI(t *testing.T) http.Handler {
	t.Helper()

	m := metrics.New()
	svc := service.New(memory.NewSeeded(), nil, m, nil, 0.2, time.Minute)
	return New(svc, m, nil, "*").Handler()
}

func doJSON(t *testing.T, handler http.Handler, method string, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v (raw: %s)", err, rec.Body.String())
	}
	return body
}

func TestHandleHealth(t *testing.T) {
	rec := doJSON(t, newTestAPI(t), http.MethodGet, "/healthz", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("expected security headers")
	}
}

func TestProductBuyInFlow(t *testing.T) {
	handler := newTestAPI(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/products/6414200000120/buy-in", map[string]any{
		"count":     12,
		"buy_price": "1.25",
		"margin":    0.2,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["unit_sell_price"] != "1.50" || body["total_value"] != "15.00" {
		t.Fatalf("unexpected buy-in response: %v", body)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/products/6414200000120", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	product := decodeBody(t, rec)["product"].(map[string]any)
	if product["stock"].(float64) != 108 || product["buy_price_cents"].(float64) != 125 {
		t.Fatalf("unexpected product after buy-in: %v", product)
	}
}

func TestBuyInRejectsZeroSellPrice(t *testing.T) {
	rec := doJSON(t, newTestAPI(t), http.MethodPost, "/api/v1/products/6414200000120/buy-in", map[string]any{
		"count":      1,
		"buy_price":  "1.00",
		"sell_price": "0",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if msg, _ := decodeBody(t, rec)["error"].(string); !strings.Contains(msg, "sell price") {
		t.Fatalf("expected user-visible sell price message, got %q", msg)
	}
}

func TestBoxBuyIn(t *testing.T) {
	rec := doJSON(t, newTestAPI(t), http.MethodPost, "/api/v1/boxes/2000000003030/buy-in", map[string]any{
		"count":         1,
		"box_buy_price": "10",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["unit_buy_price"] != "3.34" || body["unit_sell_price"] != "4.01" || body["units_added"].(float64) != 3 {
		t.Fatalf("unexpected box buy-in: %v", body)
	}
}

func TestUnknownProductIs404(t *testing.T) {
	rec := doJSON(t, newTestAPI(t), http.MethodGet, "/api/v1/products/0000000000000", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCreateProductAndConflict(t *testing.T) {
	handler := newTestAPI(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/products", map[string]any{
		"name":        "Gum",
		"category_id": 2,
		"buy_price":   "0.80",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	product := decodeBody(t, rec)["product"].(map[string]any)
	if len(product["barcode"].(string)) != 13 || product["sell_price_cents"].(float64) != 96 {
		t.Fatalf("unexpected product: %v", product)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/products", map[string]any{
		"barcode":   "6414200000120",
		"name":      "Duplicate",
		"buy_price": "1",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	rec := doJSON(t, newTestAPI(t), http.MethodPost, "/api/v1/categories", map[string]any{
		"description": "Frozen",
		"colour":      "blue",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListProductsQuery(t *testing.T) {
	rec := doJSON(t, newTestAPI(t), http.MethodGet, "/api/v1/products?category_id=3&sort=sell_price&order=desc", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	products := decodeBody(t, rec)["products"].([]any)
	if len(products) != 3 {
		t.Fatalf("expected 3 drinks, got %d", len(products))
	}
	first := products[0].(map[string]any)
	if first["barcode"] != "6413100077416" {
		t.Fatalf("expected most expensive drink first, got %v", first["barcode"])
	}

	rec = doJSON(t, newTestAPI(t), http.MethodGet, "/api/v1/products?category_id=drinks", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric category, got %d", rec.Code)
	}
}

func TestQuoteEndpoint(t *testing.T) {
	rec := doJSON(t, newTestAPI(t), http.MethodPost, "/api/v1/pricing/quote", map[string]any{
		"buy_price":  "10.00",
		"sell_price": "12.00",
		"quantity":   3,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["is_default_margin"] != true || body["total_value"] != "30.00" {
		t.Fatalf("unexpected quote: %v", body)
	}
}

func TestBarcodeEndpoints(t *testing.T) {
	handler := newTestAPI(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/barcodes/generate?count=5", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	codes := decodeBody(t, rec)["barcodes"].([]any)
	if len(codes) != 5 {
		t.Fatalf("expected 5 barcodes, got %d", len(codes))
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/barcodes/validate", map[string]string{"barcode": codes[0].(string)})
	if body := decodeBody(t, rec); body["valid"] != true {
		t.Fatalf("expected generated code to validate, got %v", body)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/barcodes/check-digit?digits=400638133393", nil)
	if body := decodeBody(t, rec); body["check_digit"] != "1" || body["barcode"] != "4006381333931" {
		t.Fatalf("unexpected check digit: %v", body)
	}

	for _, path := range []string{"/api/v1/barcodes/generate?count=101", "/api/v1/barcodes/generate?count=x", "/api/v1/barcodes/check-digit?digits=12ab"} {
		if rec := doJSON(t, handler, http.MethodGet, path, nil); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, rec.Code)
		}
	}
}

func TestHistoryAndFinancialReport(t *testing.T) {
	handler := newTestAPI(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/history/deposits", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if deposits := decodeBody(t, rec)["deposits"].([]any); len(deposits) != 7 {
		t.Fatalf("expected 7 seeded deposits, got %d", len(deposits))
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/reports/financial", nil)
	if body := decodeBody(t, rec); body["deposit_cents"].(float64) != 8750 {
		t.Fatalf("unexpected financial report: %v", body)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/history/purchases?from=tomorrow", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", rec.Code)
	}
}

func TestInventoryExports(t *testing.T) {
	handler := newTestAPI(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/reports/inventory?format=csv", nil)
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv") {
		t.Fatalf("unexpected csv response: %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !strings.HasPrefix(rec.Body.String(), "barcode,name,") {
		t.Fatalf("unexpected csv body: %s", rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/reports/inventory?format=xlsx", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows("Inventory")
	if err != nil || len(rows) != 7 {
		t.Fatalf("expected header, 5 products and total, got %d rows (%v)", len(rows), err)
	}

	if rec := doJSON(t, handler, http.MethodGet, "/api/v1/reports/inventory?format=pdf", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown format, got %d", rec.Code)
	}
}

func TestMetricsEndpointCountsRoutes(t *testing.T) {
	handler := newTestAPI(t)
	doJSON(t, handler, http.MethodGet, "/api/v1/products/6414200000120", nil)

	rec := doJSON(t, handler, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `rvmanagement_http_requests_total{method="GET",route="/api/v1/products/",status="200"} 1`) {
		t.Fatalf("expected request counter by route pattern, got:\n%s", rec.Body.String())
	}
}

func TestBackendUnavailableIs502(t *testing.T) {
	repo, err := remote.New("http://127.0.0.1:1", "", 200*time.Millisecond)
	if err != nil {
		t.Fatalf("remote: %v", err)
	}
	handler := New(service.New(repo, nil, nil, nil, 0.2, time.Minute), nil, nil, "*").Handler()

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/categories", nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "backend unavailable" {
		t.Fatalf("expected hidden backend error, got %v", body["error"])
	}
}

func TestBackendServerErrorIs502(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"pool exhausted"}}`))
	}))
	t.Cleanup(backend.Close)

	repo, err := remote.New(backend.URL, "", time.Second)
	if err != nil {
		t.Fatalf("remote: %v", err)
	}
	handler := New(service.New(repo, nil, nil, nil, 0.2, time.Minute), nil, nil, "*").Handler()

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/products", nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "backend unavailable" {
		t.Fatalf("expected hidden backend error, got %v", body["error"])
	}
}

func TestOptionsPreflight(t *testing.T) {
	rec := doJSON(t, newTestAPI(t), http.MethodOptions, "/api/v1/products", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected CORS header")
	}
}

package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"rvmanagement/internal/barcode"
	"rvmanagement/internal/domain"
	"rvmanagement/internal/logger"
	"rvmanagement/internal/metrics"
	"rvmanagement/internal/pricing"
	"rvmanagement/internal/report"
	"rvmanagement/internal/service"
	"rvmanagement/internal/store"
	"rvmanagement/internal/store/remote"
)

const maxBodyBytes = 1 << 20

type API struct {
	service       *service.Service
	metrics       *metrics.Metrics
	logger        *slog.Logger
	allowedOrigin string
}

// New builds the management API. m may be nil, in which case /metrics is not
// mounted and requests are not counted.
func New(svc *service.Service, m *metrics.Metrics, log *slog.Logger, allowedOrigin string) *API {
	if log == nil {
		log = logger.Discard()
	}
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return &API{
		service:       svc,
		metrics:       m,
		logger:        log,
		allowedOrigin: allowedOrigin,
	}
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	a.handle(mux, "/healthz", a.handleHealth)
	if a.metrics != nil {
		mux.Handle("/metrics", a.metrics.Handler())
	}

	a.handle(mux, "/api/v1/products", a.handleProducts)
	a.handle(mux, "/api/v1/products/", a.handleProductActions)
	a.handle(mux, "/api/v1/boxes", a.handleBoxes)
	a.handle(mux, "/api/v1/boxes/", a.handleBoxActions)
	a.handle(mux, "/api/v1/categories", a.handleCategories)

	a.handle(mux, "/api/v1/pricing/quote", a.handleQuote)
	a.handle(mux, "/api/v1/barcodes/generate", a.handleBarcodeGenerate)
	a.handle(mux, "/api/v1/barcodes/validate", a.handleBarcodeValidate)
	a.handle(mux, "/api/v1/barcodes/check-digit", a.handleCheckDigit)

	a.handle(mux, "/api/v1/history/deposits", a.handleDeposits)
	a.handle(mux, "/api/v1/history/purchases", a.handlePurchases)
	a.handle(mux, "/api/v1/reports/financial", a.handleFinancialReport)
	a.handle(mux, "/api/v1/reports/inventory", a.handleInventoryReport)

	return a.withMiddleware(mux)
}

// handle registers h and counts its requests under the registered pattern, so
// barcodes in paths do not become label values.
func (a *API) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	if a.metrics == nil {
		mux.HandleFunc(pattern, h)
		return
	}
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		startedAt := time.Now()
		h(rec, r)
		a.metrics.HTTPRequests.WithLabelValues(r.Method, pattern, strconv.Itoa(rec.status)).Inc()
		a.metrics.HTTPDuration.WithLabelValues(r.Method, pattern).Observe(time.Since(startedAt).Seconds())
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		filter := domain.ProductFilter{
			Query:      q.Get("q"),
			SortBy:     q.Get("sort"),
			Descending: strings.EqualFold(q.Get("order"), "desc"),
			ActiveOnly: q.Get("active") == "true",
		}
		if raw := strings.TrimSpace(q.Get("category_id")); raw != "" {
			id, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, errors.New("category_id must be a number"))
				return
			}
			filter.CategoryID = id
		}

		products, err := a.service.ListProducts(r.Context(), filter)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"products": products})
	case http.MethodPost:
		var req domain.ProductCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		product, err := a.service.CreateProduct(r.Context(), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"product": product})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleProductActions(w http.ResponseWriter, r *http.Request) {
	tail := pathTail(r.URL.Path, "/api/v1/products/")
	if tail == "" {
		writeError(w, http.StatusBadRequest, errors.New("product barcode required"))
		return
	}

	if code, ok := strings.CutSuffix(tail, "/buy-in"); ok {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		var req domain.BuyInRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		resp, err := a.service.BuyInProduct(r.Context(), strings.Trim(code, "/"), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}
	if strings.Contains(tail, "/") {
		writeError(w, http.StatusNotFound, errors.New("unknown product action"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		product, err := a.service.GetProduct(r.Context(), tail)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"product": product})
	case http.MethodPatch:
		var req domain.ProductUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		updated, err := a.service.UpdateProduct(r.Context(), tail, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"product": updated})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleBoxes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		boxes, err := a.service.ListBoxes(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"boxes": boxes})
	case http.MethodPost:
		var req domain.BoxCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		box, err := a.service.CreateBox(r.Context(), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"box": box})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleBoxActions(w http.ResponseWriter, r *http.Request) {
	tail := pathTail(r.URL.Path, "/api/v1/boxes/")
	if tail == "" {
		writeError(w, http.StatusBadRequest, errors.New("box barcode required"))
		return
	}

	if code, ok := strings.CutSuffix(tail, "/buy-in"); ok {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		var req domain.BuyInRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		resp, err := a.service.BuyInBox(r.Context(), strings.Trim(code, "/"), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}
	if strings.Contains(tail, "/") {
		writeError(w, http.StatusNotFound, errors.New("unknown box action"))
		return
	}

	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	box, err := a.service.GetBox(r.Context(), tail)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"box": box})
}

func (a *API) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		categories, err := a.service.ListCategories(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
	case http.MethodPost:
		var req domain.CategoryCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		category, err := a.service.CreateCategory(r.Context(), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"category": category})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req domain.QuoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, a.service.Quote(req))
}

func (a *API) handleBarcodeGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	count := 1
	if raw := strings.TrimSpace(r.URL.Query().Get("count")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.New("count must be a number"))
			return
		}
		count = parsed
	}

	codes, err := a.service.GenerateBarcodes(count)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"barcodes": codes})
}

func (a *API) handleBarcodeValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req struct {
		Barcode string `json:"barcode"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, a.service.ValidateBarcode(req.Barcode))
}

func (a *API) handleCheckDigit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	digits := r.URL.Query().Get("digits")
	digit, err := a.service.CheckDigit(digits)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"digits":      strings.TrimSpace(digits),
		"check_digit": digit,
		"barcode":     strings.TrimSpace(digits) + digit,
	})
}

func (a *API) handleDeposits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	deposits, err := a.service.ListDeposits(r.Context(), r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deposits": deposits})
}

func (a *API) handlePurchases(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	purchases, err := a.service.ListPurchases(r.Context(), r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"purchases": purchases})
}

func (a *API) handleFinancialReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	summary, err := a.service.FinancialReport(r.Context(), r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (a *API) handleInventoryReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	inventory, err := a.service.InventoryReport(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	filename := "inventory-" + time.Now().UTC().Format("2006-01-02")
	switch format {
	case "", "json":
		writeJSON(w, http.StatusOK, inventory)
	case "csv":
		body, err := report.InventoryCSV(inventory)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeAttachment(w, "text/csv; charset=utf-8", filename+".csv", body)
	case "xlsx":
		body, err := report.InventoryXLSX(inventory)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeAttachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", filename+".xlsx", body)
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unsupported format %q", format))
	}
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if r.Method == http.MethodPost || r.Method == http.MethodPatch {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		startedAt := time.Now()
		next.ServeHTTP(rec, r)
		a.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(startedAt),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func pathTail(path string, prefix string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimPrefix(path, prefix), "/"))
}

// statusFor maps domain errors to HTTP statuses. Anything unrecognised is a
// 500 and its message is not shown to the caller.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pricing.ErrInvalidAmount),
		errors.Is(err, barcode.ErrInvalidInput),
		errors.Is(err, store.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	case remote.IsBackendUnavailable(err):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err)
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	return nil
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func writeError(w http.ResponseWriter, status int, err error) {
	// 4xx messages are meant for staff; 5xx details stay in the log.
	msg := err.Error()
	switch {
	case status == http.StatusBadGateway:
		slog.Error("backend unavailable", "error", err)
		msg = "backend unavailable"
	case status >= 500:
		slog.Error("internal error", "status", status, "error", err)
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeAttachment(w http.ResponseWriter, contentType string, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

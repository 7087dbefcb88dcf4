package service

import (
	"fmt"
	"strings"

	"rvmanagement/internal/barcode"
	"rvmanagement/internal/domain"
	"rvmanagement/internal/pricing"
	"rvmanagement/internal/store"
)

const maxGeneratedBarcodes = 100

// Quote recomputes the buy-in form as it is being edited. Prices are the ones
// a buy-in would commit, rounded up to the cent. It never fails: unparseable
// input shows up as "0.00" prices and the default margin.
func (s *Service) Quote(req domain.QuoteRequest) domain.QuoteResponse {
	unit := pricing.CeilPrice(req.BuyPrice)
	units := req.Quantity
	if strings.TrimSpace(req.BoxBuyPrice) != "" && req.ItemsPerBox > 0 {
		unit = pricing.UnitBuyPriceFromBox(req.BoxBuyPrice, req.ItemsPerBox)
		units = req.Quantity * req.ItemsPerBox
	}
	if units < 0 {
		units = 0
	}

	resp := domain.QuoteResponse{
		UnitBuyPrice:  unit,
		DefaultMargin: s.defaultMargin,
		TotalValue:    pricing.TotalValue(unit, units),
	}
	if strings.TrimSpace(req.SellPrice) != "" {
		resp.SellPrice = pricing.CeilPrice(req.SellPrice)
		resp.Margin = pricing.DeriveMargin(unit, resp.SellPrice, s.defaultMargin)
	} else {
		resp.Margin = s.marginOrDefault(req.Margin)
		resp.SellPrice = pricing.DeriveSellPrice(unit, resp.Margin)
	}
	resp.IsDefaultMargin = pricing.IsDefaultMargin(resp.Margin, s.defaultMargin, pricing.DefaultMarginTolerance)
	return resp
}

func (s *Service) GenerateBarcodes(count int) ([]string, error) {
	if count < 1 || count > maxGeneratedBarcodes {
		return nil, fmt.Errorf("%w: count must be between 1 and %d", store.ErrInvalidRequest, maxGeneratedBarcodes)
	}
	codes := make([]string, 0, count)
	for range count {
		codes = append(codes, s.barcodes.EAN13())
	}
	s.countBarcodes(count)
	return codes, nil
}

func (s *Service) ValidateBarcode(code string) domain.BarcodeValidation {
	code = strings.TrimSpace(code)
	result := domain.BarcodeValidation{Barcode: code, Valid: true}
	if err := barcode.Validate(code); err != nil {
		result.Valid = false
		result.Reason = err.Error()
	}
	return result
}

func (s *Service) CheckDigit(digits string) (string, error) {
	return barcode.CheckDigit(strings.TrimSpace(digits))
}

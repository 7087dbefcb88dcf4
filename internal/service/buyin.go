package service

import (
	"context"
	"fmt"
	"strings"

	"rvmanagement/internal/domain"
	"rvmanagement/internal/pricing"
	"rvmanagement/internal/store"
	"rvmanagement/internal/xid"
)

// BuyInProduct adds req.Count units of a product and replaces its prices.
// Both prices must convert to positive cents before the repository is called.
func (s *Service) BuyInProduct(ctx context.Context, barcodeValue string, req domain.BuyInRequest) (domain.BuyInResponse, error) {
	barcodeValue = strings.TrimSpace(barcodeValue)
	if barcodeValue == "" {
		return domain.BuyInResponse{}, s.reject(store.ErrInvalidRequest)
	}
	if req.Count < 1 {
		return domain.BuyInResponse{}, s.reject(fmt.Errorf("%w: count must be at least 1", store.ErrInvalidRequest))
	}

	buyCents, err := pricing.PositiveCentsFromDecimalString(req.BuyPrice)
	if err != nil {
		return domain.BuyInResponse{}, s.reject(fmt.Errorf("buy price: %w", err))
	}
	sellCents, err := pricing.PositiveCentsFromDecimalString(s.sellPriceText(pricing.FormatCents(buyCents), req))
	if err != nil {
		return domain.BuyInResponse{}, s.reject(fmt.Errorf("sell price: %w", err))
	}

	existing, err := s.repo.GetProduct(ctx, barcodeValue)
	if err != nil {
		return domain.BuyInResponse{}, err
	}
	updated, err := s.repo.BuyInProduct(ctx, domain.BuyIn{
		Barcode:        barcodeValue,
		Count:          req.Count,
		BuyPriceCents:  buyCents,
		SellPriceCents: sellCents,
	})
	if err != nil {
		return domain.BuyInResponse{}, err
	}

	return s.completeBuyIn(ctx, domain.BuyInModeProduct, *existing, *updated, req.Count), nil
}

// BuyInBox adds req.Count boxes. The unit buy price is req.BuyPrice, or the
// box price split over the box's items when req.BoxBuyPrice is set.
func (s *Service) BuyInBox(ctx context.Context, boxBarcode string, req domain.BuyInRequest) (domain.BuyInResponse, error) {
	boxBarcode = strings.TrimSpace(boxBarcode)
	if boxBarcode == "" {
		return domain.BuyInResponse{}, s.reject(store.ErrInvalidRequest)
	}
	if req.Count < 1 {
		return domain.BuyInResponse{}, s.reject(fmt.Errorf("%w: count must be at least 1", store.ErrInvalidRequest))
	}

	byBoxPrice := strings.TrimSpace(req.BoxBuyPrice) != ""
	if byBoxPrice {
		if _, err := pricing.PositiveCentsFromDecimalString(req.BoxBuyPrice); err != nil {
			return domain.BuyInResponse{}, s.reject(fmt.Errorf("box buy price: %w", err))
		}
	} else if _, err := pricing.PositiveCentsFromDecimalString(req.BuyPrice); err != nil {
		return domain.BuyInResponse{}, s.reject(fmt.Errorf("buy price: %w", err))
	}
	if strings.TrimSpace(req.SellPrice) != "" {
		if _, err := pricing.PositiveCentsFromDecimalString(req.SellPrice); err != nil {
			return domain.BuyInResponse{}, s.reject(fmt.Errorf("sell price: %w", err))
		}
	}

	box, err := s.repo.GetBox(ctx, boxBarcode)
	if err != nil {
		return domain.BuyInResponse{}, err
	}

	unitText := req.BuyPrice
	if byBoxPrice {
		unitText = pricing.UnitBuyPriceFromBox(req.BoxBuyPrice, box.ItemsPerBox)
	}
	buyCents, err := pricing.PositiveCentsFromDecimalString(unitText)
	if err != nil {
		return domain.BuyInResponse{}, s.reject(fmt.Errorf("unit buy price: %w", err))
	}
	sellCents, err := pricing.PositiveCentsFromDecimalString(s.sellPriceText(pricing.FormatCents(buyCents), req))
	if err != nil {
		return domain.BuyInResponse{}, s.reject(fmt.Errorf("sell price: %w", err))
	}

	existing, err := s.repo.GetProduct(ctx, box.ProductBarcode)
	if err != nil {
		return domain.BuyInResponse{}, err
	}
	updated, err := s.repo.BuyInBox(ctx, domain.BuyIn{
		Barcode:        box.BoxBarcode,
		Count:          req.Count,
		BuyPriceCents:  buyCents,
		SellPriceCents: sellCents,
	})
	if err != nil {
		return domain.BuyInResponse{}, err
	}

	return s.completeBuyIn(ctx, domain.BuyInModeBox, *existing, *updated, req.Count*box.ItemsPerBox), nil
}

// sellPriceText is the typed sell price, or the price derived from the
// committed unit buy price and the request margin (default margin when
// absent). Quote derives its sell price the same way.
func (s *Service) sellPriceText(unitBuyText string, req domain.BuyInRequest) string {
	if strings.TrimSpace(req.SellPrice) != "" {
		return req.SellPrice
	}
	return pricing.DeriveSellPrice(unitBuyText, s.marginOrDefault(req.Margin))
}

func (s *Service) completeBuyIn(ctx context.Context, mode string, before domain.Product, after domain.Product, units int) domain.BuyInResponse {
	s.invalidate(ctx, after.Barcode)

	unitBuy := pricing.FormatCents(after.BuyPriceCents)
	unitSell := pricing.FormatCents(after.SellPriceCents)
	resp := domain.BuyInResponse{
		ID:         xid.New("buyin"),
		Mode:       mode,
		Product:    after,
		UnitsAdded: units,
		UnitBuy:    unitBuy,
		UnitSell:   unitSell,
		Margin:     pricing.DeriveMargin(unitBuy, unitSell, s.defaultMargin),
		TotalValue: pricing.TotalValue(unitBuy, units),
		PriceChange: domain.PriceChange{
			Barcode:           after.Barcode,
			OldBuyPriceCents:  before.BuyPriceCents,
			NewBuyPriceCents:  after.BuyPriceCents,
			OldSellPriceCents: before.SellPriceCents,
			NewSellPriceCents: after.SellPriceCents,
			ChangedAt:         s.now().UTC(),
		},
	}

	if s.metrics != nil {
		s.metrics.BuyIns.WithLabelValues(mode).Inc()
		s.metrics.BuyInUnits.WithLabelValues(mode).Add(float64(units))
	}
	s.logAudit("buy_in", "product", after.Barcode, fmt.Sprintf("id=%s,mode=%s,units=%d,buy=%d,sell=%d,total=%s", resp.ID, mode, units, after.BuyPriceCents, after.SellPriceCents, resp.TotalValue))
	return resp
}

func (s *Service) reject(err error) error {
	if s.metrics != nil {
		s.metrics.RejectedBuyIns.Inc()
	}
	s.logger.Warn("buy-in rejected", "error", err)
	return err
}

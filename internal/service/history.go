package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rvmanagement/internal/domain"
	"rvmanagement/internal/report"
	"rvmanagement/internal/store"
)

const (
	dateLayout         = "2006-01-02"
	defaultHistoryDays = 30
)

func (s *Service) ListDeposits(ctx context.Context, from string, to string) ([]domain.Deposit, error) {
	start, end, err := s.dateRange(from, to)
	if err != nil {
		return nil, err
	}
	return s.repo.ListDeposits(ctx, start, end)
}

func (s *Service) ListPurchases(ctx context.Context, from string, to string) ([]domain.Purchase, error) {
	start, end, err := s.dateRange(from, to)
	if err != nil {
		return nil, err
	}
	return s.repo.ListPurchases(ctx, start, end)
}

func (s *Service) FinancialReport(ctx context.Context, from string, to string) (domain.FinancialReport, error) {
	start, end, err := s.dateRange(from, to)
	if err != nil {
		return domain.FinancialReport{}, err
	}

	deposits, err := s.repo.ListDeposits(ctx, start, end)
	if err != nil {
		return domain.FinancialReport{}, err
	}
	purchases, err := s.repo.ListPurchases(ctx, start, end)
	if err != nil {
		return domain.FinancialReport{}, err
	}
	return report.Financial(deposits, purchases, start, end.AddDate(0, 0, -1)), nil
}

func (s *Service) InventoryReport(ctx context.Context) (domain.InventoryReport, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return domain.InventoryReport{}, err
	}
	return report.Inventory(products, s.now()), nil
}

// dateRange turns inclusive YYYY-MM-DD bounds into a half-open UTC range.
// A blank to means today; a blank from means defaultHistoryDays before to.
func (s *Service) dateRange(from string, to string) (time.Time, time.Time, error) {
	var last time.Time
	if strings.TrimSpace(to) == "" {
		now := s.now().UTC()
		last = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	} else {
		parsed, err := time.Parse(dateLayout, strings.TrimSpace(to))
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: to must be YYYY-MM-DD", store.ErrInvalidRequest)
		}
		last = parsed.UTC()
	}

	first := last.AddDate(0, 0, -defaultHistoryDays)
	if strings.TrimSpace(from) != "" {
		parsed, err := time.Parse(dateLayout, strings.TrimSpace(from))
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: from must be YYYY-MM-DD", store.ErrInvalidRequest)
		}
		first = parsed.UTC()
	}
	if first.After(last) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from is after to", store.ErrInvalidRequest)
	}
	return first, last.AddDate(0, 0, 1), nil
}

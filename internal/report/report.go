// Package report aggregates inventory value and deposit/purchase history and
// renders the results as CSV or XLSX.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"rvmanagement/internal/domain"
	"rvmanagement/internal/pricing"
)

// Inventory values each product at stock times its per-unit cents. Products
// without stock are left out.
func Inventory(products []domain.Product, at time.Time) domain.InventoryReport {
	report := domain.InventoryReport{
		GeneratedAt: at.UTC().Format(time.RFC3339),
		Lines:       make([]domain.InventoryLine, 0, len(products)),
	}
	for _, p := range products {
		if p.Stock <= 0 {
			continue
		}
		line := domain.InventoryLine{
			Barcode:        p.Barcode,
			Name:           p.Name,
			CategoryID:     p.CategoryID,
			Stock:          p.Stock,
			BuyPriceCents:  p.BuyPriceCents,
			SellPriceCents: p.SellPriceCents,
			BuyValueCents:  int64(p.Stock) * p.BuyPriceCents,
			SellValueCents: int64(p.Stock) * p.SellPriceCents,
		}
		line.PotentialMargin = line.SellValueCents - line.BuyValueCents
		report.Lines = append(report.Lines, line)
		report.TotalStock += line.Stock
		report.TotalBuyValueCents += line.BuyValueCents
		report.TotalSellValueCents += line.SellValueCents
	}
	report.TotalPotentialMargin = report.TotalSellValueCents - report.TotalBuyValueCents

	slices.SortFunc(report.Lines, func(a, b domain.InventoryLine) int {
		if a.BuyValueCents != b.BuyValueCents {
			if a.BuyValueCents > b.BuyValueCents {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Barcode, b.Barcode)
	})
	return report
}

// Financial sums deposits and purchases for [from, to). Returned purchases are
// counted but not included in the purchase total.
func Financial(deposits []domain.Deposit, purchases []domain.Purchase, from time.Time, to time.Time) domain.FinancialReport {
	report := domain.FinancialReport{
		From: from.UTC().Format("2006-01-02"),
		To:   to.UTC().Format("2006-01-02"),
	}
	for _, d := range deposits {
		report.Deposits++
		report.DepositCents += d.AmountCents
	}
	for _, p := range purchases {
		if p.Returned {
			report.ReturnedPurchases++
			continue
		}
		report.Purchases++
		report.PurchaseCents += p.PriceCents
	}
	report.NetCents = report.DepositCents - report.PurchaseCents
	return report
}

var inventoryHeader = []string{"barcode", "name", "category_id", "stock", "buy_price", "sell_price", "buy_value", "sell_value", "potential_margin"}

func inventoryRow(line domain.InventoryLine) []string {
	return []string{
		line.Barcode,
		line.Name,
		strconv.Itoa(line.CategoryID),
		strconv.Itoa(line.Stock),
		pricing.FormatCents(line.BuyPriceCents),
		pricing.FormatCents(line.SellPriceCents),
		pricing.FormatCents(line.BuyValueCents),
		pricing.FormatCents(line.SellValueCents),
		pricing.FormatCents(line.PotentialMargin),
	}
}

func InventoryCSV(report domain.InventoryReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(inventoryHeader); err != nil {
		return nil, err
	}
	for _, line := range report.Lines {
		if err := w.Write(inventoryRow(line)); err != nil {
			return nil, err
		}
	}
	total := []string{
		"total", "", "", strconv.Itoa(report.TotalStock), "", "",
		pricing.FormatCents(report.TotalBuyValueCents),
		pricing.FormatCents(report.TotalSellValueCents),
		pricing.FormatCents(report.TotalPotentialMargin),
	}
	if err := w.Write(total); err != nil {
		return nil, err
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// InventoryXLSX writes the report to a single "Inventory" sheet. Money
// columns are numbers in major units so spreadsheet sums work.
func InventoryXLSX(report domain.InventoryReport) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Inventory"
	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	header := make([]interface{}, 0, len(inventoryHeader))
	for _, h := range inventoryHeader {
		header = append(header, h)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("xlsx header: %w", err)
	}

	row := 2
	for _, line := range report.Lines {
		values := []interface{}{
			line.Barcode,
			line.Name,
			line.CategoryID,
			line.Stock,
			centsToFloat(line.BuyPriceCents),
			centsToFloat(line.SellPriceCents),
			centsToFloat(line.BuyValueCents),
			centsToFloat(line.SellValueCents),
			centsToFloat(line.PotentialMargin),
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, fmt.Errorf("xlsx cell: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("xlsx row %d: %w", row, err)
		}
		row++
	}

	totals := []interface{}{
		"total", "", "", report.TotalStock, "", "",
		centsToFloat(report.TotalBuyValueCents),
		centsToFloat(report.TotalSellValueCents),
		centsToFloat(report.TotalPotentialMargin),
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return nil, fmt.Errorf("xlsx cell: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &totals); err != nil {
		return nil, fmt.Errorf("xlsx totals: %w", err)
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func centsToFloat(cents int64) float64 {
	return float64(cents) / 100
}

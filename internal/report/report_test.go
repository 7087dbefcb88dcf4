package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"rvmanagement/internal/domain"
)

func sampleProducts() []domain.Product {
	return []domain.Product{
		{Barcode: "A", Name: "Cola", Stock: 10, BuyPriceCents: 120, SellPriceCents: 150},
		{Barcode: "B", Name: "Chocolate", Stock: 3, BuyPriceCents: 334, SellPriceCents: 401},
		{Barcode: "C", Name: "Sold out", Stock: 0, BuyPriceCents: 100, SellPriceCents: 200},
	}
}

func TestInventoryTotals(t *testing.T) {
	r := Inventory(sampleProducts(), time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC))

	if len(r.Lines) != 2 {
		t.Fatalf("expected sold out product to be skipped, got %d lines", len(r.Lines))
	}
	if r.Lines[0].Barcode != "A" {
		t.Fatalf("expected highest buy value first, got %s", r.Lines[0].Barcode)
	}
	// 3 * 3.34 = 10.02, rounding stays per unit.
	if r.Lines[1].BuyValueCents != 1002 {
		t.Fatalf("expected 1002, got %d", r.Lines[1].BuyValueCents)
	}
	if r.TotalBuyValueCents != 2202 || r.TotalSellValueCents != 2703 || r.TotalPotentialMargin != 501 {
		t.Fatalf("unexpected totals: %+v", r)
	}
	if r.TotalStock != 13 {
		t.Fatalf("expected stock 13, got %d", r.TotalStock)
	}
}

func TestFinancialExcludesReturnedPurchases(t *testing.T) {
	from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)
	r := Financial(
		[]domain.Deposit{{AmountCents: 1000}, {AmountCents: 500}},
		[]domain.Purchase{{PriceCents: 150}, {PriceCents: 260, Returned: true}, {PriceCents: 180}},
		from, to,
	)
	if r.Deposits != 2 || r.DepositCents != 1500 {
		t.Fatalf("unexpected deposits: %+v", r)
	}
	if r.Purchases != 2 || r.PurchaseCents != 330 || r.ReturnedPurchases != 1 {
		t.Fatalf("unexpected purchases: %+v", r)
	}
	if r.NetCents != 1170 || r.From != "2026-10-01" || r.To != "2026-10-08" {
		t.Fatalf("unexpected summary: %+v", r)
	}
}

func TestInventoryCSV(t *testing.T) {
	out, err := InventoryCSV(Inventory(sampleProducts(), time.Now()))
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, 2 rows and total, got %d lines:\n%s", len(lines), out)
	}
	if lines[2] != "B,Chocolate,0,3,3.34,4.01,10.02,12.03,2.01" {
		t.Fatalf("unexpected row: %s", lines[2])
	}
	if !strings.HasPrefix(lines[3], "total,,,13,,,22.02,27.03,5.01") {
		t.Fatalf("unexpected total row: %s", lines[3])
	}
}

func TestInventoryXLSX(t *testing.T) {
	out, err := InventoryXLSX(Inventory(sampleProducts(), time.Now()))
	if err != nil {
		t.Fatalf("xlsx: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Inventory")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[0][0] != "barcode" || rows[1][1] != "Cola" || rows[3][0] != "total" {
		t.Fatalf("unexpected sheet content: %v", rows)
	}
}

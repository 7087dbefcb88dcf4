package domain

import "time"

type Product struct {
	Barcode        string `json:"barcode"`
	Name           string `json:"name"`
	CategoryID     int    `json:"category_id"`
	BuyPriceCents  int64  `json:"buy_price_cents"`
	SellPriceCents int64  `json:"sell_price_cents"`
	Stock          int    `json:"stock"`
	Active         bool   `json:"active"`
}

// Prices in create/update requests are decimal strings as typed into the form.
type ProductCreateRequest struct {
	Barcode    string   `json:"barcode"`
	Name       string   `json:"name"`
	CategoryID int      `json:"category_id"`
	BuyPrice   string   `json:"buy_price"`
	SellPrice  string   `json:"sell_price,omitempty"`
	Margin     *float64 `json:"margin,omitempty"`
	Stock      int      `json:"stock"`
}

type ProductUpdateRequest struct {
	Name       *string `json:"name,omitempty"`
	CategoryID *int    `json:"category_id,omitempty"`
	BuyPrice   *string `json:"buy_price,omitempty"`
	SellPrice  *string `json:"sell_price,omitempty"`
	Active     *bool   `json:"active,omitempty"`
}

type ProductFilter struct {
	CategoryID int
	Query      string
	SortBy     string
	Descending bool
	ActiveOnly bool
}

type Box struct {
	BoxBarcode     string `json:"box_barcode"`
	ProductBarcode string `json:"product_barcode"`
	ItemsPerBox    int    `json:"items_per_box"`
}

type BoxCreateRequest struct {
	BoxBarcode     string `json:"box_barcode"`
	ProductBarcode string `json:"product_barcode"`
	ItemsPerBox    int    `json:"items_per_box"`
}

type Category struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

type CategoryCreateRequest struct {
	Description string `json:"description"`
}

// BuyInRequest is the buy-in form as submitted. For box buy-ins Count is the
// number of boxes and BoxBuyPrice, when set, is the price of one box.
type BuyInRequest struct {
	Count       int      `json:"count"`
	BuyPrice    string   `json:"buy_price,omitempty"`
	BoxBuyPrice string   `json:"box_buy_price,omitempty"`
	SellPrice   string   `json:"sell_price,omitempty"`
	Margin      *float64 `json:"margin,omitempty"`
}

// BuyIn is what the repository receives: integer cents per unit.
type BuyIn struct {
	Barcode        string
	Count          int
	BuyPriceCents  int64
	SellPriceCents int64
}

type PriceChange struct {
	Barcode           string    `json:"barcode"`
	OldBuyPriceCents  int64     `json:"old_buy_price_cents"`
	NewBuyPriceCents  int64     `json:"new_buy_price_cents"`
	OldSellPriceCents int64     `json:"old_sell_price_cents"`
	NewSellPriceCents int64     `json:"new_sell_price_cents"`
	ChangedAt         time.Time `json:"changed_at"`
}

type BuyInResponse struct {
	ID          string      `json:"id"`
	Mode        string      `json:"mode"`
	Product     Product     `json:"product"`
	UnitsAdded  int         `json:"units_added"`
	UnitBuy     string      `json:"unit_buy_price"`
	UnitSell    string      `json:"unit_sell_price"`
	Margin      float64     `json:"margin"`
	TotalValue  string      `json:"total_value"`
	PriceChange PriceChange `json:"price_change"`
}

type QuoteRequest struct {
	BuyPrice    string   `json:"buy_price"`
	SellPrice   string   `json:"sell_price,omitempty"`
	Margin      *float64 `json:"margin,omitempty"`
	BoxBuyPrice string   `json:"box_buy_price,omitempty"`
	ItemsPerBox int      `json:"items_per_box,omitempty"`
	Quantity    int      `json:"quantity"`
}

type QuoteResponse struct {
	UnitBuyPrice    string  `json:"unit_buy_price"`
	SellPrice       string  `json:"sell_price"`
	Margin          float64 `json:"margin"`
	DefaultMargin   float64 `json:"default_margin"`
	IsDefaultMargin bool    `json:"is_default_margin"`
	TotalValue      string  `json:"total_value"`
}

type BarcodeValidation struct {
	Barcode string `json:"barcode"`
	Valid   bool   `json:"valid"`
	Reason  string `json:"reason,omitempty"`
}

type Deposit struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	AmountCents int64     `json:"amount_cents"`
	Time        time.Time `json:"time"`
}

type Purchase struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Barcode     string    `json:"barcode"`
	ProductName string    `json:"product_name"`
	PriceCents  int64     `json:"price_cents"`
	Returned    bool      `json:"returned"`
	Time        time.Time `json:"time"`
}

type FinancialReport struct {
	From              string `json:"from"`
	To                string `json:"to"`
	Deposits          int64  `json:"deposits"`
	DepositCents      int64  `json:"deposit_cents"`
	Purchases         int64  `json:"purchases"`
	PurchaseCents     int64  `json:"purchase_cents"`
	ReturnedPurchases int64  `json:"returned_purchases"`
	NetCents          int64  `json:"net_cents"`
}

type InventoryLine struct {
	Barcode         string `json:"barcode"`
	Name            string `json:"name"`
	CategoryID      int    `json:"category_id"`
	Stock           int    `json:"stock"`
	BuyPriceCents   int64  `json:"buy_price_cents"`
	SellPriceCents  int64  `json:"sell_price_cents"`
	BuyValueCents   int64  `json:"buy_value_cents"`
	SellValueCents  int64  `json:"sell_value_cents"`
	PotentialMargin int64  `json:"potential_margin_cents"`
}

type InventoryReport struct {
	GeneratedAt          string          `json:"generated_at"`
	Lines                []InventoryLine `json:"lines"`
	TotalStock           int             `json:"total_stock"`
	TotalBuyValueCents   int64           `json:"total_buy_value_cents"`
	TotalSellValueCents  int64           `json:"total_sell_value_cents"`
	TotalPotentialMargin int64           `json:"total_potential_margin_cents"`
}

const (
	BuyInModeProduct = "product"
	BuyInModeBox     = "box"
)

const (
	SortByName      = "name"
	SortByStock     = "stock"
	SortBySellPrice = "sell_price"
	SortByBarcode   = "barcode"
)

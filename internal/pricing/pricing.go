// Package pricing derives sell prices, margins and integer cents from the
// decimal strings staff type into buy-in and product forms.
//
// The helpers used while a form is being edited never fail; they fall back to
// the default margin or "0.00". Only the cents converters return errors, and
// callers use them as the hard check before anything is submitted.
package pricing

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultMarginTolerance is the absolute distance under which a margin is
// shown as the default margin.
const DefaultMarginTolerance = 0.001

// significantDigits bounds the precision kept from buy * (1 + margin) before
// the final rounding. Digits past it are float64 noise from the margin.
const significantDigits = 10

const fallbackPrice = "0.00"

var ErrInvalidAmount = errors.New("invalid amount")

var (
	one      = decimal.NewFromInt(1)
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(math.MaxInt64)
)

// DeriveMargin returns sell/buy - 1. When either price does not parse, or the
// buy price is exactly zero, defaultMargin is returned unchanged.
func DeriveMargin(buyPriceText, sellPriceText string, defaultMargin float64) float64 {
	buy, ok := parseDecimal(buyPriceText)
	if !ok || buy.IsZero() {
		return defaultMargin
	}
	sell, ok := parseDecimal(sellPriceText)
	if !ok {
		return defaultMargin
	}
	return sell.InexactFloat64()/buy.InexactFloat64() - 1
}

// DeriveSellPrice returns buy * (1 + margin) with exactly two decimals,
// rounding half away from zero. Unparseable input yields "0.00".
func DeriveSellPrice(buyPriceText string, margin float64) string {
	buy, ok := parseDecimal(buyPriceText)
	if !ok || math.IsNaN(margin) || math.IsInf(margin, 0) {
		return fallbackPrice
	}
	sell := buy.Mul(one.Add(decimal.NewFromFloat(margin)))
	return dropFloatNoise(sell).StringFixed(2)
}

// dropFloatNoise rounds d to significantDigits, but never to fewer than four
// decimals, so 558.93499999999 becomes 558.935 before it is rounded to cents.
func dropFloatNoise(d decimal.Decimal) decimal.Decimal {
	intDigits := int32(len(d.Abs().Truncate(0).String()))
	places := max(significantDigits-intDigits, 4)
	return d.Round(places)
}

// CentsFromDecimalString converts a decimal major-unit string to cents using
// ceil(value * 100), so a posted cost is never under-reported.
func CentsFromDecimalString(value string) (int64, error) {
	amount, ok := parseDecimal(value)
	if !ok {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, strings.TrimSpace(value))
	}
	if amount.IsNegative() {
		return 0, fmt.Errorf("%w: %s is negative", ErrInvalidAmount, amount.String())
	}
	cents := amount.Mul(hundred).Ceil()
	if cents.GreaterThan(maxCents) {
		return 0, fmt.Errorf("%w: %s is too large", ErrInvalidAmount, amount.String())
	}
	return cents.IntPart(), nil
}

// PositiveCentsFromDecimalString is CentsFromDecimalString for contexts where
// zero is not acceptable, such as the final prices of a buy-in.
func PositiveCentsFromDecimalString(value string) (int64, error) {
	cents, err := CentsFromDecimalString(value)
	if err != nil {
		return 0, err
	}
	if cents < 1 {
		return 0, fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}
	return cents, nil
}

// IsDefaultMargin reports whether active is within tolerance of defaultMargin.
func IsDefaultMargin(active, defaultMargin, tolerance float64) bool {
	return math.Abs(active-defaultMargin) < tolerance
}

// UnitBuyPriceFromBox splits a box price into a per-unit price rounded up to
// the cent: ceil(box / items * 100) / 100. The result is meant to be passed on
// to DeriveSellPrice, which rounds a second time.
func UnitBuyPriceFromBox(boxBuyPriceText string, itemsPerBox int) string {
	box, ok := parseDecimal(boxBuyPriceText)
	if !ok || itemsPerBox < 1 {
		return fallbackPrice
	}
	perUnit := box.Div(decimal.NewFromInt(int64(itemsPerBox)))
	return perUnit.Mul(hundred).Ceil().Div(hundred).StringFixed(2)
}

// TotalValue multiplies the two-decimal unit price by quantity. Rounding
// happens per unit, before the multiplication.
func TotalValue(unitPriceText string, quantity int) string {
	unit, ok := parseDecimal(unitPriceText)
	if !ok {
		return fallbackPrice
	}
	return unit.Round(2).Mul(decimal.NewFromInt(int64(quantity))).StringFixed(2)
}

// CeilPrice is the price a buy-in commits for priceText: rounded up to the
// cent and rendered with two decimals. Invalid or negative input yields "0.00".
func CeilPrice(priceText string) string {
	cents, err := CentsFromDecimalString(priceText)
	if err != nil {
		return fallbackPrice
	}
	return FormatCents(cents)
}

// FormatCents renders cents as a major-unit string, e.g. 1234 -> "12.34".
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// parseDecimal accepts "12.50", " 12.5 " and the comma form "12,50". A comma
// followed by exactly three digits ("1,234") reads as a thousands separator
// as easily as a decimal one and is refused.
func parseDecimal(text string) (decimal.Decimal, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return decimal.Zero, false
	}
	if !strings.Contains(trimmed, ".") && strings.Count(trimmed, ",") == 1 {
		_, fraction, _ := strings.Cut(trimmed, ",")
		if len(fraction) == 3 {
			return decimal.Zero, false
		}
		trimmed = strings.Replace(trimmed, ",", ".", 1)
	}
	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, false
	}
	return value, true
}

// Package format provides display-only formatting helpers; the Telegram
// /positions reply uses Price for entry prices.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Price formats p with 2-8 decimals. Prices that show a non-zero digit at 2
// decimals use 2; smaller prices get one decimal past their first non-zero
// digit, capped at 8 (4.0e-07 formats as "$0.00000040"). Low-priced tokens
// would otherwise round to "$0.00" at a fixed 2-decimal format.
func Price(p decimal.Decimal) string {
	for places := int32(2); places <= 8; places++ {
		rounded := p.Round(places)
		if !rounded.IsZero() || p.IsZero() {
			if places > 2 && places < 8 {
				places++
			}
			return "$" + p.StringFixed(places)
		}
	}
	return "$" + p.StringFixed(8)
}

// PriceFloat is a float64 convenience wrapper over Price for call sites that
// have not yet migrated to decimal.
func PriceFloat(p float64) string {
	return Price(decimal.NewFromFloat(p))
}

// TrimTrailingZeros removes trailing zeros from a formatted decimal string
// while keeping at least two decimal places, for compact log fields.
func TrimTrailingZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	if decimals := len(s) - strings.Index(s, ".") - 1; decimals < 2 {
		s += strings.Repeat("0", 2-decimals)
	}
	return s
}

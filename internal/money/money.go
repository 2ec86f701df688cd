// Package money formats decimal currency amounts for display. Formatting is
// presentation only; callers keep computing with decimal.Decimal.
package money

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// USD renders an amount with a dollar sign, thousands separators and cents,
// e.g. "$1,250.00".
func USD(d decimal.Decimal) string {
	rounded := d.Round(2)
	_, cents, _ := strings.Cut(rounded.Abs().StringFixed(2), ".")
	return sign(rounded) + "$" + wholeDollars(rounded) + "." + cents
}

// Short renders whole amounts without cents ("$1,200") and falls back to USD
// when there is a fractional part.
func Short(d decimal.Decimal) string {
	if !d.Equal(d.Truncate(0)) {
		return USD(d)
	}
	return sign(d) + "$" + wholeDollars(d)
}

// wholeDollars groups the integer part without the int64 limit.
func wholeDollars(d decimal.Decimal) string {
	return humanize.BigComma(d.Abs().BigInt())
}

func sign(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-"
	}
	return ""
}

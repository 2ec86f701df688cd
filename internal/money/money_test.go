package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestUSD(t *testing.T) {
	cases := map[string]string{
		"0":       "$0.00",
		"50":      "$50.00",
		"1200":    "$1,200.00",
		"1234.5":  "$1,234.50",
		"999.999": "$1,000.00",
		"0.07":    "$0.07",
		"-12.3":   "-$12.30",

		"12345678901234567890123.45": "$12,345,678,901,234,567,890,123.45",
		"-9300000000000000000":       "-$9,300,000,000,000,000,000.00",
	}
	for in, want := range cases {
		if got := USD(decimal.RequireFromString(in)); got != want {
			t.Fatalf("USD(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestShort(t *testing.T) {
	cases := map[string]string{
		"350":    "$350",
		"1200":   "$1,200",
		"65.5":   "$65.50",
		"100000": "$100,000",

		"691752902764108185000": "$691,752,902,764,108,185,000",
	}
	for in, want := range cases {
		if got := Short(decimal.RequireFromString(in)); got != want {
			t.Fatalf("Short(%s) = %q, want %q", in, got, want)
		}
	}
}

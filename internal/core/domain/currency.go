package domain

import (
	"strings"

	"github.com/govalues/decimal"
)

type Currency string

const (
	CurrencyBTC Currency = "BTC"
	CurrencyETH Currency = "ETH"
	CurrencyXMR Currency = "XMR"
)

var SupportedCurrencies = []Currency{CurrencyBTC, CurrencyETH, CurrencyXMR}

// Scale is the number of decimal places carried for amounts of this currency.
// Rounding to this scale happens only at the final step of a computation.
func (c Currency) Scale() int {
	switch c {
	case CurrencyETH:
		return 6
	default:
		return 8
	}
}

func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(s))
	for _, sc := range SupportedCurrencies {
		if c == sc {
			return c, nil
		}
	}
	return "", ErrUnsupportedCurrency
}

// DefaultTolerance is the absolute amount-matching tolerance per currency,
// scaled to the currency's minimum practical unit.
func DefaultTolerance(c Currency) decimal.Decimal {
	switch c {
	case CurrencyBTC:
		return decimal.MustParse("0.00001")
	case CurrencyETH:
		return decimal.MustParse("0.001")
	default:
		return decimal.MustParse("0.0001")
	}
}

// DefaultConfirmations approximates comparable finality windows across chains.
func DefaultConfirmations(c Currency) int64 {
	switch c {
	case CurrencyBTC:
		return 6
	case CurrencyETH:
		return 12
	default:
		return 10
	}
}

package api

import (
	"github.com/shopspring/decimal"
)

// amount renders a raw on-chain integer and, when the token decimals are
// known, the same value in whole token units.
type amount struct {
	Raw       string  `json:"raw"`
	Formatted *string `json:"formatted"`
}

func newAmount(value decimal.Decimal, decimals *uint8) amount {
	out := amount{Raw: value.String()}
	if decimals != nil {
		formatted := value.Shift(-int32(*decimals)).String()
		out.Formatted = &formatted
	}
	return out
}

func newNullAmount(value decimal.NullDecimal, decimals *uint8) *amount {
	if !value.Valid {
		return nil
	}
	a := newAmount(value.Decimal, decimals)
	return &a
}

package data

import (
	"github.com/shopspring/decimal"
)

// Fee is a fixed-point amount with two fractional digits, stored as NUMERIC(4,2).
type Fee struct {
	decimal.Decimal
}

// MaxFee is the exclusive upper bound that fits NUMERIC(4,2).
var MaxFee = decimal.NewFromInt(100)

// NewFee parses a decimal text amount such as "0.50".
func NewFee(s string) (Fee, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Fee{}, err
	}
	return Fee{d}, nil
}

// String renders the fee with exactly two fractional digits.
func (f Fee) String() string {
	return f.StringFixed(2)
}

// MarshalJSON renders the fee as decimal text, e.g. "0.50".
func (f Fee) MarshalJSON() ([]byte, error) {
	return []byte(`"` + f.StringFixed(2) + `"`), nil
}

// HasCents reports whether the fee has at most two fractional digits.
func (f Fee) HasCents() bool {
	return f.Equal(f.Round(2))
}

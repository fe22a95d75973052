// Package moneypkg provides fixed-point money amounts counted in minor units.
package moneypkg

import (
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidDecimal indicates that the input is not a decimal number.
	ErrInvalidDecimal = errors.New("invalid decimal amount")
	// ErrTooManyDecimals indicates that the input has more than two decimal places.
	ErrTooManyDecimals = errors.New("amount has more than two decimal places")
	// ErrAmountOutOfRange indicates that the amount does not fit into minor units.
	ErrAmountOutOfRange = errors.New("amount out of range")
)

// Money is an amount counted in minor units (cents).
//
// Arithmetic on Money is plain integer arithmetic, so sums of shares and
// balances are exact. Decimal text enters and leaves only at the edges.
type Money int64

// Parse converts decimal text such as "10.50" into Money.
//
// Inputs with more than two decimal places are rejected rather than rounded,
// including ones whose extra places are zeros. The exponent check catches
// those because parsing preserves the written precision.
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidDecimal
	}

	if d.Exponent() < -2 {
		return 0, ErrTooManyDecimals
	}

	bi := d.Shift(2).BigInt()
	if !bi.IsInt64() {
		return 0, ErrAmountOutOfRange
	}

	return Money(bi.Int64()), nil
}

// MustParse converts decimal text into Money and panics on malformed input.
// Intended for constants and test fixtures.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return m
}

// Decimal returns the amount as a shopspring decimal.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// String renders the amount with exactly two decimal places.
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Abs returns the absolute amount.
func (m Money) Abs() Money {
	if m < 0 {
		return -m
	}

	return m
}

// IsZero returns true for exactly zero amounts.
func (m Money) IsZero() bool {
	return m == 0
}

// MarshalJSON renders the amount as a decimal string, never a float.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts a decimal string with at most two decimal places.
func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ErrInvalidDecimal
	}

	parsed, err := Parse(s)
	if err != nil {
		return err
	}

	*m = parsed

	return nil
}

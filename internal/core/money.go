// Package core defines the finance record domain: records, categories,
// amounts, validation, and monthly summary building.
//
// This file holds money handling. Amounts are decimal values with two
// fractional digits; anything beyond the second digit rounds half-up at
// parse time. Internally the store keeps integer cents so SQL sums stay
// exact; conversion helpers live here.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to a positive two-decimal
// amount. The third decimal digit rounds half-up. Returns
// ErrInvalidAmount for non-numeric input or values <= 0.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("12.345") -> 12.35 (rounds up)
//	ParseAmount("0")      -> error
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	d = d.Round(2)
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// CentsFromAmount converts a two-decimal amount to integer cents.
func CentsFromAmount(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}

// AmountFromCents converts integer cents back to a decimal amount.
func AmountFromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// AmountField decodes a JSON amount that may arrive as a number or as a
// numeric string. Values go through ParseAmount, so a decoded amount is
// already rounded to two decimals and positive. A malformed or
// non-positive value does not abort decoding of the rest of the
// payload; it is remembered and reported by the validator as an
// invalid_amount field error alongside any other violations.
type AmountField struct {
	value  decimal.Decimal
	parsed bool
}

// NewAmountField builds a parsed AmountField, mainly for tests.
func NewAmountField(d decimal.Decimal) AmountField {
	return AmountField{value: d, parsed: true}
}

// Value returns the decoded decimal and whether decoding succeeded.
func (a AmountField) Value() (decimal.Decimal, bool) {
	return a.value, a.parsed
}

func (a *AmountField) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	d, err := ParseAmount(s)
	if err != nil {
		// Leave the field unparsed; validation reports it.
		return nil
	}
	a.value = d
	a.parsed = true
	return nil
}

func (a AmountField) MarshalJSON() ([]byte, error) {
	if !a.parsed {
		return []byte("null"), nil
	}
	return a.value.MarshalJSON()
}

// Package core provides money parsing and handling utilities.
//
// Amounts are held as integer minor units (cents) so that summing many
// records never drifts. Decimal strings are converted with shopspring/decimal.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxAmountCents is the largest single expense accepted (999999.99).
const MaxAmountCents int64 = 99_999_999

var hundred = decimal.NewFromInt(100)

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. The result is always positive cents.
// Returns an error for invalid formats, negative values, or zero amounts.
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12,34") -> 1234, nil
//	ParseDecimalToCents("12.344") -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	if strings.ContainsAny(s, "eE") {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents := d.Mul(hundred).Round(0)
	if !cents.IsPositive() {
		return 0, ErrInvalidAmount
	}
	if cents.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

// ParseAmount parses a user-entered amount into Money and checks its bounds.
func ParseAmount(s string) (Money, error) {
	cents, err := ParseDecimalToCents(s)
	if err != nil {
		return Money{}, err
	}
	m := Money{Cents: cents}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Decimal returns the exact major-unit value.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount with two decimals, e.g. "12.30".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON encodes the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// Package core provides money parsing and handling utilities.
//
// Amounts are stored as integer cents. Conversion to and from decimal
// strings goes through shopspring/decimal so no float rounding leaks in.
package core

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// maxCents bounds every amount so sums of many amounts stay within int64.
var maxCents = decimal.New(1, 15)

type Money struct {
	Cents int64
}

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
//	ParseDecimalToCents("12.345") -> 1235, nil (rounds up)
//	ParseDecimalToCents("12.344") -> 1234, nil (rounds down)
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if !cents.IsPositive() || cents.GreaterThan(maxCents) {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

// ParseMoney is ParseDecimalToCents wrapped in a Money.
func ParseMoney(s string) (Money, error) {
	c, err := ParseDecimalToCents(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Cents: c}, nil
}

// MoneyFromDecimal rounds d half away from zero to whole cents.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Shift(2).Round(0).IntPart()}
}

func Cents(c int64) Money { return Money{Cents: c} }

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }
func (m Money) IsZero() bool      { return m.Cents == 0 }

// Half splits m into two parts that always sum back to m. The first part
// takes the odd cent.
func (m Money) Half() (Money, Money) {
	low := m.Cents / 2
	return Money{Cents: m.Cents - low}, Money{Cents: low}
}

// MarshalJSON writes the amount as a plain JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if cents.GreaterThan(maxCents) || cents.LessThan(maxCents.Neg()) {
		return ErrInvalidAmount
	}
	*m = Money{Cents: cents.IntPart()}
	return nil
}

// Value stores the amount as INTEGER cents.
func (m Money) Value() (driver.Value, error) {
	return m.Cents, nil
}

func (m *Money) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		m.Cents = v
	case nil:
		m.Cents = 0
	default:
		return fmt.Errorf("cannot scan %T into Money", src)
	}
	return nil
}

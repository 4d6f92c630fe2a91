// Package core provides money parsing and handling utilities.
//
// This file contains the conversions between user or document supplied
// amounts and the float64 values the aggregation engine accumulates.
package core

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to a positive amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and keeps
// full precision; rounding happens only when a value is presented.
// Returns ErrInvalidAmount for empty, malformed, negative or zero input, and
// for values too large to hold in a float64.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,345") -> 12.345, nil
//	ParseAmount("-1")     -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return 0, ErrInvalidAmount
	}
	v := d.InexactFloat64()
	if !IsFinite(v) {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// IsFinite reports whether v is neither infinite nor NaN.
func IsFinite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Round2 rounds half away from zero to two decimal places. Non-finite
// values, e.g. a sum that overflowed, round to zero.
func Round2(v float64) float64 {
	if !IsFinite(v) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// FormatAmount renders an amount with exactly two decimals, e.g. "1250.50".
func FormatAmount(v float64) string {
	if !IsFinite(v) {
		v = 0
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// LenientAmount decodes a JSON number, numeric string or null. Anything it
// cannot read becomes zero instead of failing the whole document.
type LenientAmount float64

func (a *LenientAmount) UnmarshalJSON(data []byte) error {
	*a = 0
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		data = []byte(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return nil
	}
	if v := d.InexactFloat64(); IsFinite(v) {
		*a = LenientAmount(v)
	}
	return nil
}

func (a LenientAmount) MarshalJSON() ([]byte, error) {
	if !IsFinite(float64(a)) {
		return []byte("0"), nil
	}
	return []byte(decimal.NewFromFloat(float64(a)).String()), nil
}

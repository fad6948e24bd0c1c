// Package core provides amount parsing and handling utilities.
//
// Amounts are whole currency units (won) held as decimal.Decimal so totals
// never pass through floating point.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	errAmountRequired = &ValidationError{Field: "amount", Message: "금액은 필수입니다"}
	errAmountPositive = &ValidationError{Field: "amount", Message: "금액은 양수여야 합니다"}
	errAmountFormat   = &ValidationError{Field: "amount", Message: "올바른 금액 형식이 아닙니다"}
)

// ParseAmountText coerces a free-text amount cell into a decimal.
//
// Every rune that is not a digit or '.' is dropped before parsing, so thousands
// separators and currency suffixes are tolerated. A leading minus sign is
// rejected up front because stripping it would silently flip the sign.
//
// Examples:
//
//	ParseAmountText("1,000")   -> 1000, nil
//	ParseAmountText("50,000원") -> 50000, nil
//	ParseAmountText("-5")      -> error (not positive)
//	ParseAmountText("abc")     -> error (format)
func ParseAmountText(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, errAmountRequired
	}
	if strings.HasPrefix(s, "-") {
		return decimal.Zero, errAmountPositive
	}
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return decimal.Zero, errAmountFormat
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, errAmountFormat
	}
	if !d.IsPositive() {
		return decimal.Zero, errAmountPositive
	}
	return d, nil
}

// AmountFromFloat converts a numeric spreadsheet cell into a decimal.
func AmountFromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, errAmountFormat
	}
	if f <= 0 {
		return decimal.Zero, errAmountPositive
	}
	return decimal.NewFromFloat(f), nil
}

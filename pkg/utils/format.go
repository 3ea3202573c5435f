// Package utils provides common utility functions for fairvalue.
package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// RoundCents rounds an amount to two decimal places, half away from zero.
func RoundCents(amount float64) float64 {
	return decimal.NewFromFloat(amount).Round(2).InexactFloat64()
}

// FormatUSD formats an amount as US dollars with thousands separators,
// e.g. 1234567.891 → "$1,234,567.89", -12.5 → "-$12.50".
func FormatUSD(amount float64) string {
	d := decimal.NewFromFloat(amount)
	prefix := "$"
	if d.IsNegative() {
		prefix = "-$"
		d = d.Abs()
	}
	fixed := d.StringFixed(2)
	intPart, fracPart, _ := strings.Cut(fixed, ".")
	return prefix + groupThousands(intPart) + "." + fracPart
}

// FormatUSDCompact formats large amounts with a K/M/B/T suffix.
// e.g. 394328000000 → "$394.33B", 950 → "$950.00"
func FormatUSDCompact(amount float64) string {
	prefix := "$"
	if amount < 0 {
		prefix = "-$"
		amount = -amount
	}

	units := []struct {
		size   float64
		suffix string
	}{
		{1e12, "T"},
		{1e9, "B"},
		{1e6, "M"},
		{1e3, "K"},
	}
	for _, u := range units {
		if amount >= u.size {
			return prefix + decimal.NewFromFloat(amount/u.size).StringFixed(2) + u.suffix
		}
	}
	return prefix + decimal.NewFromFloat(amount).StringFixed(2)
}

// FormatPct formats a fraction as a signed percentage.
// e.g. 0.0245 → "+2.45%", -0.0123 → "-1.23%"
func FormatPct(fraction float64) string {
	pct := decimal.NewFromFloat(fraction).Mul(decimal.NewFromInt(100))
	if pct.IsNegative() {
		return pct.StringFixed(2) + "%"
	}
	return "+" + pct.StringFixed(2) + "%"
}

// Pluralize returns "1 year" or "4 years".
func Pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// groupThousands inserts commas every three digits of an unsigned integer string.
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney formats an amount with two decimals and comma separators.
// e.g., 1234.5 -> "1,234.50", -0.004 -> "0.00"
func FormatMoney(amount float64) string {
	s := decimal.NewFromFloat(amount).StringFixed(2)

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	whole, frac, _ := strings.Cut(s, ".")

	out := groupThousands(whole) + "." + frac
	if neg && strings.Trim(out, "0.,") != "" {
		out = "-" + out
	}
	return out
}

// FormatSigned formats a balance with an explicit sign; zero has none.
func FormatSigned(amount float64) string {
	s := FormatMoney(amount)
	if s != "0.00" && !strings.HasPrefix(s, "-") {
		return "+" + s
	}
	return s
}

// groupThousands adds comma separators to a run of digits.
// e.g., "1234567" -> "1,234,567"
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var result strings.Builder
	remainder := len(digits) % 3
	if remainder > 0 {
		result.WriteString(digits[:remainder])
	}
	for i := remainder; i < len(digits); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(digits[i : i+3])
	}
	return result.String()
}

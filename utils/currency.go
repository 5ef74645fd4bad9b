package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount formats amount the French way with two decimals.
// Example: 1234.5 -> "1 234,50"
func FormatAmount(amount float64) string {
	formatted := decimal.NewFromFloat(amount).StringFixed(2)

	negative := strings.HasPrefix(formatted, "-")
	formatted = strings.TrimPrefix(formatted, "-")

	parts := strings.SplitN(formatted, ".", 2)
	integerPart := parts[0]
	decimalPart := parts[1]

	var groups []string
	for i := len(integerPart); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{integerPart[start:i]}, groups...)
	}

	out := strings.Join(groups, " ") + "," + decimalPart
	if negative {
		out = "-" + out
	}
	return out
}

// FormatCurrency appends the currency label, e.g. "85,00 MAD".
func FormatCurrency(amount float64, label string) string {
	if label == "" {
		return FormatAmount(amount)
	}
	return FormatAmount(amount) + " " + label
}

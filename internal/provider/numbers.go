package provider

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseNumber converts upstream numeric text, which arrives as JSON numbers or
// strings such as "1.85", "N/A" or "". Placeholders report false.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "N/A") || s == "null" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}

// SafeFloat parses s, returning def for placeholders and garbage.
func SafeFloat(s string, def float64) float64 {
	if v, ok := parseNumber(s); ok {
		return v
	}
	return def
}

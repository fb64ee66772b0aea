package utils

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney formats an amount with two decimals and thousands separators,
// prefixed by the currency symbol when known: FormatMoney(1234.5, "USD") →
// "$1,234.50".
func FormatMoney(amount float64, currency string) string {
	if !finite(amount) {
		return "n/a"
	}
	d := decimal.NewFromFloat(amount).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	s := d.StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")
	return sign + currencySymbol(currency) + groupThousands(intPart) + "." + frac
}

// FormatCompact formats large amounts as K/M/B/T: 2.5e9 → "2.50B".
func FormatCompact(amount float64) string {
	if !finite(amount) {
		return "n/a"
	}
	abs := math.Abs(amount)
	units := []struct {
		div    float64
		suffix string
	}{
		{1e12, "T"},
		{1e9, "B"},
		{1e6, "M"},
		{1e3, "K"},
	}
	for _, u := range units {
		if abs >= u.div {
			return decimal.NewFromFloat(amount / u.div).StringFixed(2) + u.suffix
		}
	}
	return decimal.NewFromFloat(amount).StringFixed(2)
}

// FormatPct formats a decimal fraction as a signed percentage: 0.3 → "+30.00%".
func FormatPct(fraction float64) string {
	if !finite(fraction) {
		return "n/a"
	}
	pct := decimal.NewFromFloat(fraction).Mul(decimal.NewFromInt(100))
	if pct.IsPositive() {
		return "+" + pct.StringFixed(2) + "%"
	}
	return pct.StringFixed(2) + "%"
}

// FormatRatio formats an optional ratio, "n/a" when absent.
func FormatRatio(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func currencySymbol(code string) string {
	switch strings.ToUpper(code) {
	case "", "USD":
		return "$"
	case "EUR":
		return "€"
	case "GBP":
		return "£"
	case "INR":
		return "₹"
	case "JPY":
		return "¥"
	default:
		return strings.ToUpper(code) + " "
	}
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var sb strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		sb.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}

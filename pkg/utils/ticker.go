package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// Common company-name aliases users type instead of symbols.
var tickerAliases = map[string]string{
	"APPLE":      "AAPL",
	"MICROSOFT":  "MSFT",
	"COCA COLA":  "KO",
	"COCA-COLA":  "KO",
	"COKE":       "KO",
	"P&G":        "PG",
	"BERKSHIRE":  "BRK-B",
	"BRK.B":      "BRK-B",
	"BRK.A":      "BRK-A",
	"AMEX":       "AXP",
	"JNJ":        "JNJ",
	"JOHNSON":    "JNJ",
	"GOOGLE":     "GOOGL",
	"ALPHABET":   "GOOGL",
	"AMAZON":     "AMZN",
	"MOODYS":     "MCO",
	"BANK OF AM": "BAC",
}

var tickerPattern = regexp.MustCompile(`^\^?[A-Z0-9][A-Z0-9.\-=]{0,14}$`)

// NormalizeTicker upper-cases and trims a user-supplied ticker, strips a
// leading "$" and resolves known aliases.
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))
	ticker = strings.TrimPrefix(ticker, "$")

	if canonical, ok := tickerAliases[ticker]; ok {
		return canonical
	}
	return ticker
}

// ParseTicker normalizes ticker and rejects anything that cannot be a
// symbol.
func ParseTicker(ticker string) (string, error) {
	t := NormalizeTicker(ticker)
	if t == "" {
		return "", fmt.Errorf("ticker is required")
	}
	if !tickerPattern.MatchString(t) {
		return "", fmt.Errorf("invalid ticker %q", ticker)
	}
	return t, nil
}

package utils

import (
	"strings"
	"unicode"
)

// NormalizeTicker normalizes a user-input ticker symbol: whitespace is
// trimmed, a leading "$" is dropped and the result is upper-cased.
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))
	return strings.TrimPrefix(ticker, "$")
}

// NormalizeTickers normalizes a list of tickers, dropping blanks and
// duplicates while keeping first-seen order. Entries are split on commas
// and whitespace, so "AAPL,msft" and "AAPL msft" are equivalent.
func NormalizeTickers(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, raw := range tickers {
		for _, part := range strings.FieldsFunc(raw, isTickerSeparator) {
			t := NormalizeTicker(part)
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func isTickerSeparator(r rune) bool {
	return r == ',' || unicode.IsSpace(r)
}

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"AAPL", "AAPL"},
		{"aapl", "AAPL"},
		{" msft ", "MSFT"},
		{"$googl", "GOOGL"},
		{"brk.b", "BRK.B"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeTicker(tt.input))
		})
	}
}

func TestNormalizeTickers(t *testing.T) {
	got := NormalizeTickers([]string{"aapl,msft", " AAPL", "", "$nvda", "msft"})
	assert.Equal(t, []string{"AAPL", "MSFT", "NVDA"}, got)
}

func TestNormalizeTickersSplitsOnWhitespace(t *testing.T) {
	got := NormalizeTickers([]string{"AAPL msft", "goog,\tAAPL", "nvda\n"})
	assert.Equal(t, []string{"AAPL", "MSFT", "GOOG", "NVDA"}, got)
}

func TestNormalizeTickersEmpty(t *testing.T) {
	assert.Empty(t, NormalizeTickers(nil))
	assert.Empty(t, NormalizeTickers([]string{" ", ","}))
}

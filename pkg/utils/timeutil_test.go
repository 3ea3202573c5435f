package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiscalYear(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"2024-09-28", 2024},
		{"2019", 2019},
		{" 2021-12-31 ", 2021},
		{"2018 FY", 2018},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := FiscalYear(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFiscalYearRejectsMalformed(t *testing.T) {
	for _, input := range []string{"", "FY24", "202", "20245-01-01", "Mar 2025", "+024-01-01"} {
		_, err := FiscalYear(input)
		assert.Error(t, err, "input %q", input)
	}
}

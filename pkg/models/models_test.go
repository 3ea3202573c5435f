package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFinancialRecordFreeCashFlow(t *testing.T) {
	tests := []struct {
		name   string
		record FinancialRecord
		want   float64
	}{
		{"positive", FinancialRecord{OperatingCashFlow: 120, CapitalExpenditure: 20}, 100},
		{"capex exceeds ocf", FinancialRecord{OperatingCashFlow: 50, CapitalExpenditure: 80}, -30},
		{"no capex", FinancialRecord{OperatingCashFlow: 75}, 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.record.FreeCashFlow())
		})
	}
}

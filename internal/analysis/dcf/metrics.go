package dcf

import (
	"fmt"
	"slices"

	"github.com/seenimoa/fairvalue/pkg/models"
	"github.com/seenimoa/fairvalue/pkg/utils"
)

// YearlyMetric is one historical or projected fiscal year.
type YearlyMetric struct {
	Year         int     `json:"year"           yaml:"year"`
	Revenue      float64 `json:"revenue"        yaml:"revenue"`
	NetIncome    float64 `json:"net_income"     yaml:"net_income"`
	FreeCashFlow float64 `json:"free_cash_flow" yaml:"free_cash_flow"`
}

// CombineStatements pairs income and cash-flow statements by fiscal year
// (the leading YYYY of each period label) into records sorted ascending.
// Years present in only one list are dropped. Capital expenditure is
// reported negative by the provider and stored as a positive outflow.
func CombineStatements(income []models.IncomeStatement, cash []models.CashFlow) ([]models.FinancialRecord, error) {
	if len(income) == 0 {
		return nil, fmt.Errorf("%w: no income statements", ErrMalformedData)
	}
	if len(cash) == 0 {
		return nil, fmt.Errorf("%w: no cash flow statements", ErrMalformedData)
	}

	cashByYear := make(map[int]models.CashFlow, len(cash))
	for _, c := range cash {
		year, err := utils.FiscalYear(c.Period)
		if err != nil {
			return nil, fmt.Errorf("%w: cash flow statement: %v", ErrMalformedData, err)
		}
		if _, dup := cashByYear[year]; dup {
			return nil, fmt.Errorf("%w: duplicate cash flow statement for %d", ErrMalformedData, year)
		}
		cashByYear[year] = c
	}

	seen := make(map[int]bool, len(income))
	records := make([]models.FinancialRecord, 0, min(len(income), len(cash)))
	for _, is := range income {
		year, err := utils.FiscalYear(is.Period)
		if err != nil {
			return nil, fmt.Errorf("%w: income statement: %v", ErrMalformedData, err)
		}
		if seen[year] {
			return nil, fmt.Errorf("%w: duplicate income statement for %d", ErrMalformedData, year)
		}
		seen[year] = true

		cf, ok := cashByYear[year]
		if !ok {
			continue
		}
		records = append(records, models.FinancialRecord{
			Year:               year,
			Revenue:            is.Revenue,
			NetIncome:          is.NetIncome,
			OperatingCashFlow:  cf.OperatingCashFlow,
			CapitalExpenditure: -cf.CapEx,
		})
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no fiscal year appears in both statements", ErrInsufficientHistory)
	}

	slices.SortFunc(records, func(a, b models.FinancialRecord) int { return a.Year - b.Year })
	return records, nil
}

// MetricsFromRecords converts records into an ascending YearlyMetric
// sequence. At least two distinct years are required.
func MetricsFromRecords(records []models.FinancialRecord) ([]YearlyMetric, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no financial records", ErrMalformedData)
	}

	metrics := make([]YearlyMetric, 0, len(records))
	for _, r := range records {
		if !finite(r.Revenue, r.NetIncome, r.OperatingCashFlow, r.CapitalExpenditure) {
			return nil, fmt.Errorf("%w: non-finite value in %d", ErrMalformedData, r.Year)
		}
		metrics = append(metrics, YearlyMetric{
			Year:         r.Year,
			Revenue:      r.Revenue,
			NetIncome:    r.NetIncome,
			FreeCashFlow: r.FreeCashFlow(),
		})
	}

	slices.SortFunc(metrics, func(a, b YearlyMetric) int { return a.Year - b.Year })
	for i := 1; i < len(metrics); i++ {
		if metrics[i].Year == metrics[i-1].Year {
			return nil, fmt.Errorf("%w: duplicate year %d", ErrMalformedData, metrics[i].Year)
		}
	}

	if len(metrics) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 years, got %d", ErrInsufficientHistory, len(metrics))
	}
	return metrics, nil
}

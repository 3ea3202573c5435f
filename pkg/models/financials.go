package models

// IncomeStatement represents a single period income statement.
type IncomeStatement struct {
	Period          string  `json:"period"`      // statement date as reported, e.g. "2024-09-28"
	PeriodType      string  `json:"period_type"` // "annual" or "quarterly"
	Revenue         float64 `json:"revenue"`
	GrossProfit     float64 `json:"gross_profit"`
	OperatingIncome float64 `json:"operating_income"`
	NetIncome       float64 `json:"net_income"`
	EPS             float64 `json:"eps"`
	NetMarginPct    float64 `json:"net_margin_pct"`
}

// CashFlow represents a single period cash flow statement.
type CashFlow struct {
	Period            string  `json:"period"`
	PeriodType        string  `json:"period_type"`
	OperatingCashFlow float64 `json:"operating_cash_flow"`
	CapEx             float64 `json:"capex"` // signed as reported; outflows are negative
	FreeCashFlow      float64 `json:"free_cash_flow"`
	DividendsPaid     float64 `json:"dividends_paid"`
}

// FinancialRecord is one normalized fiscal year combining the income and
// cash flow statements. CapitalExpenditure is a positive outflow magnitude.
type FinancialRecord struct {
	Year               int     `json:"year"               yaml:"year"`
	Revenue            float64 `json:"revenue"            yaml:"revenue"`
	NetIncome          float64 `json:"net_income"         yaml:"net_income"`
	OperatingCashFlow  float64 `json:"operating_cash_flow" yaml:"operating_cash_flow"`
	CapitalExpenditure float64 `json:"capital_expenditure" yaml:"capital_expenditure"`
}

// FreeCashFlow returns operating cash flow minus capital expenditure.
func (r FinancialRecord) FreeCashFlow() float64 {
	return r.OperatingCashFlow - r.CapitalExpenditure
}

// FinancialData aggregates the annual statements fetched for a stock.
type FinancialData struct {
	Ticker         string            `json:"ticker"`
	AnnualIncome   []IncomeStatement `json:"annual_income"`
	AnnualCashFlow []CashFlow        `json:"annual_cash_flow"`
}

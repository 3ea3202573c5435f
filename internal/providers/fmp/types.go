package fmp

// --- FMP API response types ---

// fmpQuote represents a real-time quote from FMP.
type fmpQuote struct {
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	ChangesPercentage float64 `json:"changesPercentage"`
	Change            float64 `json:"change"`
	MarketCap         float64 `json:"marketCap"`
	Exchange          string  `json:"exchange"`
	EPS               float64 `json:"eps"`
	PE                float64 `json:"pe"`
	SharesOutstanding float64 `json:"sharesOutstanding"`
	Timestamp         int64   `json:"timestamp"`
}

// fmpIncomeStatement represents an annual or quarterly income statement.
type fmpIncomeStatement struct {
	Date            string  `json:"date"`
	Symbol          string  `json:"symbol"`
	CalendarYear    string  `json:"calendarYear"`
	Period          string  `json:"period"` // "FY" or "Q1", "Q2", etc.
	Revenue         float64 `json:"revenue"`
	GrossProfit     float64 `json:"grossProfit"`
	OperatingIncome float64 `json:"operatingIncome"`
	NetIncome       float64 `json:"netIncome"`
	EPS             float64 `json:"eps"`
	EPSDiluted      float64 `json:"epsdiluted"`
	NetIncomeRatio  float64 `json:"netIncomeRatio"`
}

// fmpCashFlow represents a cash flow statement. CapitalExpenditure is
// reported as a negative number.
type fmpCashFlow struct {
	Date               string  `json:"date"`
	Symbol             string  `json:"symbol"`
	CalendarYear       string  `json:"calendarYear"`
	Period             string  `json:"period"`
	OperatingCashFlow  float64 `json:"operatingCashFlow"`
	CapitalExpenditure float64 `json:"capitalExpenditure"`
	DividendsPaid      float64 `json:"dividendsPaid"`
	FreeCashFlow       float64 `json:"freeCashFlow"`
}

// fmpShareFloat represents share statistics.
type fmpShareFloat struct {
	Symbol            string  `json:"symbol"`
	FreeFloat         float64 `json:"freeFloat"`
	FloatShares       float64 `json:"floatShares"`
	OutstandingShares float64 `json:"outstandingShares"`
	Date              string  `json:"date"`
}

// fmpErrorBody is what FMP returns instead of data for bad keys and
// exhausted plans, sometimes with a 200 status.
type fmpErrorBody struct {
	ErrorMessage string `json:"Error Message"`
}

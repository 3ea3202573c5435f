package provider

// ModelType names a standard data model a fetcher can return. Each ModelType
// maps to a concrete structure in pkg/models.
type ModelType string

// Models consumed by the valuation pipeline.
const (
	// ModelEquityQuote yields *models.Quote.
	ModelEquityQuote ModelType = "EquityQuote"
	// ModelIncomeStatement yields []models.IncomeStatement, newest first.
	ModelIncomeStatement ModelType = "IncomeStatement"
	// ModelCashFlowStatement yields []models.CashFlow, newest first.
	ModelCashFlowStatement ModelType = "CashFlowStatement"
	// ModelShareStatistics yields *models.ShareStatisticsData.
	ModelShareStatistics ModelType = "ShareStatistics"
)

// AllModels returns every model type known to the registry.
func AllModels() []ModelType {
	return []ModelType{
		ModelEquityQuote,
		ModelIncomeStatement,
		ModelCashFlowStatement,
		ModelShareStatistics,
	}
}

// ModelCategory returns the display category for a model type.
func ModelCategory(m ModelType) string {
	switch m {
	case ModelEquityQuote:
		return "Equity / Price"
	case ModelIncomeStatement, ModelCashFlowStatement, ModelShareStatistics:
		return "Equity / Fundamentals"
	default:
		return "Other"
	}
}

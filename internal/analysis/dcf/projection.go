package dcf

// Project extends last by years contiguous fiscal years. Revenue compounds
// at rates.RevenueGrowth, net income is revenue times the margin and free
// cash flow is net income times the free-cash-flow rate.
func Project(last YearlyMetric, years int, rates Rates) []YearlyMetric {
	if years < 1 {
		return nil
	}

	out := make([]YearlyMetric, 0, years)
	revenue := last.Revenue
	for i := 1; i <= years; i++ {
		revenue *= 1 + rates.RevenueGrowth
		netIncome := revenue * rates.NetIncomeMargin
		out = append(out, YearlyMetric{
			Year:         last.Year + i,
			Revenue:      revenue,
			NetIncome:    netIncome,
			FreeCashFlow: netIncome * rates.FreeCashFlowRate,
		})
	}
	return out
}

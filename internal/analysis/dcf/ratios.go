package dcf

import "fmt"

// Rates are the forward-looking fractions selected from history.
type Rates struct {
	RevenueGrowth    float64 `json:"revenue_growth"     yaml:"revenue_growth"`
	NetIncomeMargin  float64 `json:"net_income_margin"  yaml:"net_income_margin"`
	FreeCashFlowRate float64 `json:"free_cash_flow_rate" yaml:"free_cash_flow_rate"`
}

// FreeCashFlowRates returns free_cash_flow / net_income for every year with
// non-zero net income.
func FreeCashFlowRates(m []YearlyMetric) []float64 {
	out := make([]float64, 0, len(m))
	for _, y := range m {
		if y.NetIncome == 0 {
			continue
		}
		out = append(out, y.FreeCashFlow/y.NetIncome)
	}
	return out
}

// RevenueGrowthRates returns the year-over-year revenue change for every
// consecutive pair whose earlier revenue is positive.
func RevenueGrowthRates(m []YearlyMetric) []float64 {
	out := make([]float64, 0, len(m))
	for i := 1; i < len(m); i++ {
		prev := m[i-1].Revenue
		if prev <= 0 {
			continue
		}
		out = append(out, (m[i].Revenue-prev)/prev)
	}
	return out
}

// NetIncomeMargins returns net_income / revenue for every year with
// positive revenue.
func NetIncomeMargins(m []YearlyMetric) []float64 {
	out := make([]float64, 0, len(m))
	for _, y := range m {
		if y.Revenue <= 0 {
			continue
		}
		out = append(out, y.NetIncome/y.Revenue)
	}
	return out
}

// FreeCashFlowRate selects the free-cash-flow-to-net-income rate.
func FreeCashFlowRate(m []YearlyMetric, p RiskPosture) (float64, error) {
	return selectRatio("free cash flow rate", FreeCashFlowRates(m), p)
}

// RevenueGrowthRate selects the revenue growth rate.
func RevenueGrowthRate(m []YearlyMetric, p RiskPosture) (float64, error) {
	return selectRatio("revenue growth rate", RevenueGrowthRates(m), p)
}

// NetIncomeMargin selects the net income margin.
func NetIncomeMargin(m []YearlyMetric, p RiskPosture) (float64, error) {
	return selectRatio("net income margin", NetIncomeMargins(m), p)
}

// DeriveRates runs all three derivations under one posture.
func DeriveRates(m []YearlyMetric, p RiskPosture) (Rates, error) {
	var (
		r   Rates
		err error
	)
	if r.RevenueGrowth, err = RevenueGrowthRate(m, p); err != nil {
		return Rates{}, err
	}
	if r.NetIncomeMargin, err = NetIncomeMargin(m, p); err != nil {
		return Rates{}, err
	}
	if r.FreeCashFlowRate, err = FreeCashFlowRate(m, p); err != nil {
		return Rates{}, err
	}
	return r, nil
}

func selectRatio(name string, ratios []float64, p RiskPosture) (float64, error) {
	v, err := p.Select(ratios)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if !finite(v) {
		return 0, fmt.Errorf("%s: %w", name, ErrNonFiniteResult)
	}
	return v, nil
}

// Package dcf computes a per-share fair value with a discounted cash flow
// model. The pipeline is linear and pure:
//
//	combine -> derive ratios -> project -> terminal value -> discount -> fair value -> margin
//
// Any stage failure aborts the run and is returned as a *ValuationError
// wrapping one of the package's error kinds. No result is ever NaN or Inf.
package dcf

import (
	"fmt"
	"strings"

	"github.com/seenimoa/fairvalue/pkg/models"
)

// Result is the two-number outcome of a valuation, in currency per share.
type Result struct {
	FairValue           float64 `json:"fair_value"             yaml:"fair_value"`
	FairValueWithMargin float64 `json:"fair_value_with_margin" yaml:"fair_value_with_margin"`
}

// Valuation is the full breakdown of one run.
type Valuation struct {
	Ticker               string         `json:"ticker"                 yaml:"ticker"`
	Config               Config         `json:"config"                 yaml:"config"`
	Historical           []YearlyMetric `json:"historical"             yaml:"historical"`
	Rates                Rates          `json:"rates"                  yaml:"rates"`
	Projected            []YearlyMetric `json:"projected"              yaml:"projected"`
	PresentValues        []float64      `json:"present_values"         yaml:"present_values"`
	TerminalValue        float64        `json:"terminal_value"         yaml:"terminal_value"`
	TerminalPresentValue float64        `json:"terminal_present_value" yaml:"terminal_present_value"`
	TodayValue           float64        `json:"today_value"            yaml:"today_value"`
	SharesOutstanding    float64        `json:"shares_outstanding"     yaml:"shares_outstanding"`
	Result               `yaml:",inline"`
}

// Evaluate values ticker from its historical records and current share
// count, returning only the fair values.
func Evaluate(ticker string, records []models.FinancialRecord, shares float64, cfg Config) (Result, error) {
	v, err := Run(ticker, records, shares, cfg)
	if err != nil {
		return Result{}, err
	}
	return v.Result, nil
}

// Run values ticker and returns every intermediate figure. The configuration
// and share count are checked before any arithmetic.
func Run(ticker string, records []models.FinancialRecord, shares float64, cfg Config) (*Valuation, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	if err := cfg.Validate(); err != nil {
		return nil, wrap(ticker, StageConfig, err)
	}
	if !finite(shares) || shares <= 0 {
		return nil, wrap(ticker, StageFairValue,
			fmt.Errorf("%w: got %g", ErrInvalidSharesOutstanding, shares))
	}
	r, g, margin := cfg.fractions()

	v := &Valuation{Ticker: ticker, Config: cfg, SharesOutstanding: shares}

	var err error
	if v.Historical, err = MetricsFromRecords(records); err != nil {
		return nil, wrap(ticker, StageCombine, err)
	}

	if v.Rates, err = DeriveRates(v.Historical, cfg.Risk); err != nil {
		return nil, wrap(ticker, StageRatios, err)
	}

	v.Projected = Project(v.Historical[len(v.Historical)-1], cfg.YearsToProject, v.Rates)
	for _, y := range v.Projected {
		if !finite(y.Revenue, y.NetIncome, y.FreeCashFlow) {
			return nil, wrap(ticker, StageProject,
				fmt.Errorf("year %d: %w", y.Year, ErrNonFiniteResult))
		}
	}

	last := v.Projected[len(v.Projected)-1]
	if v.TerminalValue, err = TerminalValue(last.FreeCashFlow, g, r); err != nil {
		return nil, wrap(ticker, StageTerminal, err)
	}

	d, err := discount(v.Projected, v.TerminalValue, r)
	if err != nil {
		return nil, wrap(ticker, StageDiscount, err)
	}
	v.PresentValues = d.PresentValues
	v.TerminalPresentValue = d.TerminalPresentValue
	v.TodayValue = d.TodayValue

	v.FairValue = v.TodayValue / shares
	v.FairValueWithMargin = v.FairValue * (1 - margin)
	if !finite(v.FairValue, v.FairValueWithMargin) {
		return nil, wrap(ticker, StageFairValue, ErrNonFiniteResult)
	}
	return v, nil
}

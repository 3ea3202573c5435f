package dcf

import (
	"fmt"
	"math"
)

// Config is the immutable per-run valuation input. Rates are percentages:
// 8.0 means 8%.
type Config struct {
	RequiredRateOfReturn float64     `json:"required_rate_of_return" yaml:"required_rate_of_return"`
	YearsToProject       int         `json:"years_to_project"        yaml:"years_to_project"`
	Risk                 RiskPosture `json:"risk"                    yaml:"risk"`
	PerpetualGrowthRate  float64     `json:"perpetual_growth_rate"   yaml:"perpetual_growth_rate"`
	MarginOfSafety       float64     `json:"margin_of_safety"        yaml:"margin_of_safety"`
}

// DefaultConfig returns the stock inputs: 8% required return, 4 projected
// years, conservative risk, 2.5% perpetual growth and a 50% margin of safety.
func DefaultConfig() Config {
	return Config{
		RequiredRateOfReturn: 8.0,
		YearsToProject:       4,
		Risk:                 Conservative,
		PerpetualGrowthRate:  2.5,
		MarginOfSafety:       50.0,
	}
}

// Validate reports ErrInvalidConfiguration for inputs the pipeline cannot
// evaluate.
func (c Config) Validate() error {
	switch {
	case !finite(c.RequiredRateOfReturn, c.PerpetualGrowthRate, c.MarginOfSafety):
		return fmt.Errorf("%w: rates must be finite", ErrInvalidConfiguration)
	case c.YearsToProject < 1:
		return fmt.Errorf("%w: years to project must be at least 1, got %d", ErrInvalidConfiguration, c.YearsToProject)
	case !c.Risk.valid():
		return fmt.Errorf("%w: risk posture %d", ErrInvalidConfiguration, int(c.Risk))
	case c.RequiredRateOfReturn == c.PerpetualGrowthRate:
		return fmt.Errorf("%w: required rate of return equals perpetual growth rate (%g%%)",
			ErrInvalidConfiguration, c.RequiredRateOfReturn)
	case c.RequiredRateOfReturn <= -100:
		return fmt.Errorf("%w: required rate of return must exceed -100%%, got %g%%",
			ErrInvalidConfiguration, c.RequiredRateOfReturn)
	case c.MarginOfSafety < 0 || c.MarginOfSafety > 100:
		return fmt.Errorf("%w: margin of safety must be within 0..100%%, got %g%%",
			ErrInvalidConfiguration, c.MarginOfSafety)
	}
	return nil
}

// fractions returns the required return, perpetual growth and margin of
// safety as fractions.
func (c Config) fractions() (r, g, margin float64) {
	return c.RequiredRateOfReturn / 100, c.PerpetualGrowthRate / 100, c.MarginOfSafety / 100
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

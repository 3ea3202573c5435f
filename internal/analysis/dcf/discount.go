package dcf

import (
	"fmt"
	"math"
)

// TerminalValue applies the Gordon growth model to the final projected free
// cash flow: fcf * (1 + g) / (r - g). g and r are fractions.
func TerminalValue(fcf, g, r float64) (float64, error) {
	if r == g {
		return 0, fmt.Errorf("%w: required return equals perpetual growth", ErrInvalidConfiguration)
	}
	tv := fcf * (1 + g) / (r - g)
	if !finite(tv) {
		return 0, fmt.Errorf("terminal value: %w", ErrNonFiniteResult)
	}
	return tv, nil
}

// PresentValue discounts x received at the end of year t (t >= 1) at rate r.
func PresentValue(x, r float64, t int) (float64, error) {
	if t < 1 {
		return 0, fmt.Errorf("%w: discount period must be at least 1, got %d", ErrInvalidConfiguration, t)
	}
	if r <= -1 {
		return 0, fmt.Errorf("%w: discount rate %g is not above -1", ErrInvalidConfiguration, r)
	}
	pv := x / math.Pow(1+r, float64(t))
	if !finite(pv) {
		return 0, fmt.Errorf("present value: %w", ErrNonFiniteResult)
	}
	return pv, nil
}

// discounted holds the present values of a projection.
type discounted struct {
	PresentValues        []float64
	TerminalPresentValue float64
	TodayValue           float64
}

// discount sums the present value of each projected free cash flow and of
// the terminal value, which shares the final year's exponent.
func discount(projected []YearlyMetric, terminal, r float64) (discounted, error) {
	var d discounted
	d.PresentValues = make([]float64, 0, len(projected))
	for i, y := range projected {
		pv, err := PresentValue(y.FreeCashFlow, r, i+1)
		if err != nil {
			return discounted{}, fmt.Errorf("year %d: %w", y.Year, err)
		}
		d.PresentValues = append(d.PresentValues, pv)
		d.TodayValue += pv
	}

	pv, err := PresentValue(terminal, r, len(projected))
	if err != nil {
		return discounted{}, fmt.Errorf("terminal value: %w", err)
	}
	d.TerminalPresentValue = pv
	d.TodayValue += pv

	if !finite(d.TodayValue) {
		return discounted{}, fmt.Errorf("today value: %w", ErrNonFiniteResult)
	}
	return d, nil
}

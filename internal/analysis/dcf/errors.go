package dcf

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure returned by this package wraps exactly one of
// them; use errors.Is to branch and KindOf to display.
var (
	ErrInsufficientHistory      = errors.New("insufficient history")
	ErrEmptyRatioSet            = errors.New("empty ratio set")
	ErrInvalidConfiguration     = errors.New("invalid configuration")
	ErrInvalidSharesOutstanding = errors.New("invalid shares outstanding")
	ErrMalformedData            = errors.New("malformed data")
	ErrNonFiniteResult          = errors.New("non-finite result")

	// ErrFetch marks failures of the data provider. The engine never returns
	// it; the data layer wraps provider errors with it.
	ErrFetch = errors.New("fetch error")
)

// Stage names a step of the valuation pipeline.
type Stage string

const (
	StageConfig    Stage = "config"
	StageFetch     Stage = "fetch"
	StageCombine   Stage = "combine"
	StageRatios    Stage = "derive-ratios"
	StageProject   Stage = "project"
	StageTerminal  Stage = "terminal-value"
	StageDiscount  Stage = "discount"
	StageFairValue Stage = "fair-value"
)

// ValuationError reports which ticker failed and at which stage.
type ValuationError struct {
	Ticker string
	Stage  Stage
	Err    error
}

func (e *ValuationError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Ticker, e.Stage, e.Err)
}

func (e *ValuationError) Unwrap() error {
	return e.Err
}

func wrap(ticker string, stage Stage, err error) error {
	return &ValuationError{Ticker: ticker, Stage: stage, Err: err}
}

var kinds = []struct {
	err  error
	name string
}{
	{ErrInsufficientHistory, "InsufficientHistory"},
	{ErrEmptyRatioSet, "EmptyRatioSet"},
	{ErrInvalidConfiguration, "InvalidConfiguration"},
	{ErrInvalidSharesOutstanding, "InvalidSharesOutstanding"},
	{ErrFetch, "FetchError"},
	{ErrMalformedData, "DataError"},
	// Overflowing arithmetic is reported as bad input data.
	{ErrNonFiniteResult, "DataError"},
}

// KindOf returns the display name of err's kind, "" for nil and "Unknown"
// for errors outside the taxonomy.
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Unknown"
}

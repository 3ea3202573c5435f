package main

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/fairvalue/internal/analysis/dcf"
	"github.com/seenimoa/fairvalue/internal/config"
	"github.com/seenimoa/fairvalue/internal/report"
)

func TestNewValueOptionsDefaults(t *testing.T) {
	o, err := newValueOptions(nil)
	require.NoError(t, err)
	assert.Equal(t, 4, o.MinimumYears)
	assert.Equal(t, 4, o.YearsToProject)
	assert.Equal(t, 8.0, o.ReturnPercentage)
	assert.Equal(t, 2.5, o.PerpetualGrowthRate)
	assert.Equal(t, 50.0, o.MarginOfSafety)
	assert.Equal(t, "conservative", o.Risk)
	assert.Equal(t, "text", o.Output)
	assert.False(t, o.Breakdown)
	assert.Empty(t, o.Tickers)
}

func TestNewValueOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{
		Valuation: config.ValuationConfig{
			MinimumYears:        5,
			YearsToProject:      6,
			ReturnPercentage:    9,
			PerpetualGrowthRate: 0,
			MarginOfSafety:      25,
			Risk:                "bullish",
		},
		Output: config.OutputConfig{Format: "json"},
	}
	o, err := newValueOptions(cfg)
	require.NoError(t, err)
	assert.Equal(t, 5, o.MinimumYears)
	assert.Equal(t, 6, o.YearsToProject)
	assert.Equal(t, 9.0, o.ReturnPercentage)
	assert.Equal(t, 0.0, o.PerpetualGrowthRate)
	assert.Equal(t, 25.0, o.MarginOfSafety)
	assert.Equal(t, "bullish", o.Risk)
	assert.Equal(t, "json", o.Output)
}

func TestOverrideFromFlags(t *testing.T) {
	var src valueOptions
	fs := pflag.NewFlagSet("value", pflag.ContinueOnError)
	fs.StringSliceVar(&src.Tickers, "ticks", nil, "")
	fs.IntVar(&src.MinimumYears, "minimum-years", 4, "")
	fs.IntVar(&src.YearsToProject, "years-to-project", 4, "")
	fs.Float64Var(&src.ReturnPercentage, "return-percentage", 8, "")
	fs.Float64Var(&src.PerpetualGrowthRate, "perpetual-growth-rate", 2.5, "")
	fs.Float64Var(&src.MarginOfSafety, "margin-of-safety", 50, "")
	fs.StringVar(&src.Risk, "risk", "conservative", "")
	fs.StringVar(&src.Output, "output", "text", "")
	fs.BoolVar(&src.Breakdown, "breakdown", false, "")
	require.NoError(t, fs.Parse([]string{"--ticks", "aapl,msft", "--perpetual-growth-rate", "0", "--risk", "Moderate"}))

	o, err := newValueOptions(&config.Config{Valuation: config.ValuationConfig{ReturnPercentage: 12, MarginOfSafety: 40}})
	require.NoError(t, err)
	o.Tickers = []string{"nvda"}
	o.overrideFromFlags(fs, &src)

	assert.Equal(t, []string{"nvda", "aapl", "msft"}, o.Tickers)
	assert.Equal(t, 0.0, o.PerpetualGrowthRate, "explicit zero flag wins")
	assert.Equal(t, "Moderate", o.Risk)
	assert.Equal(t, 12.0, o.ReturnPercentage, "unset flag keeps config value")
	assert.Equal(t, 40.0, o.MarginOfSafety)
	assert.Equal(t, 4, o.MinimumYears)
}

func validOptions(t *testing.T) *valueOptions {
	t.Helper()
	o, err := newValueOptions(nil)
	require.NoError(t, err)
	o.Tickers = []string{"aapl"}
	return o
}

func TestValidateNormalizes(t *testing.T) {
	o := validOptions(t)
	o.Tickers = []string{" aapl", "AAPL", "msft,goog"}
	o.Risk = " Bullish "
	o.Output = "YAML"
	require.NoError(t, o.validate())
	assert.Equal(t, []string{"AAPL", "MSFT", "GOOG"}, o.Tickers)
	assert.Equal(t, "bullish", o.Risk)
	assert.Equal(t, "yaml", o.Output)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *valueOptions)
		want   string
	}{
		{"no tickers", func(o *valueOptions) { o.Tickers = nil }, "--ticks needs at least 1 ticker symbol"},
		{"blank tickers", func(o *valueOptions) { o.Tickers = []string{" ", ","} }, "--ticks needs at least 1"},
		{"minimum years", func(o *valueOptions) { o.MinimumYears = 1 }, "--minimum-years must be greater than or equal to 2"},
		{"years to project", func(o *valueOptions) { o.YearsToProject = 0 }, "--years-to-project must be greater than or equal to 1"},
		{"negative return", func(o *valueOptions) { o.ReturnPercentage = -1 }, "--return-percentage must be greater than or equal to 0"},
		{"negative growth", func(o *valueOptions) { o.PerpetualGrowthRate = -0.5 }, "--perpetual-growth-rate must be greater than or equal to 0"},
		{"margin above 100", func(o *valueOptions) { o.MarginOfSafety = 101 }, "--margin-of-safety must be less than or equal to 100"},
		{"unknown risk", func(o *valueOptions) { o.Risk = "reckless" }, `--risk must be one of: conservative, moderate, bullish, got "reckless"`},
		{"unknown output", func(o *valueOptions) { o.Output = "xml" }, "--output must be one of"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := validOptions(t)
			tt.mutate(o)
			err := o.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	o := validOptions(t)
	o.YearsToProject = 0
	o.MarginOfSafety = -1
	err := o.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--years-to-project")
	assert.Contains(t, err.Error(), "--margin-of-safety")
}

func TestParams(t *testing.T) {
	o := validOptions(t)
	o.Risk = "moderate"
	o.Output = "yml"
	require.NoError(t, o.validate())

	p, err := o.params()
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL"}, p.Tickers)
	assert.Equal(t, 4, p.MinimumYears)
	assert.Equal(t, dcf.Config{
		RequiredRateOfReturn: 8,
		YearsToProject:       4,
		Risk:                 dcf.Moderate,
		PerpetualGrowthRate:  2.5,
		MarginOfSafety:       50,
	}, p.Valuation)
	require.NoError(t, p.Valuation.Validate())

	f, err := o.format()
	require.NoError(t, err)
	assert.Equal(t, report.FormatYAML, f)
}

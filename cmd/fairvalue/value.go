package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seenimoa/fairvalue/internal/analysis/dcf"
	"github.com/seenimoa/fairvalue/internal/datasource"
	"github.com/seenimoa/fairvalue/internal/providers"
	"github.com/seenimoa/fairvalue/internal/report"
	"github.com/seenimoa/fairvalue/internal/runner"
)

// --- Value Command ---

// valueFlags receives raw flag values; only flags the user set are applied.
var valueFlags valueOptions

var valueCmd = &cobra.Command{
	Use:   "value [TICKER...]",
	Short: "Estimate the fair value per share of one or more stocks",
	Example: `  fairvalue value AAPL
  fairvalue value --ticks AAPL,MSFT --risk moderate --margin-of-safety 30
  fairvalue value NVDA --output json --breakdown`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := newValueOptions(cfg)
		if err != nil {
			return err
		}
		opts.Tickers = append(opts.Tickers, args...)
		opts.overrideFromFlags(cmd.Flags(), &valueFlags)
		if err := opts.validate(); err != nil {
			return err
		}
		params, err := opts.params()
		if err != nil {
			return err
		}
		format, err := opts.format()
		if err != nil {
			return err
		}

		src, err := newSource()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		var hooks runner.Hooks
		if format == report.FormatText {
			report.WriteInputs(out, params)
			hooks = report.TextProgress(out)
		}

		batch, err := runner.New(src, log, hooks).Run(cmd.Context(), params)
		if err != nil {
			return err
		}
		if err := report.Write(out, batch, report.Options{Format: format, Breakdown: opts.Breakdown}); err != nil {
			return err
		}
		if batch.ExitCode() != 0 {
			return errAllFailed
		}
		return nil
	},
}

func init() {
	d, _ := newValueOptions(nil)
	f := valueCmd.Flags()
	f.StringSliceVar(&valueFlags.Tickers, "ticks", nil, "ticker symbols to value, comma separated or repeated")
	f.IntVar(&valueFlags.MinimumYears, "minimum-years", d.MinimumYears, "minimum years of aligned statements required")
	f.IntVar(&valueFlags.YearsToProject, "years-to-project", d.YearsToProject, "number of years to project future cash flows")
	f.Float64Var(&valueFlags.ReturnPercentage, "return-percentage", d.ReturnPercentage, "required rate of return, in percent")
	f.Float64Var(&valueFlags.PerpetualGrowthRate, "perpetual-growth-rate", d.PerpetualGrowthRate, "perpetual growth rate after the projection, in percent")
	f.Float64Var(&valueFlags.MarginOfSafety, "margin-of-safety", d.MarginOfSafety, "haircut applied to the fair value, in percent")
	f.StringVar(&valueFlags.Risk, "risk", d.Risk, "how historical ratios are selected: "+strings.Join(dcf.RiskPostures(), ", "))
	f.StringVarP(&valueFlags.Output, "output", "o", d.Output, "output format: text, json or yaml")
	f.BoolVar(&valueFlags.Breakdown, "breakdown", false, "include every intermediate figure in json and yaml output")
}

// newSource registers the FMP provider and returns a data source over it.
func newSource() (*datasource.Source, error) {
	if cfg.FMP.APIKey == "" {
		return nil, errors.New("FMP API key not set: export FMP_API_KEY or set fmp.api_key in the config file")
	}
	if err := providers.RegisterAll(cfg.FMP, log); err != nil {
		return nil, fmt.Errorf("registering providers: %w", err)
	}
	return datasource.New(nil, log), nil
}

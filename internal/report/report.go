// Package report renders valuation batches for the terminal (text) or for
// other programs (json, yaml).
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/seenimoa/fairvalue/internal/analysis/dcf"
	"github.com/seenimoa/fairvalue/internal/runner"
	"github.com/seenimoa/fairvalue/pkg/models"
	"github.com/seenimoa/fairvalue/pkg/utils"
)

// Format specifies the output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats returns the supported output formats.
func Formats() []string {
	return []string{string(FormatText), string(FormatJSON), string(FormatYAML)}
}

// ParseFormat parses a format name, case-insensitively. "yml" is accepted.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want one of %s)", s, strings.Join(Formats(), ", "))
	}
}

// ════════════════════════════════════════════════════════════════════
// Text output
// ════════════════════════════════════════════════════════════════════

// WriteInputs prints the INPUT ARGUMENTS banner.
func WriteInputs(w io.Writer, p runner.Params) {
	c := p.Valuation
	fmt.Fprintln(w, "--------- INPUT ARGUMENTS ---------")
	fmt.Fprintf(w, "Ticker symbols -> %s\n", strings.Join(p.Tickers, ", "))
	fmt.Fprintf(w, "Minimum amount of years of data -> %s\n", utils.Pluralize(p.MinimumYears, "year"))
	fmt.Fprintf(w, "Number of years to project future earnings -> %s\n", utils.Pluralize(c.YearsToProject, "year"))
	fmt.Fprintf(w, "Required rate of return -> %s %%\n", pct(c.RequiredRateOfReturn))
	fmt.Fprintf(w, "Perpetual growth rate -> %s %%\n", pct(c.PerpetualGrowthRate))
	fmt.Fprintf(w, "Margin of safety -> %s %%\n", pct(c.MarginOfSafety))
	fmt.Fprintf(w, "Risk -> %s\n\n", c.Risk)
}

// TextProgress returns runner hooks that stream per-ticker progress and
// results to w as the batch runs.
func TextProgress(w io.Writer) runner.Hooks {
	return runner.Hooks{
		TickerStarted: func(ticker string) {
			fmt.Fprintf(w, "Analyzing ticker symbol %s...\n", ticker)
		},
		StepStarted: func(_ string, s runner.Step) {
			switch s {
			case runner.StepStatements:
				fmt.Fprintln(w, "Fetching financial statements...")
			case runner.StepQuote:
				fmt.Fprintln(w, "Fetching quote data...")
			case runner.StepCalculate:
				fmt.Fprintln(w, "Calculating DCF...")
			}
		},
		TickerFinished: func(o runner.Outcome) {
			writeOutcome(w, o)
		},
	}
}

func writeOutcome(w io.Writer, o runner.Outcome) {
	if !o.OK() {
		fmt.Fprintf(w, "Error [%s] %s\n\n", o.Kind, o.Message)
		return
	}
	fmt.Fprintf(w, "Fair value -> %s\n", utils.FormatUSD(o.Valuation.FairValue))
	fmt.Fprintf(w, "Fair value w/ margin of safety -> %s\n", utils.FormatUSD(o.Valuation.FairValueWithMargin))
	if o.Upside != nil {
		fmt.Fprintf(w, "Current price -> %s (%s vs fair value)\n", utils.FormatUSD(o.Price), utils.FormatPct(*o.Upside))
	}
	fmt.Fprintln(w)
}

// WriteSummary prints the closing line of a text run, listing failures.
func WriteSummary(w io.Writer, b *runner.Batch) {
	fmt.Fprintf(w, "Valued %d of %s", b.Succeeded(), utils.Pluralize(len(b.Outcomes), "ticker"))
	if b.Failed() == 0 {
		fmt.Fprintf(w, " in %s\n", FormatDuration(b.FinishedAt.Sub(b.StartedAt)))
		return
	}
	fmt.Fprintln(w, "; failed:")
	for _, o := range b.Outcomes {
		if !o.OK() {
			fmt.Fprintf(w, "  %-8s %s\n", o.Ticker, o.Kind)
		}
	}
}

// WriteHistory prints the combined yearly metrics of one ticker.
func WriteHistory(w io.Writer, format Format, ticker string, records []models.FinancialRecord) error {
	rows := make([]historyRow, len(records))
	for i, r := range records {
		rows[i] = historyRow{
			Year:               r.Year,
			Revenue:            r.Revenue,
			NetIncome:          r.NetIncome,
			OperatingCashFlow:  r.OperatingCashFlow,
			CapitalExpenditure: r.CapitalExpenditure,
			FreeCashFlow:       r.FreeCashFlow(),
		}
	}

	switch format {
	case FormatJSON:
		return encodeJSON(w, historyDoc{Ticker: ticker, Years: rows})
	case FormatYAML:
		return encodeYAML(w, historyDoc{Ticker: ticker, Years: rows})
	}

	fmt.Fprintf(w, "%s: %s of annual data\n", ticker, utils.Pluralize(len(rows), "year"))
	fmt.Fprintf(w, "  %-6s %14s %14s %14s %14s\n", "Year", "Revenue", "Net income", "Capex", "FCF")
	for _, r := range rows {
		fmt.Fprintf(w, "  %-6d %14s %14s %14s %14s\n", r.Year,
			utils.FormatUSDCompact(r.Revenue),
			utils.FormatUSDCompact(r.NetIncome),
			utils.FormatUSDCompact(r.CapitalExpenditure),
			utils.FormatUSDCompact(r.FreeCashFlow))
	}
	return nil
}

// ════════════════════════════════════════════════════════════════════
// Machine-readable output
// ════════════════════════════════════════════════════════════════════

// Options controls Write.
type Options struct {
	Format    Format
	Breakdown bool // include every intermediate figure per ticker
}

// Write renders the whole batch in opts.Format. In text format only the
// summary is written; per-ticker lines come from TextProgress.
func Write(w io.Writer, b *runner.Batch, opts Options) error {
	switch opts.Format {
	case FormatJSON:
		return encodeJSON(w, newDocument(b, opts.Breakdown))
	case FormatYAML:
		return encodeYAML(w, newDocument(b, opts.Breakdown))
	case FormatText, "":
		WriteSummary(w, b)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", opts.Format)
	}
}

type document struct {
	RunID      string       `json:"run_id"      yaml:"run_id"`
	StartedAt  time.Time    `json:"started_at"  yaml:"started_at"`
	FinishedAt time.Time    `json:"finished_at" yaml:"finished_at"`
	Inputs     inputs       `json:"inputs"      yaml:"inputs"`
	Succeeded  int          `json:"succeeded"   yaml:"succeeded"`
	Failed     int          `json:"failed"      yaml:"failed"`
	Results    []resultView `json:"results"     yaml:"results"`
}

type inputs struct {
	Tickers      []string   `json:"tickers"       yaml:"tickers"`
	MinimumYears int        `json:"minimum_years" yaml:"minimum_years"`
	Valuation    dcf.Config `json:"valuation"     yaml:"valuation"`
}

type resultView struct {
	Ticker              string         `json:"ticker"                           yaml:"ticker"`
	Name                string         `json:"name,omitempty"                   yaml:"name,omitempty"`
	FairValue           *float64       `json:"fair_value,omitempty"             yaml:"fair_value,omitempty"`
	FairValueWithMargin *float64       `json:"fair_value_with_margin,omitempty" yaml:"fair_value_with_margin,omitempty"`
	Price               float64        `json:"price,omitempty"                  yaml:"price,omitempty"`
	Upside              *float64       `json:"upside,omitempty"                 yaml:"upside,omitempty"`
	ErrorKind           string         `json:"error_kind,omitempty"             yaml:"error_kind,omitempty"`
	Error               string         `json:"error,omitempty"                  yaml:"error,omitempty"`
	Breakdown           *dcf.Valuation `json:"breakdown,omitempty"              yaml:"breakdown,omitempty"`
}

type historyDoc struct {
	Ticker string       `json:"ticker" yaml:"ticker"`
	Years  []historyRow `json:"years"  yaml:"years"`
}

type historyRow struct {
	Year               int     `json:"year"                yaml:"year"`
	Revenue            float64 `json:"revenue"             yaml:"revenue"`
	NetIncome          float64 `json:"net_income"          yaml:"net_income"`
	OperatingCashFlow  float64 `json:"operating_cash_flow" yaml:"operating_cash_flow"`
	CapitalExpenditure float64 `json:"capital_expenditure" yaml:"capital_expenditure"`
	FreeCashFlow       float64 `json:"free_cash_flow"      yaml:"free_cash_flow"`
}

func newDocument(b *runner.Batch, breakdown bool) document {
	doc := document{
		RunID:      b.RunID,
		StartedAt:  b.StartedAt,
		FinishedAt: b.FinishedAt,
		Inputs: inputs{
			Tickers:      b.Params.Tickers,
			MinimumYears: b.Params.MinimumYears,
			Valuation:    b.Params.Valuation,
		},
		Succeeded: b.Succeeded(),
		Failed:    b.Failed(),
		Results:   make([]resultView, 0, len(b.Outcomes)),
	}
	if doc.Inputs.Tickers == nil {
		doc.Inputs.Tickers = []string{}
	}

	for _, o := range b.Outcomes {
		rv := resultView{
			Ticker:    o.Ticker,
			Name:      o.Name,
			Price:     o.Price,
			ErrorKind: o.Kind,
			Error:     o.Message,
		}
		if o.OK() {
			rv.FairValue = cents(o.Valuation.FairValue)
			rv.FairValueWithMargin = cents(o.Valuation.FairValueWithMargin)
			if breakdown {
				rv.Breakdown = o.Valuation
			}
		}
		if o.Upside != nil {
			u := round(*o.Upside, 4)
			rv.Upside = &u
		}
		doc.Results = append(doc.Results, rv)
	}
	return doc
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

func encodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

// ════════════════════════════════════════════════════════════════════
// Utility
// ════════════════════════════════════════════════════════════════════

func cents(v float64) *float64 {
	r := utils.RoundCents(v)
	return &r
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// pct prints a percentage input without trailing zeros beyond one place,
// e.g. 8 -> "8.0", 2.5 -> "2.5", 7.25 -> "7.25".
func pct(v float64) string {
	d := decimal.NewFromFloat(v)
	if d.Equal(d.Round(1)) {
		return d.StringFixed(1)
	}
	return d.String()
}

// FormatDuration formats a duration for display.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}

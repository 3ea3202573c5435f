// Package runner values a batch of tickers one after another. A failure is
// recorded against its ticker and never stops the rest of the batch.
package runner

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/seenimoa/fairvalue/internal/analysis/dcf"
	"github.com/seenimoa/fairvalue/internal/datasource"
	"github.com/seenimoa/fairvalue/pkg/logger"
	"github.com/seenimoa/fairvalue/pkg/models"
	"github.com/seenimoa/fairvalue/pkg/utils"
)

// DataSource supplies the inputs of one valuation.
type DataSource interface {
	FetchHistory(ctx context.Context, ticker string, minimumYears int) ([]models.FinancialRecord, error)
	FetchSharesOutstanding(ctx context.Context, ticker string) (*datasource.ShareCount, error)
}

// Params are the inputs shared by every ticker of a batch.
type Params struct {
	Tickers      []string   `json:"tickers"       yaml:"tickers"`
	MinimumYears int        `json:"minimum_years" yaml:"minimum_years"`
	Valuation    dcf.Config `json:"valuation"     yaml:"valuation"`
}

// Outcome is the result of one ticker: either a valuation or an error.
type Outcome struct {
	Ticker    string         `json:"ticker"              yaml:"ticker"`
	Name      string         `json:"name,omitempty"      yaml:"name,omitempty"`
	Valuation *dcf.Valuation `json:"valuation,omitempty" yaml:"valuation,omitempty"`
	Price     float64        `json:"price,omitempty"     yaml:"price,omitempty"`
	Upside    *float64       `json:"upside,omitempty"    yaml:"upside,omitempty"` // fraction; nil without a price
	Kind      string         `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	Message   string         `json:"error,omitempty"     yaml:"error,omitempty"`
	Err       error          `json:"-"                   yaml:"-"`
}

// OK reports whether the ticker was valued.
func (o Outcome) OK() bool {
	return o.Err == nil && o.Valuation != nil
}

// Batch collects the outcomes of one run.
type Batch struct {
	RunID      string    `json:"run_id"      yaml:"run_id"`
	StartedAt  time.Time `json:"started_at"  yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
	Params     Params    `json:"params"      yaml:"params"`
	Outcomes   []Outcome `json:"outcomes"    yaml:"outcomes"`
}

// Succeeded returns the number of valued tickers.
func (b *Batch) Succeeded() int {
	n := 0
	for _, o := range b.Outcomes {
		if o.OK() {
			n++
		}
	}
	return n
}

// Failed returns the number of tickers that could not be valued.
func (b *Batch) Failed() int {
	return len(b.Outcomes) - b.Succeeded()
}

// ExitCode is 1 when every ticker failed and 0 otherwise.
func (b *Batch) ExitCode() int {
	if len(b.Outcomes) > 0 && b.Succeeded() == 0 {
		return 1
	}
	return 0
}

// Step is a progress milestone within one ticker.
type Step string

const (
	StepStatements Step = "statements"
	StepQuote      Step = "quote"
	StepCalculate  Step = "calculate"
)

// Hooks are optional progress callbacks invoked synchronously.
type Hooks struct {
	TickerStarted  func(ticker string)
	StepStarted    func(ticker string, step Step)
	TickerFinished func(o Outcome)
}

func (h Hooks) step(ticker string, s Step) {
	if h.StepStarted != nil {
		h.StepStarted(ticker, s)
	}
}

// Runner values tickers sequentially against a DataSource.
type Runner struct {
	src   DataSource
	log   *logger.Logger
	hooks Hooks
	now   func() time.Time
}

// New creates a Runner.
func New(src DataSource, log *logger.Logger, hooks Hooks) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{src: src, log: log, hooks: hooks, now: time.Now}
}

// Run values every ticker in p. The returned error is non-nil only when ctx
// ends before the batch completes; the partial batch is still returned.
func (r *Runner) Run(ctx context.Context, p Params) (*Batch, error) {
	p.Tickers = utils.NormalizeTickers(p.Tickers)
	b := &Batch{
		RunID:     uuid.NewString(),
		StartedAt: r.now().UTC(),
		Params:    p,
		Outcomes:  make([]Outcome, 0, len(p.Tickers)),
	}
	log := r.log.WithField("run_id", b.RunID)
	log.WithFields(map[string]interface{}{
		"tickers":       len(p.Tickers),
		"minimum_years": p.MinimumYears,
		"risk":          p.Valuation.Risk.String(),
	}).Info("valuation run started")

	configErr := p.Valuation.Validate()

	for _, ticker := range p.Tickers {
		if err := ctx.Err(); err != nil {
			b.FinishedAt = r.now().UTC()
			return b, err
		}
		if r.hooks.TickerStarted != nil {
			r.hooks.TickerStarted(ticker)
		}

		var o Outcome
		if configErr != nil {
			o = failed(ticker, &dcf.ValuationError{Ticker: ticker, Stage: dcf.StageConfig, Err: configErr})
		} else {
			o = r.value(ctx, log.WithField("ticker", ticker), ticker, p)
		}
		b.Outcomes = append(b.Outcomes, o)

		if o.OK() {
			log.WithFields(map[string]interface{}{
				"ticker":                 ticker,
				"fair_value":             utils.RoundCents(o.Valuation.FairValue),
				"fair_value_with_margin": utils.RoundCents(o.Valuation.FairValueWithMargin),
			}).Info("ticker valued")
		} else {
			log.WithFields(map[string]interface{}{
				"ticker": ticker,
				"kind":   o.Kind,
			}).WithError(o.Err).Error("ticker failed")
		}
		if r.hooks.TickerFinished != nil {
			r.hooks.TickerFinished(o)
		}
	}

	b.FinishedAt = r.now().UTC()
	log.WithFields(map[string]interface{}{
		"succeeded": b.Succeeded(),
		"failed":    b.Failed(),
	}).Info("valuation run finished")
	return b, nil
}

func (r *Runner) value(ctx context.Context, log *logger.Logger, ticker string, p Params) Outcome {
	r.hooks.step(ticker, StepStatements)
	records, err := r.src.FetchHistory(ctx, ticker, p.MinimumYears)
	if err != nil {
		return failed(ticker, &dcf.ValuationError{Ticker: ticker, Stage: fetchStage(err), Err: err})
	}
	log.Debugf("fetched %s of history", utils.Pluralize(len(records), "year"))

	r.hooks.step(ticker, StepQuote)
	shares, err := r.src.FetchSharesOutstanding(ctx, ticker)
	if err != nil {
		return failed(ticker, &dcf.ValuationError{Ticker: ticker, Stage: dcf.StageFetch, Err: err})
	}
	log.WithFields(map[string]interface{}{
		"shares": shares.Shares,
		"source": shares.Source,
		"price":  shares.Price,
	}).Debug("fetched share count")

	r.hooks.step(ticker, StepCalculate)
	v, err := dcf.Run(ticker, records, shares.Shares, p.Valuation)
	if err != nil {
		return failed(ticker, err)
	}
	log.WithFields(map[string]interface{}{
		"revenue_growth":      v.Rates.RevenueGrowth,
		"net_income_margin":   v.Rates.NetIncomeMargin,
		"free_cash_flow_rate": v.Rates.FreeCashFlowRate,
		"terminal_value":      v.TerminalValue,
		"today_value":         v.TodayValue,
	}).Debug("valuation breakdown")

	o := Outcome{Ticker: ticker, Name: shares.Name, Valuation: v, Price: shares.Price}
	if shares.Price > 0 {
		upside := (v.FairValue - shares.Price) / shares.Price
		o.Upside = &upside
	}
	return o
}

// fetchStage attributes data-layer failures that are not provider errors to
// the combine stage.
func fetchStage(err error) dcf.Stage {
	if errors.Is(err, dcf.ErrFetch) {
		return dcf.StageFetch
	}
	return dcf.StageCombine
}

func failed(ticker string, err error) Outcome {
	return Outcome{
		Ticker:  ticker,
		Kind:    dcf.KindOf(err),
		Message: err.Error(),
		Err:     err,
	}
}

// Package datasource fetches what a valuation needs from the provider
// registry: annual statements combined into per-year records, and the
// current share count. Every provider failure is wrapped with dcf.ErrFetch.
package datasource

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/fairvalue/internal/analysis/dcf"
	"github.com/seenimoa/fairvalue/internal/provider"
	"github.com/seenimoa/fairvalue/pkg/logger"
	"github.com/seenimoa/fairvalue/pkg/models"
	"github.com/seenimoa/fairvalue/pkg/utils"
)

// DefaultHistoryLimit is how many annual statements are requested when the
// minimum history is smaller.
const DefaultHistoryLimit = 10

// Source routes statement and quote requests through a provider registry.
type Source struct {
	registry     *provider.Registry
	log          *logger.Logger
	historyLimit int
}

// New creates a Source. A nil registry selects the global registry.
func New(reg *provider.Registry, log *logger.Logger) *Source {
	if reg == nil {
		reg = provider.Global()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Source{registry: reg, log: log, historyLimit: DefaultHistoryLimit}
}

// Registry returns the provider registry used by this source.
func (s *Source) Registry() *provider.Registry {
	return s.registry
}

// FetchStatements fetches the annual income and cash flow statements for
// ticker concurrently.
func (s *Source) FetchStatements(ctx context.Context, ticker string, limit int) (*models.FinancialData, error) {
	symbol := utils.NormalizeTicker(ticker)
	params := provider.QueryParams{
		provider.ParamSymbol: symbol,
		provider.ParamPeriod: "annual",
		provider.ParamLimit:  strconv.Itoa(max(limit, 1)),
	}

	fd := &models.FinancialData{Ticker: symbol}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stmts, err := fetchAs[[]models.IncomeStatement](gctx, s.registry, provider.ModelIncomeStatement, params)
		if err != nil {
			return fmt.Errorf("income statement: %w", err)
		}
		fd.AnnualIncome = stmts
		return nil
	})

	g.Go(func() error {
		stmts, err := fetchAs[[]models.CashFlow](gctx, s.registry, provider.ModelCashFlowStatement, params)
		if err != nil {
			return fmt.Errorf("cash flow statement: %w", err)
		}
		fd.AnnualCashFlow = stmts
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %s %w", dcf.ErrFetch, symbol, err)
	}

	s.log.WithFields(map[string]interface{}{
		"ticker":    symbol,
		"income":    len(fd.AnnualIncome),
		"cash_flow": len(fd.AnnualCashFlow),
	}).Debug("statements fetched")
	return fd, nil
}

// FetchHistory returns at least minimumYears fiscal years of records for
// ticker, oldest first.
func (s *Source) FetchHistory(ctx context.Context, ticker string, minimumYears int) ([]models.FinancialRecord, error) {
	fd, err := s.FetchStatements(ctx, ticker, max(minimumYears, s.historyLimit))
	if err != nil {
		return nil, err
	}

	records, err := dcf.CombineStatements(fd.AnnualIncome, fd.AnnualCashFlow)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fd.Ticker, err)
	}
	if len(records) < minimumYears {
		return nil, fmt.Errorf("%w: %s has %s of aligned data, need %d",
			dcf.ErrInsufficientHistory, fd.Ticker, utils.Pluralize(len(records), "year"), minimumYears)
	}

	s.log.WithFields(map[string]interface{}{
		"ticker": fd.Ticker,
		"years":  len(records),
		"first":  records[0].Year,
		"last":   records[len(records)-1].Year,
	}).Debug("history combined")
	return records, nil
}

// ShareCount is the current share count with the quote it came with.
type ShareCount struct {
	Ticker string  `json:"ticker" yaml:"ticker"`
	Name   string  `json:"name,omitempty" yaml:"name,omitempty"`
	Shares float64 `json:"shares_outstanding" yaml:"shares_outstanding"`
	Price  float64 `json:"price,omitempty" yaml:"price,omitempty"` // 0 when no quote was available
	Source string  `json:"source" yaml:"source"`                   // "quote" or "share_float"
}

// FetchSharesOutstanding returns the share count from the quote, falling
// back to share float statistics when the quote has none.
func (s *Source) FetchSharesOutstanding(ctx context.Context, ticker string) (*ShareCount, error) {
	symbol := utils.NormalizeTicker(ticker)
	params := provider.QueryParams{provider.ParamSymbol: symbol}
	sc := &ShareCount{Ticker: symbol}

	quote, quoteErr := fetchAs[*models.Quote](ctx, s.registry, provider.ModelEquityQuote, params)
	if quoteErr == nil {
		sc.Name = quote.Name
		sc.Price = quote.LastPrice
		if quote.SharesOutstanding > 0 {
			sc.Shares = quote.SharesOutstanding
			sc.Source = "quote"
			return sc, nil
		}
	} else {
		s.log.WithField("ticker", symbol).WithError(quoteErr).Debug("quote unavailable, trying share float")
	}

	stats, floatErr := fetchAs[*models.ShareStatisticsData](ctx, s.registry, provider.ModelShareStatistics, params)
	switch {
	case floatErr == nil && stats.SharesOutstanding > 0:
		sc.Shares = float64(stats.SharesOutstanding)
		sc.Source = "share_float"
		return sc, nil
	case floatErr == nil:
		return nil, fmt.Errorf("%w: %s reports no shares outstanding", dcf.ErrInvalidSharesOutstanding, symbol)
	case quoteErr != nil:
		return nil, fmt.Errorf("%w: %s quote: %w; share float: %w", dcf.ErrFetch, symbol, quoteErr, floatErr)
	default:
		return nil, fmt.Errorf("%w: %s share float: %w", dcf.ErrFetch, symbol, floatErr)
	}
}

// fetchAs fetches model and asserts the payload type.
func fetchAs[T any](ctx context.Context, reg *provider.Registry, model provider.ModelType, params provider.QueryParams) (T, error) {
	var zero T
	res, err := reg.FetchWithFallback(ctx, model, params)
	if err != nil {
		return zero, err
	}
	v, ok := res.Data.(T)
	if !ok {
		return zero, fmt.Errorf("%s: unexpected payload %T", model, res.Data)
	}
	return v, nil
}

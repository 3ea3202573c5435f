package fmp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/seenimoa/fairvalue/internal/provider"
	"github.com/seenimoa/fairvalue/pkg/models"
)

// --- IncomeStatement fetcher ---

type incomeStatementFetcher struct {
	provider.BaseFetcher
	api *apiClient
}

func newIncomeStatementFetcher(api *apiClient, ttl time.Duration, rateLimit int) *incomeStatementFetcher {
	return &incomeStatementFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelIncomeStatement,
			"Income statement from Financial Modeling Prep",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamPeriod, provider.ParamLimit},
			ttl, rateLimit, time.Second,
		),
		api: api,
	}
}

func (f *incomeStatementFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]

	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	path, periodType := statementPath("income-statement", params)
	var results []fmpIncomeStatement
	if err := f.api.getJSON(ctx, path, params[paramAPIKey], &results); err != nil {
		return nil, fmt.Errorf("fmp income statement %s: %w", symbol, err)
	}

	stmts := make([]models.IncomeStatement, 0, len(results))
	for _, r := range results {
		stmts = append(stmts, models.IncomeStatement{
			Period:          r.Date,
			PeriodType:      periodType,
			Revenue:         r.Revenue,
			GrossProfit:     r.GrossProfit,
			OperatingIncome: r.OperatingIncome,
			NetIncome:       r.NetIncome,
			EPS:             r.EPSDiluted,
			NetMarginPct:    r.NetIncomeRatio * 100,
		})
	}

	f.CacheSet(cacheKey, stmts)
	return newResult(stmts), nil
}

// --- CashFlowStatement fetcher ---

type cashFlowStatementFetcher struct {
	provider.BaseFetcher
	api *apiClient
}

func newCashFlowStatementFetcher(api *apiClient, ttl time.Duration, rateLimit int) *cashFlowStatementFetcher {
	return &cashFlowStatementFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelCashFlowStatement,
			"Cash flow statement from Financial Modeling Prep",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamPeriod, provider.ParamLimit},
			ttl, rateLimit, time.Second,
		),
		api: api,
	}
}

func (f *cashFlowStatementFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]

	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	path, periodType := statementPath("cash-flow-statement", params)
	var results []fmpCashFlow
	if err := f.api.getJSON(ctx, path, params[paramAPIKey], &results); err != nil {
		return nil, fmt.Errorf("fmp cash flow %s: %w", symbol, err)
	}

	cfs := make([]models.CashFlow, 0, len(results))
	for _, r := range results {
		cfs = append(cfs, models.CashFlow{
			Period:            r.Date,
			PeriodType:        periodType,
			OperatingCashFlow: r.OperatingCashFlow,
			CapEx:             r.CapitalExpenditure,
			FreeCashFlow:      r.FreeCashFlow,
			DividendsPaid:     r.DividendsPaid,
		})
	}

	f.CacheSet(cacheKey, cfs)
	return newResult(cfs), nil
}

// --- ShareStatistics fetcher ---

type shareStatisticsFetcher struct {
	provider.BaseFetcher
	api *apiClient
}

func newShareStatisticsFetcher(api *apiClient, ttl time.Duration, rateLimit int) *shareStatisticsFetcher {
	return &shareStatisticsFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelShareStatistics,
			"Share float statistics from Financial Modeling Prep",
			[]string{provider.ParamSymbol},
			nil,
			ttl, rateLimit, time.Second,
		),
		api: api,
	}
}

func (f *shareStatisticsFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := strings.ToUpper(params[provider.ParamSymbol])

	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	path := "/shares_float?symbol=" + symbol
	var results []fmpShareFloat
	if err := f.api.getJSON(ctx, path, params[paramAPIKey], &results); err != nil {
		return nil, fmt.Errorf("fmp share float %s: %w", symbol, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("share float %s: %w", symbol, ErrNoData)
	}

	r := results[0]
	stats := &models.ShareStatisticsData{
		Symbol:            symbol,
		SharesOutstanding: int64(r.OutstandingShares),
		FloatShares:       int64(r.FloatShares),
		FreeFloatPct:      r.FreeFloat,
	}

	f.CacheSet(cacheKey, stats)
	return newResult(stats), nil
}

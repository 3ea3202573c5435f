package fmp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/seenimoa/fairvalue/internal/provider"
	"github.com/seenimoa/fairvalue/pkg/models"
)

// --- EquityQuote fetcher ---

type equityQuoteFetcher struct {
	provider.BaseFetcher
	api *apiClient
}

func newEquityQuoteFetcher(api *apiClient, ttl time.Duration, rateLimit int) *equityQuoteFetcher {
	return &equityQuoteFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelEquityQuote,
			"Real-time quote from Financial Modeling Prep",
			[]string{provider.ParamSymbol},
			nil,
			ttl, rateLimit, time.Second,
		),
		api: api,
	}
}

func (f *equityQuoteFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := strings.ToUpper(params[provider.ParamSymbol])

	cacheKey := provider.CacheKey(f.ModelType(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	var results []fmpQuote
	if err := f.api.getJSON(ctx, "/quote/"+symbol, params[paramAPIKey], &results); err != nil {
		return nil, fmt.Errorf("fmp quote %s: %w", symbol, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("quote %s: %w", symbol, ErrNoData)
	}

	q := results[0]
	quote := &models.Quote{
		Ticker:            q.Symbol,
		Name:              q.Name,
		LastPrice:         q.Price,
		Change:            q.Change,
		ChangePct:         q.ChangesPercentage,
		MarketCap:         q.MarketCap,
		PE:                q.PE,
		EPS:               q.EPS,
		SharesOutstanding: q.SharesOutstanding,
		Exchange:          q.Exchange,
	}
	if q.Timestamp > 0 {
		quote.Timestamp = time.Unix(q.Timestamp, 0).UTC()
	}

	f.CacheSet(cacheKey, quote)
	return newResult(quote), nil
}

// Package fmp implements the Financial Modeling Prep (FMP) data provider.
// FMP serves annual statements, quotes and share statistics over a REST API
// authenticated by an API key passed as the apikey query parameter.
//
// Free tier: 250 requests/day.
// Docs: https://financialmodelingprep.com/developer/docs
package fmp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/seenimoa/fairvalue/internal/infra"
	"github.com/seenimoa/fairvalue/internal/provider"
)

const (
	providerName = "fmp"
	credAPIKey   = "api_key"
	paramAPIKey  = "_fmp_api_key"

	// DefaultBaseURL is the FMP v3 REST root.
	DefaultBaseURL = "https://financialmodelingprep.com/api/v3"
)

// ErrNoData is returned when FMP answers with an empty list for a symbol.
var ErrNoData = errors.New("fmp: no data for symbol")

// APIError carries the "Error Message" FMP returns for rejected requests.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return "fmp api error: " + e.Message
}

// Options tunes the provider. Zero values select the defaults.
type Options struct {
	BaseURL   string
	CacheTTL  time.Duration // statements; quotes use a minute at most
	RateLimit int           // requests per second per fetcher
	Client    *infra.Client // nil uses infra.DoGet
}

func (o *Options) applyDefaults() {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.CacheTTL == 0 {
		o.CacheTTL = time.Hour
	}
	if o.RateLimit == 0 {
		o.RateLimit = 5
	}
}

// Provider implements provider.Provider for FMP.
type Provider struct {
	provider.BaseProvider
	api *apiClient
}

// New creates an FMP provider with default options.
func New() *Provider {
	return NewWithOptions(Options{})
}

// NewWithOptions creates an FMP provider and registers all fetchers.
func NewWithOptions(opts Options) *Provider {
	opts.applyDefaults()
	api := &apiClient{baseURL: opts.BaseURL, client: opts.Client}

	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Financial Modeling Prep - statements, quotes and share float",
			"https://financialmodelingprep.com",
			[]provider.ProviderCredential{
				{
					Name:        credAPIKey,
					Description: "FMP API key from financialmodelingprep.com",
					Required:    true,
					EnvVar:      "FMP_API_KEY",
				},
			},
		),
		api: api,
	}

	quoteTTL := min(opts.CacheTTL, time.Minute)

	// --- Equity / Price ---
	p.RegisterFetcher(newEquityQuoteFetcher(api, quoteTTL, opts.RateLimit))

	// --- Equity / Fundamentals ---
	p.RegisterFetcher(newIncomeStatementFetcher(api, opts.CacheTTL, opts.RateLimit))
	p.RegisterFetcher(newCashFlowStatementFetcher(api, opts.CacheTTL, opts.RateLimit))
	p.RegisterFetcher(newShareStatisticsFetcher(api, opts.CacheTTL, opts.RateLimit))

	return p
}

// Ping checks connectivity and the API key with a single quote request.
func (p *Provider) Ping(ctx context.Context) error {
	var quotes []fmpQuote
	if err := p.api.getJSON(ctx, "/quote/AAPL", p.Credential(credAPIKey), &quotes); err != nil {
		return fmt.Errorf("fmp ping: %w", err)
	}
	return nil
}

// BaseURL returns the REST root requests are sent to.
func (p *Provider) BaseURL() string {
	return p.api.baseURL
}

// Fetcher overrides BaseProvider.Fetcher to return a wrapper that
// auto-injects the FMP API key into query params before delegating.
func (p *Provider) Fetcher(model provider.ModelType) provider.Fetcher {
	inner := p.BaseProvider.Fetcher(model)
	if inner == nil {
		return nil
	}
	return &apiKeyInjector{inner: inner, apiKey: func() string { return p.Credential(credAPIKey) }}
}

// apiKeyInjector wraps a Fetcher and injects the FMP API key.
type apiKeyInjector struct {
	inner  provider.Fetcher
	apiKey func() string
}

func (w *apiKeyInjector) ModelType() provider.ModelType { return w.inner.ModelType() }
func (w *apiKeyInjector) Description() string           { return w.inner.Description() }
func (w *apiKeyInjector) RequiredParams() []string      { return w.inner.RequiredParams() }
func (w *apiKeyInjector) OptionalParams() []string      { return w.inner.OptionalParams() }

func (w *apiKeyInjector) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	enriched := make(provider.QueryParams, len(params)+1)
	for k, v := range params {
		enriched[k] = v
	}
	enriched[paramAPIKey] = w.apiKey()
	return w.inner.Fetch(ctx, enriched)
}

// --- Shared helpers ---

// apiClient builds FMP URLs and decodes responses.
type apiClient struct {
	baseURL string
	client  *infra.Client
}

// url builds a full FMP API URL with the API key appended.
func (a *apiClient) url(path, apiKey string) string {
	sep := "?"
	if strings.HasSuffix(path, "?") {
		sep = ""
	} else if containsQuery(path) {
		sep = "&"
	}
	return a.baseURL + path + sep + "apikey=" + apiKey
}

func containsQuery(s string) bool {
	return strings.ContainsRune(s, '?')
}

// getJSON performs a GET request to FMP and decodes the response into dest.
// Rejected keys surface as provider.ErrInvalidCredentials and in-band error
// bodies as *APIError.
func (a *apiClient) getJSON(ctx context.Context, path, apiKey string, dest any) error {
	get := infra.DoGet
	if a.client != nil {
		get = a.client.Get
	}

	body, _, err := get(ctx, a.url(path, apiKey), jsonHeaders())
	if err != nil {
		var httpErr *infra.ErrHTTP
		if errors.As(err, &httpErr) &&
			(httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden) {
			return &provider.ErrInvalidCredentials{Provider: providerName, Detail: httpErr.Body}
		}
		return err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		var apiErr fmpErrorBody
		if json.Unmarshal(trimmed, &apiErr) == nil && apiErr.ErrorMessage != "" {
			return &APIError{Message: apiErr.ErrorMessage}
		}
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse FMP JSON: %w", err)
	}
	return nil
}

func jsonHeaders() map[string]string {
	return map[string]string{"Accept": "application/json"}
}

// newResult creates a FetchResult.
func newResult(data any) *provider.FetchResult {
	return &provider.FetchResult{
		Data:      data,
		FetchedAt: time.Now(),
	}
}

// newCachedResult creates a cached FetchResult.
func newCachedResult(data any) *provider.FetchResult {
	return &provider.FetchResult{
		Data:      data,
		FetchedAt: time.Now(),
		Cached:    true,
	}
}

// statementPath builds the path for a statement endpoint honouring the
// period and limit params.
func statementPath(endpoint string, params provider.QueryParams) (string, string) {
	symbol := strings.ToUpper(params[provider.ParamSymbol])
	path := fmt.Sprintf("/%s/%s?", endpoint, symbol)

	periodType := "annual"
	if p := params[provider.ParamPeriod]; p == "quarter" || p == "quarterly" {
		path += "period=quarter&"
		periodType = "quarterly"
	}
	if limit := params[provider.ParamLimit]; limit != "" {
		path += "limit=" + limit
	} else {
		path += "limit=10"
	}
	return path, periodType
}

package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/fairvalue/internal/config"
	"github.com/seenimoa/fairvalue/internal/provider"
	"github.com/seenimoa/fairvalue/internal/providers/fmp"
)

func TestRegisterAllToWithoutKey(t *testing.T) {
	reg := provider.NewRegistry()
	require.NoError(t, RegisterAllTo(reg, config.FMPConfig{}, nil))

	_, err := reg.Get("fmp")
	assert.Error(t, err, "fmp must not be registered without a key")
	assert.Empty(t, reg.List())
}

func TestRegisterAllToWithKey(t *testing.T) {
	reg := provider.NewRegistry()
	cfg := config.FMPConfig{
		APIKey:      "test-key",
		BaseURL:     "http://127.0.0.1:1/api/v3",
		TimeoutSec:  1,
		RateLimit:   2,
		CacheTTLSec: 60,
	}
	require.NoError(t, RegisterAllTo(reg, cfg, nil))

	p, err := reg.Get("fmp")
	require.NoError(t, err)

	fp, ok := p.(*fmp.Provider)
	require.True(t, ok, "unexpected provider type %T", p)
	assert.Equal(t, "test-key", fp.Credential("api_key"))
	assert.Equal(t, cfg.BaseURL, fp.BaseURL())

	coverage := reg.ModelCoverage()
	for _, m := range provider.AllModels() {
		assert.Equal(t, []string{"fmp"}, coverage[m], string(m))
	}
}

func TestRegisterAllIdempotent(t *testing.T) {
	reg := provider.NewRegistry()
	cfg := config.FMPConfig{APIKey: "test-key"}
	require.NoError(t, RegisterAllTo(reg, cfg, nil))
	require.NoError(t, RegisterAllTo(reg, cfg, nil))

	assert.Len(t, reg.List(), 1)
	assert.Equal(t, []string{"fmp"}, reg.ProvidersFor(provider.ModelEquityQuote))
}

package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--config", writeConfig(t, "{}\n"))
	require.NoError(t, err)
	assert.Contains(t, out, "fairvalue dev")
	assert.Contains(t, out, "commit:  unknown")
}

func TestStatusCommand(t *testing.T) {
	t.Setenv("FAIRVALUE_FMP_API_KEY", "")
	t.Setenv("FMP_API_KEY", "")
	path := writeConfig(t, `
fmp:
  api_key: abcdef123456
valuation:
  risk: moderate
`)
	out, err := execute(t, "status", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.Contains(t, out, "Risk:              moderate")
	assert.Contains(t, out, "financialmodelingprep.com")
	assert.Contains(t, out, "set (config")
	assert.NotContains(t, out, "abcdef123456")
	assert.Contains(t, out, "fmp        Financial Modeling Prep")
	assert.Contains(t, out, "Equity / Fundamentals")
	assert.Regexp(t, `IncomeStatement\s+fmp`, out)
	assert.NotContains(t, out, "ping ok")
}

func TestStatusCommandWithoutKey(t *testing.T) {
	t.Setenv("FAIRVALUE_FMP_API_KEY", "")
	t.Setenv("FMP_API_KEY", "")
	out, err := execute(t, "status", "--config", writeConfig(t, "{}\n"))
	require.NoError(t, err)
	assert.Contains(t, out, "(none registered)")
	assert.Regexp(t, `EquityQuote\s+\(no provider\)`, out)
}

func TestStatusCommandPing(t *testing.T) {
	t.Setenv("FAIRVALUE_FMP_API_KEY", "")
	t.Setenv("FMP_API_KEY", "")
	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("apikey")
		_, _ = w.Write([]byte(`[{"symbol":"AAPL","price":190.5}]`))
	}))
	defer srv.Close()
	t.Cleanup(func() { _ = statusCmd.Flags().Set("ping", "false") })

	path := writeConfig(t, "fmp:\n  api_key: ping-key-123\n  base_url: "+srv.URL+"\n")
	out, err := execute(t, "status", "--ping", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ping ok")
	assert.Equal(t, "/quote/AAPL", gotPath)
	assert.Equal(t, "ping-key-123", gotKey)
}

func TestStatusCommandPingRejectedKey(t *testing.T) {
	t.Setenv("FAIRVALUE_FMP_API_KEY", "")
	t.Setenv("FMP_API_KEY", "")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"Error Message":"Invalid API KEY."}`))
	}))
	defer srv.Close()
	t.Cleanup(func() { _ = statusCmd.Flags().Set("ping", "false") })

	path := writeConfig(t, "fmp:\n  api_key: bad-key-123\n  base_url: "+srv.URL+"\n  max_retries: 0\n")
	out, err := execute(t, "status", "--ping", "--config", path)
	require.Error(t, err)
	assert.Contains(t, out, "ping failed")
}

func TestValueRiskFlagHelpListsPostures(t *testing.T) {
	usage := valueCmd.Flags().Lookup("risk").Usage
	assert.Contains(t, usage, "conservative, moderate, bullish")
}

func TestValueCommandRequiresAPIKey(t *testing.T) {
	t.Setenv("FAIRVALUE_FMP_API_KEY", "")
	t.Setenv("FMP_API_KEY", "")
	_, err := execute(t, "value", "AAPL", "--config", writeConfig(t, "{}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FMP API key not set")
}

func TestValueCommandRejectsBadFlags(t *testing.T) {
	_, err := execute(t, "value", "AAPL", "--risk", "reckless", "--config", writeConfig(t, "{}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--risk must be one of")
}

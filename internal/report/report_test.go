package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/seenimoa/fairvalue/internal/analysis/dcf"
	"github.com/seenimoa/fairvalue/internal/runner"
	"github.com/seenimoa/fairvalue/pkg/models"
)

func steadyRecords() []models.FinancialRecord {
	return []models.FinancialRecord{
		{Year: 2021, Revenue: 1000, NetIncome: 100, OperatingCashFlow: 120, CapitalExpenditure: 20},
		{Year: 2022, Revenue: 1100, NetIncome: 110, OperatingCashFlow: 130, CapitalExpenditure: 20},
		{Year: 2023, Revenue: 1210, NetIncome: 121, OperatingCashFlow: 141, CapitalExpenditure: 20},
	}
}

func sampleParams() runner.Params {
	return runner.Params{
		Tickers:      []string{"ABC", "XYZ"},
		MinimumYears: 4,
		Valuation: dcf.Config{
			RequiredRateOfReturn: 10,
			YearsToProject:       1,
			Risk:                 dcf.Moderate,
			PerpetualGrowthRate:  0,
			MarginOfSafety:       50,
		},
	}
}

func sampleBatch(t *testing.T) *runner.Batch {
	t.Helper()
	p := sampleParams()
	v, err := dcf.Run("ABC", steadyRecords(), 10, p.Valuation)
	require.NoError(t, err)

	upside := (v.FairValue - 100) / 100
	fetchErr := &dcf.ValuationError{Ticker: "XYZ", Stage: dcf.StageFetch, Err: fmt.Errorf("%w: timeout", dcf.ErrFetch)}
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	return &runner.Batch{
		RunID:      "run-1",
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
		Params:     p,
		Outcomes: []runner.Outcome{
			{Ticker: "ABC", Name: "ABC Corp", Valuation: v, Price: 100, Upside: &upside},
			{Ticker: "XYZ", Kind: dcf.KindOf(fetchErr), Message: fetchErr.Error(), Err: fetchErr},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"text", FormatText},
		{"JSON", FormatJSON},
		{" yaml ", FormatYAML},
		{"yml", FormatYAML},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseFormat("html")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "text, json, yaml")
}

func TestWriteInputs(t *testing.T) {
	p := sampleParams()
	p.Valuation.PerpetualGrowthRate = 2.5

	var buf bytes.Buffer
	WriteInputs(&buf, p)
	assert.Equal(t, `--------- INPUT ARGUMENTS ---------
Ticker symbols -> ABC, XYZ
Minimum amount of years of data -> 4 years
Number of years to project future earnings -> 1 year
Required rate of return -> 10.0 %
Perpetual growth rate -> 2.5 %
Margin of safety -> 50.0 %
Risk -> moderate

`, buf.String())
}

func TestPct(t *testing.T) {
	assert.Equal(t, "8.0", pct(8))
	assert.Equal(t, "2.5", pct(2.5))
	assert.Equal(t, "7.25", pct(7.25))
	assert.Equal(t, "0.0", pct(0))
}

func TestTextProgress(t *testing.T) {
	b := sampleBatch(t)
	var buf bytes.Buffer
	h := TextProgress(&buf)

	h.TickerStarted("ABC")
	h.StepStarted("ABC", runner.StepStatements)
	h.StepStarted("ABC", runner.StepQuote)
	h.StepStarted("ABC", runner.StepCalculate)
	h.TickerFinished(b.Outcomes[0])

	assert.Equal(t, `Analyzing ticker symbol ABC...
Fetching financial statements...
Fetching quote data...
Calculating DCF...
Fair value -> $133.10
Fair value w/ margin of safety -> $66.55
Current price -> $100.00 (+33.10% vs fair value)

`, buf.String())
}

func TestTextProgressFailure(t *testing.T) {
	b := sampleBatch(t)
	var buf bytes.Buffer
	TextProgress(&buf).TickerFinished(b.Outcomes[1])
	assert.Equal(t, "Error [FetchError] XYZ: fetch: fetch error: timeout\n\n", buf.String())
}

func TestWriteSummary(t *testing.T) {
	b := sampleBatch(t)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, b, Options{Format: FormatText}))
	assert.Equal(t, "Valued 1 of 2 tickers; failed:\n  XYZ      FetchError\n", buf.String())

	b.Outcomes = b.Outcomes[:1]
	buf.Reset()
	WriteSummary(&buf, b)
	assert.Equal(t, "Valued 1 of 1 ticker in 1.5s\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleBatch(t), Options{Format: FormatJSON}))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "run-1", doc["run_id"])
	assert.EqualValues(t, 1, doc["succeeded"])
	assert.EqualValues(t, 1, doc["failed"])

	in := doc["inputs"].(map[string]any)
	assert.Equal(t, "moderate", in["valuation"].(map[string]any)["risk"])

	results := doc["results"].([]any)
	require.Len(t, results, 2)
	abc := results[0].(map[string]any)
	assert.Equal(t, 133.1, abc["fair_value"])
	assert.Equal(t, 66.55, abc["fair_value_with_margin"])
	assert.Equal(t, 0.331, abc["upside"])
	assert.NotContains(t, abc, "breakdown")
	assert.NotContains(t, abc, "error_kind")

	xyz := results[1].(map[string]any)
	assert.Equal(t, "FetchError", xyz["error_kind"])
	assert.NotContains(t, xyz, "fair_value")
}

func TestWriteJSONBreakdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleBatch(t), Options{Format: FormatJSON, Breakdown: true}))

	var doc struct {
		Results []struct {
			Breakdown *dcf.Valuation `json:"breakdown"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.NotNil(t, doc.Results[0].Breakdown)
	assert.InDelta(t, 1331, doc.Results[0].Breakdown.TerminalValue, 1e-9)
	assert.Equal(t, dcf.Moderate, doc.Results[0].Breakdown.Config.Risk)
	assert.Nil(t, doc.Results[1].Breakdown)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleBatch(t), Options{Format: FormatYAML, Breakdown: true}))

	var doc struct {
		RunID   string `yaml:"run_id"`
		Results []struct {
			Ticker    string   `yaml:"ticker"`
			FairValue *float64 `yaml:"fair_value"`
			ErrorKind string   `yaml:"error_kind"`
			Breakdown *struct {
				TodayValue float64 `yaml:"today_value"`
				FairValue  float64 `yaml:"fair_value"`
			} `yaml:"breakdown"`
		} `yaml:"results"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "run-1", doc.RunID)
	require.Len(t, doc.Results, 2)
	require.NotNil(t, doc.Results[0].FairValue)
	assert.Equal(t, 133.1, *doc.Results[0].FairValue)
	require.NotNil(t, doc.Results[0].Breakdown)
	assert.InDelta(t, 1331, doc.Results[0].Breakdown.TodayValue, 1e-9)
	assert.InDelta(t, 133.1, doc.Results[0].Breakdown.FairValue, 1e-9)
	assert.Equal(t, "FetchError", doc.Results[1].ErrorKind)
	assert.Nil(t, doc.Results[1].FairValue)
}

func TestWriteUnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, sampleBatch(t), Options{Format: "xml"})
	require.Error(t, err)
}

func TestWriteEmptyBatchJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, &runner.Batch{RunID: "r"}, Options{Format: FormatJSON}))
	assert.Contains(t, buf.String(), `"tickers": []`)
	assert.Contains(t, buf.String(), `"results": []`)
}

func TestWriteHistory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHistory(&buf, FormatText, "ABC", steadyRecords()))
	out := buf.String()
	assert.Contains(t, out, "ABC: 3 years of annual data")
	assert.Contains(t, out, "2023")
	assert.Contains(t, out, "$1.21K")
	assert.Contains(t, out, "$121.00")

	buf.Reset()
	require.NoError(t, WriteHistory(&buf, FormatJSON, "ABC", steadyRecords()))
	var doc historyDoc
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Years, 3)
	assert.Equal(t, 110.0, doc.Years[1].FreeCashFlow)

	buf.Reset()
	require.NoError(t, WriteHistory(&buf, FormatYAML, "ABC", steadyRecords()))
	var ydoc historyDoc
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &ydoc))
	assert.Equal(t, "ABC", ydoc.Ticker)
	assert.Equal(t, 2021, ydoc.Years[0].Year)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1.5s", FormatDuration(1500*time.Millisecond))
	assert.Equal(t, "2.0m", FormatDuration(2*time.Minute))
	assert.Equal(t, "1.5h", FormatDuration(90*time.Minute))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteJSONPropagatesWriterError(t *testing.T) {
	err := Write(failingWriter{}, sampleBatch(t), Options{Format: FormatJSON})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

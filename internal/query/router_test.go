package query_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"stock-agent/internal/query"
)

func TestClassifyPriceVsChart(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		text string
		kind query.Kind
	}{
		{"plain price question", "What's the current price of Apple?", query.KindPrice},
		{"bare ticker", "AAPL", query.KindPrice},
		{"how much question", "How much is a Microsoft share worth?", query.KindPrice},
		{"chart keyword", "Show me a chart for Tesla", query.KindChart},
		{"history keyword", "history of Google", query.KindChart},
		{"historical keyword", "historical data for AMZN", query.KindChart},
		{"performance keyword", "How did Nvidia performance look", query.KindChart},
		{"range phrase implies chart", "Tesla over the last 6 months", query.KindChart},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := query.Classify(tc.text)
			require.NoError(t, err)
			require.Equal(t, tc.kind, req.Kind)
		})
	}
}

func TestClassifyChartWithRange(t *testing.T) {
	t.Parallel()

	req, err := query.Classify("Show me a chart for Tesla over the last 6 months")
	require.NoError(t, err)
	require.Equal(t, query.KindChart, req.Kind)
	require.Equal(t, "Tesla", req.Subject)
	require.Equal(t, "6mo", req.Range)
	require.Equal(t, "daily", req.Interval)
}

func TestClassifyPriceSubject(t *testing.T) {
	t.Parallel()

	req, err := query.Classify("What's the current price of Apple?")
	require.NoError(t, err)
	require.Equal(t, query.KindPrice, req.Kind)
	require.Equal(t, "Apple", req.Subject)
	require.Empty(t, req.Range)
	require.Empty(t, req.Interval)
}

func TestClassifyRangePhrases(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text     string
		rng      string
		interval string
	}{
		{"chart AAPL over the last 5 days", "5d", "daily"},
		{"chart AAPL over the last 1 year", "1y", "daily"},
		{"chart AAPL over the past 3 months", "3mo", "daily"},
		{"chart AAPL over the last 5 years", "5y", "daily"},
		{"chart AAPL over the past week", "5d", "daily"},
		{"chart AAPL over the past month", "1mo", "daily"},
		{"chart AAPL over the past year", "1y", "daily"},
		{"chart AAPL max", "max", "daily"},
		{"chart AAPL all time", "max", "daily"},
		{"chart AAPL 1y weekly", "1y", "weekly"},
		{"chart AAPL monthly", "6mo", "monthly"},
		{"chart AAPL range:3mo interval:weekly", "3mo", "weekly"},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			req, err := query.Classify(tc.text)
			require.NoError(t, err)
			require.Equal(t, query.KindChart, req.Kind)
			require.Equal(t, "AAPL", req.Subject)
			require.Equal(t, tc.rng, req.Range)
			require.Equal(t, tc.interval, req.Interval)
		})
	}
}

func TestClassifyUnmatchedRangeDefaultsSilently(t *testing.T) {
	t.Parallel()

	// "2 weeks" is range text but has no table entry; the default applies
	// and no error is raised.
	req, err := query.Classify("Show me a chart for Tesla over the last 2 weeks")
	require.NoError(t, err)
	require.Equal(t, query.KindChart, req.Kind)
	require.Equal(t, "Tesla", req.Subject)
	require.Equal(t, "6mo", req.Range)
	require.Equal(t, "daily", req.Interval)
}

func TestClassifyStandalonePluralUnitDefaults(t *testing.T) {
	t.Parallel()

	// a plural unit without a count is range text with no table entry
	req, err := query.Classify("chart for Tesla over the last weeks")
	require.NoError(t, err)
	require.Equal(t, query.KindChart, req.Kind)
	require.Equal(t, "Tesla", req.Subject)
	require.Equal(t, "6mo", req.Range)
}

func TestClassifyCasePreserved(t *testing.T) {
	t.Parallel()

	req, err := query.Classify("price of ServiceNow")
	require.NoError(t, err)
	require.Equal(t, "ServiceNow", req.Subject)
}

func TestClassifyMultiWordSubject(t *testing.T) {
	t.Parallel()

	req, err := query.Classify("chart for Berkshire Hathaway")
	require.NoError(t, err)
	require.Equal(t, "Berkshire Hathaway", req.Subject)
}

func TestClassifyNoSubject(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"", "   ", "show me the price", "chart over the last 6 months"} {
		_, err := query.Classify(text)
		require.ErrorIs(t, err, query.ErrNoSubject, "text=%q", text)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	chart := query.Normalize(query.Request{Kind: query.KindChart, Subject: "AAPL"})
	require.Equal(t, "6mo", chart.Range)
	require.Equal(t, "daily", chart.Interval)

	price := query.Normalize(query.Request{Kind: query.KindPrice, Subject: "AAPL", Range: "1y", Interval: "weekly"})
	require.Empty(t, price.Range)
	require.Empty(t, price.Interval)
}

package dispatcher_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"stock-agent/internal/dispatcher"
	"stock-agent/internal/query"
)

func TestParseClassificationChart(t *testing.T) {
	t.Parallel()

	req, err := dispatcher.ParseClassification(`{"request_type":"chart","subject":"TSLA","range":"6mo","interval":"daily"}`)
	require.NoError(t, err)
	require.Equal(t, query.KindChart, req.Kind)
	require.Equal(t, "TSLA", req.Subject)
	require.Equal(t, "6mo", req.Range)
	require.Equal(t, "daily", req.Interval)
}

func TestParseClassificationPriceClearsChartParams(t *testing.T) {
	t.Parallel()

	req, err := dispatcher.ParseClassification(`{"request_type":"price","subject":"AAPL","range":"1y","interval":"weekly"}`)
	require.NoError(t, err)
	require.Equal(t, query.KindPrice, req.Kind)
	require.Empty(t, req.Range)
	require.Empty(t, req.Interval)
}

func TestParseClassificationEmbeddedJSON(t *testing.T) {
	t.Parallel()

	// models wrap the object in prose or fences; the first JSON object wins
	text := "Sure, here is the classification:\n```json\n{\"request_type\":\"chart\",\"subject\":\"Tesla\",\"range\":\"3mo\",\"interval\":\"daily\"}\n```"
	req, err := dispatcher.ParseClassification(text)
	require.NoError(t, err)
	require.Equal(t, query.KindChart, req.Kind)
	require.Equal(t, "Tesla", req.Subject)
	require.Equal(t, "3mo", req.Range)
}

func TestParseClassificationUnknownRangeDefaults(t *testing.T) {
	t.Parallel()

	req, err := dispatcher.ParseClassification(`{"request_type":"chart","subject":"TSLA","range":"2wk","interval":"hourly"}`)
	require.NoError(t, err)
	require.Equal(t, "6mo", req.Range)
	require.Equal(t, "daily", req.Interval)
}

func TestParseClassificationMalformed(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		text string
	}{
		{"no json", "I could not parse that query."},
		{"broken json", `{"request_type":"chart","subject":`},
		{"bad request_type", `{"request_type":"quote","subject":"AAPL"}`},
		{"empty subject", `{"request_type":"price","subject":""}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := dispatcher.ParseClassification(tc.text)
			require.ErrorIs(t, err, query.ErrBadClassification)
		})
	}
}

func TestDisabledAgentFallsBackToKeywordRouter(t *testing.T) {
	t.Parallel()

	agent := dispatcher.New(dispatcher.Config{Enabled: false})
	require.False(t, agent.Enabled())

	req, err := agent.Classify(context.Background(), "What's the current price of Apple?")
	require.NoError(t, err)
	require.Equal(t, query.KindPrice, req.Kind)
	require.Equal(t, "Apple", req.Subject)
}

func TestDisabledAgentPing(t *testing.T) {
	t.Parallel()

	agent := dispatcher.New(dispatcher.Config{Enabled: false})
	resp, err := agent.Ping(context.Background())
	require.NoError(t, err)
	require.Equal(t, true, resp["ok"])
	require.Equal(t, "keyword", resp["mode"])
}

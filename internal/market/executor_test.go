package market_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"stock-agent/internal/market"
	"stock-agent/internal/query"
)

// stubProvider is a hand double for the upstream API with call counters.
type stubProvider struct {
	searchCalls int
	quoteCalls  int
	chartCalls  int

	symbols   []string
	searchErr error
	price     market.PriceResult
	priceErr  error
	chart     market.ChartResult
	chartErr  error
}

func (s *stubProvider) SearchSymbol(_ context.Context, name string) ([]string, error) {
	s.searchCalls++
	return s.symbols, s.searchErr
}

func (s *stubProvider) GetQuote(_ context.Context, symbol string) (market.PriceResult, error) {
	s.quoteCalls++
	return s.price, s.priceErr
}

func (s *stubProvider) GetChart(_ context.Context, symbol, rng, interval string) (market.ChartResult, error) {
	s.chartCalls++
	return s.chart, s.chartErr
}

func TestResolveSymbolTickerPassthrough(t *testing.T) {
	t.Parallel()

	stub := &stubProvider{}
	exec := market.NewExecutor(stub)

	symbol, err := exec.ResolveSymbol(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Equal(t, "AAPL", symbol)
	require.Zero(t, stub.searchCalls, "ticker heuristic must not hit the network")
}

func TestResolveSymbolKnownName(t *testing.T) {
	t.Parallel()

	stub := &stubProvider{}
	exec := market.NewExecutor(stub)

	symbol, err := exec.ResolveSymbol(context.Background(), "Apple")
	require.NoError(t, err)
	require.Equal(t, "AAPL", symbol)
	require.Zero(t, stub.searchCalls)
}

func TestResolveSymbolViaSearch(t *testing.T) {
	t.Parallel()

	stub := &stubProvider{symbols: []string{"SHOP"}}
	exec := market.NewExecutor(stub)

	symbol, err := exec.ResolveSymbol(context.Background(), "Shopify")
	require.NoError(t, err)
	require.Equal(t, "SHOP", symbol)
	require.Equal(t, 1, stub.searchCalls)
}

func TestResolveSymbolNotFound(t *testing.T) {
	t.Parallel()

	stub := &stubProvider{symbols: nil}
	exec := market.NewExecutor(stub)

	_, err := exec.ResolveSymbol(context.Background(), "NotARealCompanyXYZ")
	require.ErrorIs(t, err, market.ErrSymbolNotFound)
	require.Equal(t, 1, stub.searchCalls, "exactly one search, no retry")
}

func TestResolveSymbolHeuristicBounds(t *testing.T) {
	t.Parallel()

	// lowercase, mixed case, digits or length >5 all go through search
	cases := []string{"aapl", "Aapl", "3M", "TOOLONG"}
	for _, name := range cases {
		stub := &stubProvider{symbols: []string{"X"}}
		exec := market.NewExecutor(stub)
		_, err := exec.ResolveSymbol(context.Background(), name)
		require.NoError(t, err)
		require.Equal(t, 1, stub.searchCalls, "name=%q", name)
	}
}

func TestExecutePriceRequest(t *testing.T) {
	t.Parallel()

	price := 190.5
	stub := &stubProvider{price: market.PriceResult{Symbol: "AAPL", Price: &price}}
	exec := market.NewExecutor(stub)

	answer, err := exec.Execute(context.Background(), query.Request{
		Kind:    query.KindPrice,
		Subject: "AAPL",
	})
	require.NoError(t, err)
	require.Equal(t, query.KindPrice, answer.Kind)
	require.NotNil(t, answer.Price)
	require.Nil(t, answer.Chart)
	require.Equal(t, "AAPL", answer.Price.Symbol)
	require.Zero(t, stub.searchCalls)
	require.Equal(t, 1, stub.quoteCalls)
}

func TestExecuteChartRequestTwoCalls(t *testing.T) {
	t.Parallel()

	stub := &stubProvider{
		symbols: []string{"TSLA"},
		chart:   market.ChartResult{Symbol: "TSLA", Points: []market.ChartPoint{}},
	}
	exec := market.NewExecutor(stub)

	answer, err := exec.Execute(context.Background(), query.Request{
		Kind:     query.KindChart,
		Subject:  "Tuscan Holdings",
		Range:    "6mo",
		Interval: "daily",
	})
	require.NoError(t, err)
	require.Equal(t, query.KindChart, answer.Kind)
	require.NotNil(t, answer.Chart)
	require.Nil(t, answer.Price)
	require.Equal(t, 1, stub.searchCalls)
	require.Equal(t, 1, stub.chartCalls)
	require.Zero(t, stub.quoteCalls)
}

func TestExecutePropagatesUpstreamError(t *testing.T) {
	t.Parallel()

	stub := &stubProvider{priceErr: market.ErrUpstream}
	exec := market.NewExecutor(stub)

	_, err := exec.Execute(context.Background(), query.Request{
		Kind:    query.KindPrice,
		Subject: "AAPL",
	})
	require.ErrorIs(t, err, market.ErrUpstream)
	require.Equal(t, 1, stub.quoteCalls, "no retry on failure")
}

func TestExecuteResolutionFailureStops(t *testing.T) {
	t.Parallel()

	stub := &stubProvider{symbols: nil}
	exec := market.NewExecutor(stub)

	_, err := exec.Execute(context.Background(), query.Request{
		Kind:    query.KindChart,
		Subject: "NotARealCompanyXYZ",
	})
	require.ErrorIs(t, err, market.ErrSymbolNotFound)
	require.Zero(t, stub.chartCalls, "fetch must not run after failed resolution")
}

package market

import (
	"context"
	"fmt"
	"strings"

	"stock-agent/internal/query"
)

// knownTickers short-circuits resolution for a handful of household
// names; anything else goes through the upstream symbol search.
var knownTickers = map[string]string{
	"apple":     "AAPL",
	"microsoft": "MSFT",
	"google":    "GOOGL",
	"alphabet":  "GOOGL",
	"amazon":    "AMZN",
	"tesla":     "TSLA",
	"facebook":  "META",
	"meta":      "META",
	"netflix":   "NFLX",
	"nvidia":    "NVDA",
}

// Executor resolves symbols and fetches results from the upstream
// provider. It is stateless; concurrent invocations are independent.
type Executor struct {
	provider Provider
}

func NewExecutor(provider Provider) *Executor {
	return &Executor{provider: provider}
}

// looksLikeTicker reports whether the token is already a ticker: all
// uppercase alphabetic, at most five characters.
func looksLikeTicker(s string) bool {
	if len(s) == 0 || len(s) > 5 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// ResolveSymbol turns a company name into a ticker. Tickers pass through
// without a network call; known company names use the built-in table;
// everything else costs one upstream search. An empty candidate list is
// ErrSymbolNotFound.
func (e *Executor) ResolveSymbol(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrSymbolNotFound)
	}
	if looksLikeTicker(name) {
		return name, nil
	}
	if sym, ok := knownTickers[strings.ToLower(name)]; ok {
		return sym, nil
	}

	candidates, err := e.provider.SearchSymbol(ctx, name)
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates for %q", ErrSymbolNotFound, name)
	}
	return candidates[0], nil
}

// FetchPrice issues one quote lookup for an already-resolved symbol.
func (e *Executor) FetchPrice(ctx context.Context, symbol string) (PriceResult, error) {
	return e.provider.GetQuote(ctx, symbol)
}

// FetchChart issues one historical-series lookup. The result is sorted
// ascending by timestamp; an empty series is success.
func (e *Executor) FetchChart(ctx context.Context, symbol, rng, interval string) (ChartResult, error) {
	return e.provider.GetChart(ctx, symbol, rng, interval)
}

// Execute runs one classified request end to end: resolve, then fetch.
// At most two sequential outbound calls, no retries.
func (e *Executor) Execute(ctx context.Context, req query.Request) (Answer, error) {
	symbol, err := e.ResolveSymbol(ctx, req.Subject)
	if err != nil {
		return Answer{}, err
	}

	switch req.Kind {
	case query.KindChart:
		chart, err := e.FetchChart(ctx, symbol, req.Range, req.Interval)
		if err != nil {
			return Answer{}, err
		}
		return Answer{Kind: query.KindChart, Chart: &chart}, nil
	default:
		price, err := e.FetchPrice(ctx, symbol)
		if err != nil {
			return Answer{}, err
		}
		return Answer{Kind: query.KindPrice, Price: &price}, nil
	}
}

package market

import (
	"context"
	"errors"

	"stock-agent/internal/query"
)

var (
	// ErrSymbolNotFound means no ticker resolves for the given name, or
	// the upstream has no quote for a resolved symbol.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrUpstream covers network failures, non-success status codes and
	// malformed upstream payloads.
	ErrUpstream = errors.New("upstream error")
)

// PriceResult is the normalized quote record. Fields absent upstream stay
// nil; a zero value is never substituted for missing data.
type PriceResult struct {
	Symbol           string   `json:"symbol"`
	Name             string   `json:"name,omitempty"`
	Price            *float64 `json:"price"`
	MarketCap        *float64 `json:"market_cap"`
	FiftyTwoWeekLow  *float64 `json:"fifty_two_week_low"`
	FiftyTwoWeekHigh *float64 `json:"fifty_two_week_high"`
	PERatio          *float64 `json:"pe_ratio"`
	DividendYield    *float64 `json:"dividend_yield"`
}

// ChartPoint is one (timestamp, closing price) sample. TS is Unix seconds.
type ChartPoint struct {
	TS    int64   `json:"ts"`
	Close float64 `json:"close"`
}

// ChartResult is a chronologically ascending series. An empty Points
// slice is a valid result, not an error.
type ChartResult struct {
	Symbol   string       `json:"symbol"`
	Range    string       `json:"range"`
	Interval string       `json:"interval"`
	Points   []ChartPoint `json:"points"`
}

// Answer is what the executor hands to the presentation layer: Kind
// echoes the request kind and exactly one of Price or Chart is set to
// match it.
type Answer struct {
	Kind  query.Kind   `json:"kind"`
	Price *PriceResult `json:"price,omitempty"`
	Chart *ChartResult `json:"chart,omitempty"`
}

// Provider is the upstream financial data API: symbol search, quote
// lookup and historical series lookup. Each call maps to exactly one
// outbound request.
type Provider interface {
	SearchSymbol(ctx context.Context, name string) ([]string, error)
	GetQuote(ctx context.Context, symbol string) (PriceResult, error)
	GetChart(ctx context.Context, symbol, rng, interval string) (ChartResult, error)
}

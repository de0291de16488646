package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"
)

const defaultYahooBaseURL = "https://apidojo-yahoo-finance-v1.p.rapidapi.com"

// YahooClient talks to the RapidAPI-hosted Yahoo Finance API. One
// outbound request per call, no retries; timeout policy belongs to the
// injected http.Client.
type YahooClient struct {
	baseURL string
	apiKey  string
	region  string
	client  *http.Client
}

type YahooOption func(*YahooClient)

func WithBaseURL(base string) YahooOption {
	return func(c *YahooClient) { c.baseURL = base }
}

func WithHTTPClient(client *http.Client) YahooOption {
	return func(c *YahooClient) { c.client = client }
}

func NewYahooClient(apiKey string, timeout time.Duration, opts ...YahooOption) *YahooClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &YahooClient{
		baseURL: defaultYahooBaseURL,
		apiKey:  apiKey,
		region:  "US",
		client:  &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResp struct {
	Quotes []struct {
		Symbol string `json:"symbol"`
	} `json:"quotes"`
}

type quoteResp struct {
	QuoteResponse struct {
		Result []struct {
			Symbol           string   `json:"symbol"`
			LongName         string   `json:"longName"`
			Price            *float64 `json:"regularMarketPrice"`
			MarketCap        *float64 `json:"marketCap"`
			FiftyTwoWeekLow  *float64 `json:"fiftyTwoWeekLow"`
			FiftyTwoWeekHigh *float64 `json:"fiftyTwoWeekHigh"`
			TrailingPE       *float64 `json:"trailingPE"`
			DividendYield    *float64 `json:"dividendYield"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

type chartResp struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (c *YahooClient) SearchSymbol(ctx context.Context, name string) ([]string, error) {
	var payload searchResp
	if err := c.get(ctx, "/auto-complete", url.Values{"q": {name}}, &payload); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(payload.Quotes))
	for _, q := range payload.Quotes {
		if q.Symbol != "" {
			out = append(out, q.Symbol)
		}
	}
	return out, nil
}

func (c *YahooClient) GetQuote(ctx context.Context, symbol string) (PriceResult, error) {
	var payload quoteResp
	if err := c.get(ctx, "/market/v2/get-quotes", url.Values{"symbols": {symbol}}, &payload); err != nil {
		return PriceResult{}, err
	}
	results := payload.QuoteResponse.Result
	if len(results) == 0 {
		return PriceResult{}, fmt.Errorf("%w: no quote for %s", ErrSymbolNotFound, symbol)
	}
	q := results[0]
	res := PriceResult{
		Symbol:           symbol,
		Name:             q.LongName,
		Price:            q.Price,
		MarketCap:        q.MarketCap,
		FiftyTwoWeekLow:  q.FiftyTwoWeekLow,
		FiftyTwoWeekHigh: q.FiftyTwoWeekHigh,
		PERatio:          q.TrailingPE,
		DividendYield:    q.DividendYield,
	}
	if q.Symbol != "" {
		res.Symbol = q.Symbol
	}
	return res, nil
}

// intervalParam maps the router's interval names to the upstream codes.
var intervalParam = map[string]string{
	"daily":   "1d",
	"weekly":  "1wk",
	"monthly": "1mo",
}

func (c *YahooClient) GetChart(ctx context.Context, symbol, rng, interval string) (ChartResult, error) {
	iv, ok := intervalParam[interval]
	if !ok {
		iv = "1d"
	}
	params := url.Values{
		"symbol":   {symbol},
		"interval": {iv},
		"range":    {rng},
	}
	var payload chartResp
	if err := c.get(ctx, "/stock/v3/get-chart", params, &payload); err != nil {
		return ChartResult{}, err
	}
	if payload.Chart.Error != nil {
		return ChartResult{}, fmt.Errorf("%w: %s", ErrUpstream, payload.Chart.Error.Description)
	}

	out := ChartResult{Symbol: symbol, Range: rng, Interval: interval, Points: []ChartPoint{}}
	if len(payload.Chart.Result) == 0 {
		return out, nil
	}
	result := payload.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return out, nil
	}
	closes := result.Indicators.Quote[0].Close

	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue // null bars (holidays etc.)
		}
		out.Points = append(out.Points, ChartPoint{TS: ts, Close: *closes[i]})
	}

	// upstream ordering is not guaranteed
	sort.Slice(out.Points, func(i, j int) bool { return out.Points[i].TS < out.Points[j].TS })
	return out, nil
}

func (c *YahooClient) get(ctx context.Context, path string, params url.Values, out any) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("invalid base url: %w", err)
	}
	params.Set("region", c.region)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", u.Host)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d from %s", ErrUpstream, resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUpstream, path, err)
	}
	return nil
}

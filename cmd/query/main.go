package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"stock-agent/internal/config"
	"stock-agent/internal/dispatcher"
	"stock-agent/internal/market"
	"stock-agent/internal/query"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: query \"What's the current price of Apple?\"")
		os.Exit(2)
	}
	text := strings.TrimSpace(strings.Join(os.Args[1:], " "))

	cfg, err := config.LoadOrDefault("configs/app.yaml")
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	disp := dispatcher.New(dispatcher.Config{
		Enabled:    cfg.Dispatcher.Enabled,
		Model:      cfg.Dispatcher.Model,
		APIKey:     cfg.Dispatcher.APIKey,
		BaseURL:    cfg.Dispatcher.BaseURL,
		ByAzure:    cfg.Dispatcher.ByAzure,
		APIVersion: cfg.Dispatcher.APIVersion,
		TimeoutMs:  cfg.Dispatcher.TimeoutMs,
	})

	yahoo := market.NewYahooClient(
		cfg.Upstream.APIKey,
		time.Duration(cfg.Upstream.TimeoutMs)*time.Millisecond,
		market.WithBaseURL(cfg.Upstream.BaseURL),
	)
	exec := market.NewExecutor(yahoo)

	ctx := context.Background()

	parsed, err := disp.Classify(ctx, text)
	if err != nil {
		// drop to keyword routing when the LLM output is unusable
		parsed, err = query.Classify(text)
	}
	if err != nil {
		log.Fatalf("could not understand query: %v", err)
	}

	answer, err := exec.Execute(ctx, parsed)
	if err != nil {
		log.Fatalf("lookup failed: %v", err)
	}

	switch {
	case answer.Price != nil:
		printPrice(answer.Price)
	case answer.Chart != nil:
		printChart(answer.Chart)
	}
}

func printPrice(p *market.PriceResult) {
	name := p.Name
	if name == "" {
		name = p.Symbol
	}
	fmt.Printf("Company Information for %s (%s)\n", p.Symbol, name)
	fmt.Printf("Current Price: %s\n", money(p.Price))
	fmt.Printf("Market Cap: %s\n", money(p.MarketCap))
	fmt.Printf("52 Week Range: %s - %s\n", money(p.FiftyTwoWeekLow), money(p.FiftyTwoWeekHigh))
	fmt.Printf("P/E Ratio: %s\n", num(p.PERatio))
	fmt.Printf("Dividend Yield: %s\n", num(p.DividendYield))
}

func printChart(c *market.ChartResult) {
	fmt.Printf("Historical chart for %s (range=%s interval=%s)\n", c.Symbol, c.Range, c.Interval)
	if len(c.Points) == 0 {
		fmt.Println("No data points in range.")
		return
	}
	first := c.Points[0]
	last := c.Points[len(c.Points)-1]
	lo, hi := first.Close, first.Close
	for _, p := range c.Points {
		if p.Close < lo {
			lo = p.Close
		}
		if p.Close > hi {
			hi = p.Close
		}
	}
	fmt.Printf("Points: %d\n", len(c.Points))
	fmt.Printf("First: %s close=%.2f\n", day(first.TS), first.Close)
	fmt.Printf("Last:  %s close=%.2f\n", day(last.TS), last.Close)
	fmt.Printf("Low: %.2f High: %.2f\n", lo, hi)
}

func day(ts int64) string {
	return time.Unix(ts, 0).Format("2006-01-02")
}

func money(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("$%.2f", *v)
}

func num(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

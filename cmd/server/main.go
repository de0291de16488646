package main

import (
	"fmt"
	"log"
	"time"

	"stock-agent/internal/api"
	"stock-agent/internal/config"
	"stock-agent/internal/dispatcher"
	"stock-agent/internal/market"
	"stock-agent/internal/store"

	"github.com/cloudwego/hertz/pkg/app/server"
)

func main() {
	cfg, err := config.LoadOrDefault("configs/app.yaml")
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if cfg.Upstream.APIKey == "" {
		log.Printf("warning: upstream api key not set, lookups will fail (set RAPIDAPI_KEY)")
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	h := server.Default(server.WithHostPorts(addr))

	st, err := store.Open(cfg.Store.Sqlite.Path)
	if err != nil {
		log.Fatalf("store error: %v", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Printf("store close error: %v", err)
		}
	}()

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

	api.RegisterRoutes(h, disp, exec, st)

	log.Printf("server starting on %s (log.level=%s)", addr, cfg.Log.Level)
	if err := h.Run(); err != nil {
		log.Fatalf("server run error: %v", err)
	}
}

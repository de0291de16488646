package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"stock-agent/internal/dispatcher"
	"stock-agent/internal/market"
	"stock-agent/internal/query"
	"stock-agent/internal/store"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
)

type QueryRequest struct {
	Q string `json:"q"`
}

func RegisterRoutes(h *server.Hertz, disp *dispatcher.Agent, exec *market.Executor, st *store.Store) {
	h.GET("/", func(_ context.Context, c *app.RequestContext) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexPage))
	})

	h.GET("/healthz", func(_ context.Context, c *app.RequestContext) {
		c.JSON(http.StatusOK, map[string]bool{"ok": true})
	})

	h.POST("/api/v1/query", func(ctx context.Context, c *app.RequestContext) {
		if exec == nil {
			c.JSON(http.StatusInternalServerError, map[string]any{
				"ok":    false,
				"error": "executor not configured",
			})
			return
		}

		var req QueryRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, map[string]any{
				"ok":    false,
				"error": "invalid json body",
			})
			return
		}
		text := strings.TrimSpace(req.Q)
		if text == "" {
			c.JSON(http.StatusBadRequest, map[string]any{
				"ok":    false,
				"error": "q is required",
			})
			return
		}

		mode := "keyword"
		var warnings []string
		var parsed query.Request
		var err error
		if disp.Enabled() {
			parsed, err = disp.Classify(ctx, text)
			if err != nil {
				log.Printf("dispatcher classify error: %v", err)
				warnings = append(warnings, "llm classification failed, keyword routing used")
				parsed, err = query.Classify(text)
			} else {
				mode = "llm"
			}
		} else {
			parsed, err = query.Classify(text)
		}
		if err != nil {
			recordQuery(st, text, parsed, "", "error", err)
			c.JSON(statusForError(err), map[string]any{
				"ok":    false,
				"kind":  errorKind(err),
				"error": err.Error(),
			})
			return
		}

		answer, err := exec.Execute(ctx, parsed)
		if err != nil {
			recordQuery(st, text, parsed, "", "error", err)
			c.JSON(statusForError(err), map[string]any{
				"ok":    false,
				"kind":  errorKind(err),
				"error": err.Error(),
			})
			return
		}

		symbol := ""
		if answer.Price != nil {
			symbol = answer.Price.Symbol
		}
		if answer.Chart != nil {
			symbol = answer.Chart.Symbol
		}
		recordQuery(st, text, parsed, symbol, "ok", nil)

		c.JSON(http.StatusOK, map[string]any{
			"ok":       true,
			"mode":     mode,
			"request":  parsed,
			"price":    answer.Price,
			"chart":    answer.Chart,
			"warnings": warnings,
		})
	})

	h.GET("/api/v1/price", func(ctx context.Context, c *app.RequestContext) {
		if exec == nil {
			c.JSON(http.StatusInternalServerError, map[string]any{
				"ok":    false,
				"error": "executor not configured",
			})
			return
		}
		symbol := strings.TrimSpace(string(c.Query("symbol")))
		if symbol == "" {
			c.JSON(http.StatusBadRequest, map[string]any{
				"ok":    false,
				"error": "symbol is required",
			})
			return
		}
		resolved, err := exec.ResolveSymbol(ctx, symbol)
		if err == nil {
			var price market.PriceResult
			price, err = exec.FetchPrice(ctx, resolved)
			if err == nil {
				c.JSON(http.StatusOK, map[string]any{
					"ok":    true,
					"price": price,
				})
				return
			}
		}
		c.JSON(statusForError(err), map[string]any{
			"ok":    false,
			"kind":  errorKind(err),
			"error": err.Error(),
		})
	})

	h.GET("/api/v1/chart", func(ctx context.Context, c *app.RequestContext) {
		if exec == nil {
			c.JSON(http.StatusInternalServerError, map[string]any{
				"ok":    false,
				"error": "executor not configured",
			})
			return
		}
		symbol := strings.TrimSpace(string(c.Query("symbol")))
		if symbol == "" {
			c.JSON(http.StatusBadRequest, map[string]any{
				"ok":    false,
				"error": "symbol is required",
			})
			return
		}
		rng := string(c.Query("range"))
		if !query.ValidRange(rng) {
			rng = query.DefaultRange
		}
		interval := string(c.Query("interval"))
		if !query.ValidInterval(interval) {
			interval = query.DefaultInterval
		}
		resolved, err := exec.ResolveSymbol(ctx, symbol)
		if err == nil {
			var chart market.ChartResult
			chart, err = exec.FetchChart(ctx, resolved, rng, interval)
			if err == nil {
				c.JSON(http.StatusOK, map[string]any{
					"ok":    true,
					"chart": chart,
				})
				return
			}
		}
		c.JSON(statusForError(err), map[string]any{
			"ok":    false,
			"kind":  errorKind(err),
			"error": err.Error(),
		})
	})

	h.GET("/api/v1/history", func(_ context.Context, c *app.RequestContext) {
		if st == nil {
			c.JSON(http.StatusInternalServerError, map[string]any{
				"ok":    false,
				"error": "store not configured",
			})
			return
		}
		kind := string(c.Query("kind"))
		limit, err := parseLimit(c.Query("limit"))
		if err != nil {
			c.JSON(http.StatusBadRequest, map[string]any{
				"ok":    false,
				"error": err.Error(),
			})
			return
		}
		offset, err := parseOffset(c.Query("offset"))
		if err != nil {
			c.JSON(http.StatusBadRequest, map[string]any{
				"ok":    false,
				"error": err.Error(),
			})
			return
		}
		items, err := st.QueryHistory(kind, limit, offset)
		if err != nil {
			c.JSON(http.StatusBadRequest, map[string]any{
				"ok":    false,
				"error": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, map[string]any{
			"ok":    true,
			"items": items,
		})
	})

	h.POST("/api/v1/test/classify", func(_ context.Context, c *app.RequestContext) {
		var req QueryRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, map[string]any{
				"ok":    false,
				"error": "invalid json body",
			})
			return
		}
		parsed, err := query.Classify(req.Q)
		if err != nil {
			c.JSON(statusForError(err), map[string]any{
				"ok":    false,
				"kind":  errorKind(err),
				"error": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, map[string]any{
			"ok":      true,
			"request": parsed,
		})
	})

	h.POST("/api/v1/test/dispatcher/ping", func(ctx context.Context, c *app.RequestContext) {
		if disp == nil {
			c.JSON(http.StatusOK, map[string]any{
				"ok":     true,
				"mode":   "keyword",
				"reason": "dispatcher not configured",
			})
			return
		}
		resp, _ := disp.Ping(ctx)
		c.JSON(http.StatusOK, resp)
	})
}

func recordQuery(st *store.Store, text string, req query.Request, symbol, status string, cause error) {
	if st == nil {
		return
	}
	rec := store.QueryRecord{
		Query:    text,
		Kind:     string(req.Kind),
		Symbol:   symbol,
		Range:    req.Range,
		Interval: req.Interval,
		Status:   status,
	}
	if cause != nil {
		rec.Error = cause.Error()
	}
	if err := st.InsertQuery(rec); err != nil {
		log.Printf("insert query record error: %v", err)
	}
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, query.ErrNoSubject), errors.Is(err, query.ErrBadClassification):
		return http.StatusBadRequest
	case errors.Is(err, market.ErrSymbolNotFound):
		return http.StatusNotFound
	case errors.Is(err, market.ErrUpstream):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// errorKind names the error taxonomy entry so clients can pick a message
// without parsing free text.
func errorKind(err error) string {
	switch {
	case errors.Is(err, query.ErrNoSubject):
		return "extraction"
	case errors.Is(err, query.ErrBadClassification):
		return "classification"
	case errors.Is(err, market.ErrSymbolNotFound):
		return "symbol_not_found"
	case errors.Is(err, market.ErrUpstream):
		return "upstream"
	}
	return "internal"
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 200, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid limit")
	}
	if v > 1000 {
		return 1000, nil
	}
	return v, nil
}

func parseOffset(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid offset")
	}
	return v, nil
}

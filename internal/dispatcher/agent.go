package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"stock-agent/internal/query"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/schema"
)

type Config struct {
	Enabled    bool   `yaml:"enabled"`
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	ByAzure    bool   `yaml:"by_azure"`
	APIVersion string `yaml:"api_version"`
	TimeoutMs  int    `yaml:"timeout_ms"`
}

// classification is the JSON shape the model is instructed to return.
type classification struct {
	RequestType string `json:"request_type"`
	Subject     string `json:"subject"`
	Range       string `json:"range"`
	Interval    string `json:"interval"`
}

// Agent classifies free-text stock queries with an LLM. When disabled or
// unconfigured it degrades to the deterministic keyword router, so callers
// can always route through it.
type Agent struct {
	enabled        bool
	model          *openai.ChatModel
	modelName      string
	disabledReason string
}

func New(cfg Config) *Agent {
	if !cfg.Enabled {
		return &Agent{enabled: false, disabledReason: "disabled by config"}
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = os.Getenv("OPENAI_MODEL")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv("OPENAI_BASE_URL")
	}
	if cfg.APIKey == "" || cfg.Model == "" {
		log.Printf("dispatcher disabled: missing api key or model")
		return &Agent{enabled: false, disabledReason: "api_key or model missing"}
	}

	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	model, err := openai.NewChatModel(context.Background(), &openai.ChatModelConfig{
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		BaseURL:    cfg.BaseURL,
		ByAzure:    cfg.ByAzure,
		APIVersion: cfg.APIVersion,
		Timeout:    timeout,
	})
	if err != nil {
		log.Printf("dispatcher init error: %v", err)
		return &Agent{enabled: false, disabledReason: "init failed"}
	}

	return &Agent{enabled: true, model: model, modelName: cfg.Model}
}

// Enabled reports whether the LLM path is active. Callers use this to tag
// responses with the classifier mode.
func (a *Agent) Enabled() bool {
	return a != nil && a.enabled && a.model != nil
}

const systemPrompt = `You are a financial query dispatcher. Output ONLY valid JSON.
Analyze the user's stock query and extract:
1. request_type: "chart" if the user wants historical data, trends, charts or graphs; otherwise "price".
2. subject: the company name or ticker symbol mentioned. Well-known tickers: Apple=AAPL, Microsoft=MSFT, Amazon=AMZN, Google/Alphabet=GOOGL, Meta/Facebook=META, Tesla=TSLA, Netflix=NFLX, Nvidia=NVDA, Salesforce=CRM, IBM=IBM, Oracle=ORCL, AMD=AMD, Intel=INTC.
3. range: one of 1d, 5d, 1mo, 3mo, 6mo, 1y, 5y, max. Use "6mo" if not specified.
4. interval: one of daily, weekly, monthly. Use "daily" if not specified.
Respond with exactly {"request_type":..., "subject":..., "range":..., "interval":...} and no other text.`

// Classify asks the model to route the query. The model's output is
// treated as opaque and validated against the router's Request contract;
// anything malformed is query.ErrBadClassification. Disabled agents fall
// through to the keyword router.
func (a *Agent) Classify(ctx context.Context, text string) (query.Request, error) {
	if !a.Enabled() {
		return query.Classify(text)
	}

	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(fmt.Sprintf("Query: %s", text)),
	}

	resp, err := a.model.Generate(ctx, messages)
	if err != nil {
		logLLMError(err)
		return query.Request{}, err
	}

	return ParseClassification(strings.TrimSpace(resp.Content))
}

// ParseClassification validates raw classifier output against the Request
// contract. Exported so the same validation covers any classifier backend.
func ParseClassification(text string) (query.Request, error) {
	var out classification
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		jsonStr := extractFirstJSONObject(text)
		if jsonStr == "" {
			return query.Request{}, fmt.Errorf("%w: no json object found", query.ErrBadClassification)
		}
		if err := json.Unmarshal([]byte(jsonStr), &out); err != nil {
			return query.Request{}, fmt.Errorf("%w: %v", query.ErrBadClassification, err)
		}
	}

	var kind query.Kind
	switch strings.ToLower(strings.TrimSpace(out.RequestType)) {
	case "price":
		kind = query.KindPrice
	case "chart":
		kind = query.KindChart
	default:
		return query.Request{}, fmt.Errorf("%w: bad request_type %q", query.ErrBadClassification, out.RequestType)
	}

	subject := strings.TrimSpace(out.Subject)
	if subject == "" {
		return query.Request{}, fmt.Errorf("%w: empty subject", query.ErrBadClassification)
	}

	// unknown range/interval values default silently, same as the router
	return query.Normalize(query.Request{
		Kind:     kind,
		Subject:  subject,
		Range:    strings.ToLower(strings.TrimSpace(out.Range)),
		Interval: strings.ToLower(strings.TrimSpace(out.Interval)),
	}), nil
}

func (a *Agent) Ping(ctx context.Context) (map[string]any, error) {
	if !a.Enabled() {
		reason := "not configured"
		if a != nil && a.disabledReason != "" {
			reason = a.disabledReason
		}
		return map[string]any{"ok": true, "mode": "keyword", "reason": reason}, nil
	}
	start := time.Now()
	messages := []*schema.Message{
		schema.SystemMessage("Return ONLY valid JSON: {\"ok\":true}."),
		schema.UserMessage("ping"),
	}
	_, err := a.model.Generate(ctx, messages)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		logLLMError(err)
		return map[string]any{"ok": true, "mode": "keyword", "reason": "llm error"}, err
	}
	return map[string]any{"ok": true, "mode": "llm", "model": a.modelName, "latency_ms": latency}, nil
}

func extractFirstJSONObject(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func logLLMError(err error) {
	apiErr := &openai.APIError{}
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if len(msg) > 300 {
			msg = msg[:300] + "..."
		}
		log.Printf("dispatcher api error: status=%d message=%s", apiErr.HTTPStatusCode, msg)
		return
	}
	log.Printf("dispatcher error: %v", err)
}

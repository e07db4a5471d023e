package openai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/upskillworks/roadmap-backend/internal/pkg/ctxutil"
	"github.com/upskillworks/roadmap-backend/internal/pkg/logger"

	"context"
)

// Client is the LLM gateway consumed by the engine. Implementations
// must return strict JSON for GenerateJSON or fail after the bounded
// retry budget.
type Client interface {
	GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, *Usage, error)
	GenerateText(ctx context.Context, system string, user string) (string, *Usage, error)
	Model() string
}

// Usage reports token consumption for one logical call (summed over
// JSON retries).
type Usage struct {
	InputTokens  int
	OutputTokens int
	Calls        int
}

// WithModel returns a client bound to a different model. Empty model
// or a non-native client returns base unchanged.
func WithModel(base Client, model string) Client {
	model = strings.TrimSpace(model)
	if base == nil || model == "" {
		return base
	}
	if c, ok := base.(*client); ok {
		clone := *c
		clone.model = model
		return &clone
	}
	return base
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client

	// jsonRetries is the extra-attempt budget for unparseable model
	// output, not for transport failures (those propagate immediately).
	jsonRetries     int
	maxOutputTokens int
	temperature     *float64

	// Runtime learning: models that rejected the temperature parameter
	// are remembered and the parameter omitted thereafter.
	noTempMu   sync.RWMutex
	noTempSeen map[string]bool
}

func NewClient(log *logger.Logger) (Client, error) {
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}

	baseURL := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	model := strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if model == "" {
		model = "gpt-4o"
	}

	timeout := 120 * time.Second
	if v := strings.TrimSpace(os.Getenv("OPENAI_TIMEOUT_SECONDS")); v != "" {
		if secs, err := time.ParseDuration(v + "s"); err == nil && secs > 0 {
			timeout = secs
		}
	}

	jsonRetries := 2
	if v := strings.TrimSpace(os.Getenv("OPENAI_JSON_RETRIES")); v != "" {
		if n, err := parseInt(v); err == nil && n >= 0 {
			jsonRetries = n
		}
	}

	temp := 0.4
	c := &client{
		log:             log.With("client", "OpenAIClient"),
		baseURL:         baseURL,
		apiKey:          apiKey,
		model:           model,
		httpClient:      &http.Client{Timeout: timeout},
		jsonRetries:     jsonRetries,
		maxOutputTokens: 8192,
		temperature:     &temp,
		noTempSeen:      map[string]bool{},
	}
	return c, nil
}

func parseInt(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	return n, err
}

func (c *client) Model() string { return c.model }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// buildMessages returns a fresh message list for the given attempt.
// Retry attempts append the JSON-only instruction instead of mutating
// a shared slice across attempts.
func buildMessages(system, user string, attempt int) []message {
	msgs := []message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
	if attempt > 0 {
		msgs = append(msgs, message{
			Role:    "system",
			Content: "Your previous output was not valid JSON. Respond with JSON only, no prose and no code fences.",
		})
	}
	return msgs
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []message      `json:"messages"`
	Temperature    *float64       `json:"temperature,omitempty"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`

	// Exactly one of these is set, per the model capability table.
	MaxTokens           int `json:"max_tokens,omitempty"`
	MaxCompletionTokens int `json:"max_completion_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (c *client) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, *Usage, error) {
	if schemaName == "" {
		return nil, nil, errors.New("schemaName required")
	}
	if schema == nil {
		return nil, nil, errors.New("schema required")
	}
	ctx = ctxutil.Default(ctx)

	usage := &Usage{}
	format := map[string]any{
		"type": "json_schema",
		"json_schema": map[string]any{
			"name":   schemaName,
			"schema": schema,
			"strict": true,
		},
	}

	var lastErr error
	for attempt := 0; attempt <= c.jsonRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, usage, ctx.Err()
		}

		req := c.newRequest(buildMessages(system, user, attempt))
		req.ResponseFormat = format

		text, err := c.complete(ctx, &req, usage)
		if err != nil {
			// Transport and API errors are not retried here.
			return nil, usage, err
		}

		var obj map[string]any
		if uErr := json.Unmarshal([]byte(stripFences(text)), &obj); uErr != nil {
			lastErr = fmt.Errorf("model output is not valid JSON: %w", uErr)
			c.log.Warn("LLM returned unparseable JSON, retrying",
				"attempt", attempt+1, "budget", c.jsonRetries, "error", uErr.Error())
			continue
		}
		return obj, usage, nil
	}
	return nil, usage, fmt.Errorf("json retries exhausted: %w", lastErr)
}

func (c *client) GenerateText(ctx context.Context, system, user string) (string, *Usage, error) {
	ctx = ctxutil.Default(ctx)
	usage := &Usage{}
	req := c.newRequest(buildMessages(system, user, 0))
	text, err := c.complete(ctx, &req, usage)
	if err != nil {
		return "", usage, err
	}
	return text, usage, nil
}

func (c *client) newRequest(msgs []message) chatRequest {
	req := chatRequest{
		Model:    c.model,
		Messages: msgs,
	}
	caps := capabilitiesFor(c.model)
	if caps.SupportsTemperature && c.temperature != nil && !c.learnedNoTemp(c.model) {
		req.Temperature = c.temperature
	}
	switch caps.TokenParam {
	case TokenParamMaxCompletionTokens:
		req.MaxCompletionTokens = c.maxOutputTokens
	default:
		req.MaxTokens = c.maxOutputTokens
	}
	return req
}

// complete performs one chat-completions round trip, retrying exactly
// once without temperature when the model rejects the parameter.
func (c *client) complete(ctx context.Context, req *chatRequest, usage *Usage) (string, error) {
	text, err := c.doOnce(ctx, req, usage)
	if err == nil {
		return text, nil
	}
	if req.Temperature != nil && isUnsupportedTemperature(err) {
		c.noteNoTemp(req.Model)
		req.Temperature = nil
		return c.doOnce(ctx, req, usage)
	}
	return "", err
}

func (c *client) doOnce(ctx context.Context, body *chatRequest, usage *Usage) (string, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", &buf)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return "", readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &apiError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode response: %w; raw=%s", err, string(raw))
	}
	if usage != nil {
		usage.InputTokens += out.Usage.PromptTokens
		usage.OutputTokens += out.Usage.CompletionTokens
		usage.Calls++
	}
	if len(out.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	if out.Choices[0].Message.Refusal != "" {
		return "", fmt.Errorf("model refused: %s", out.Choices[0].Message.Refusal)
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("empty completion")
	}
	return text, nil
}

type apiError struct {
	StatusCode int
	Body       string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

func isUnsupportedTemperature(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "temperature") {
		return false
	}
	for _, marker := range []string{
		"unsupported parameter",
		"unknown parameter",
		"not supported",
		"does not support",
		"only the default",
		"unsupported_value",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func (c *client) learnedNoTemp(model string) bool {
	c.noTempMu.RLock()
	defer c.noTempMu.RUnlock()
	return c.noTempSeen[strings.ToLower(strings.TrimSpace(model))]
}

func (c *client) noteNoTemp(model string) {
	c.noTempMu.Lock()
	c.noTempSeen[strings.ToLower(strings.TrimSpace(model))] = true
	c.noTempMu.Unlock()
}

// stripFences tolerates models that wrap JSON in a markdown code fence
// despite the instruction.
func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

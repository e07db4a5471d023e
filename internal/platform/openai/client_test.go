package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/upskillworks/roadmap-backend/internal/pkg/logger"
)

func newTestClient(t *testing.T, serverURL string) *client {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	os.Setenv("OPENAI_API_KEY", "test-key")
	os.Setenv("OPENAI_BASE_URL", serverURL)
	os.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Cleanup(func() {
		os.Unsetenv("OPENAI_API_KEY")
		os.Unsetenv("OPENAI_BASE_URL")
		os.Unsetenv("OPENAI_MODEL")
	})
	c, err := NewClient(log)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c.(*client)
}

func completionBody(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5},
	})
	return string(b)
}

func TestBuildMessagesFreshPerAttempt(t *testing.T) {
	first := buildMessages("sys", "user", 0)
	retry := buildMessages("sys", "user", 1)

	if len(first) != 2 {
		t.Fatalf("first attempt should carry 2 messages, got %d", len(first))
	}
	if len(retry) != 3 {
		t.Fatalf("retry attempt should append the JSON-only instruction, got %d", len(retry))
	}
	// The first attempt's slice must not have been mutated.
	if len(first) != 2 {
		t.Fatalf("first attempt slice mutated")
	}
	if retry[2].Role != "system" {
		t.Fatalf("appended instruction should be a system message: %+v", retry[2])
	}
}

func TestGenerateJSONRetriesOnMalformedOutput(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if calls == 1 {
			if len(req.Messages) != 2 {
				t.Errorf("first attempt carried %d messages", len(req.Messages))
			}
			w.Write([]byte(completionBody("here you go: {broken")))
			return
		}
		if len(req.Messages) != 3 {
			t.Errorf("retry attempt should carry the JSON-only instruction, got %d messages", len(req.Messages))
		}
		w.Write([]byte(completionBody(`{"ok": true}`)))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	obj, usage, err := c.GenerateJSON(context.Background(), "sys", "user", "test", map[string]any{"type": "object"})
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if obj["ok"] != true {
		t.Fatalf("unexpected object: %v", obj)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
	if usage.Calls != 2 || usage.InputTokens != 20 {
		t.Fatalf("usage should sum over retries: %+v", usage)
	}
}

func TestGenerateJSONExhaustsRetryBudget(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(completionBody("not json at all")))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	c.jsonRetries = 2
	_, _, err := c.GenerateJSON(context.Background(), "sys", "user", "test", map[string]any{"type": "object"})
	if err == nil {
		t.Fatalf("expected error after exhausting retries")
	}
	if calls != 3 {
		t.Fatalf("expected 1 + 2 retry calls, got %d", calls)
	}
}

func TestGenerateJSONDoesNotRetryTransportErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"error": {"message": "boom"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, _, err := c.GenerateJSON(context.Background(), "sys", "user", "test", map[string]any{"type": "object"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if calls != 1 {
		t.Fatalf("transport errors must propagate immediately, got %d calls", calls)
	}
}

func TestTemperatureRejectionLearned(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Temperature != nil {
			http.Error(w, `{"error": {"message": "Unsupported parameter: temperature"}}`, http.StatusBadRequest)
			return
		}
		w.Write([]byte(completionBody(`{"ok": true}`)))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	if _, _, err := c.GenerateJSON(context.Background(), "sys", "user", "test", map[string]any{"type": "object"}); err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected reject-then-retry, got %d calls", calls)
	}
	if !c.learnedNoTemp("gpt-4o") {
		t.Fatalf("model should be remembered as no-temperature")
	}

	// Second call omits temperature up front.
	calls = 0
	if _, _, err := c.GenerateJSON(context.Background(), "sys", "user", "test", map[string]any{"type": "object"}); err != nil {
		t.Fatalf("GenerateJSON second: %v", err)
	}
	if calls != 1 {
		t.Fatalf("learned model should skip the temperature attempt, got %d calls", calls)
	}
}

func TestCapabilitiesFor(t *testing.T) {
	cases := []struct {
		model    string
		wantTemp bool
		wantTok  string
	}{
		{model: "gpt-4o", wantTemp: true, wantTok: TokenParamMaxTokens},
		{model: "o1-preview", wantTemp: false, wantTok: TokenParamMaxCompletionTokens},
		{model: "gpt-5-turbo", wantTemp: false, wantTok: TokenParamMaxCompletionTokens},
		{model: "some-unknown-model", wantTemp: true, wantTok: TokenParamMaxTokens},
	}
	for _, tc := range cases {
		caps := capabilitiesFor(tc.model)
		if caps.SupportsTemperature != tc.wantTemp || caps.TokenParam != tc.wantTok {
			t.Fatalf("capabilitiesFor(%q)=%+v", tc.model, caps)
		}
	}
}

func TestStripFences(t *testing.T) {
	in := "```json\n{\"a\": 1}\n```"
	if got := stripFences(in); got != `{"a": 1}` {
		t.Fatalf("stripFences=%q", got)
	}
	if got := stripFences(`{"a": 1}`); got != `{"a": 1}` {
		t.Fatalf("plain JSON altered: %q", got)
	}
}

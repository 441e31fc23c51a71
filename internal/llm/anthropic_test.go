package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
)

func anthropicServer(t *testing.T, status int, body string, gotReq *map[string]any) *anthropicProvider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if gotReq != nil {
			raw, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(raw, gotReq); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	p, err := newAnthropic(AnthropicConfig{APIKey: "test-key", Model: "claude-haiku"},
		option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	if err != nil {
		t.Fatalf("newAnthropic: %v", err)
	}
	return p
}

func TestAnthropic_Complete(t *testing.T) {
	var req map[string]any
	p := anthropicServer(t, http.StatusOK, `{
		"id": "msg_1", "type": "message", "role": "assistant",
		"model": "claude-haiku-4-5-20251001",
		"content": [{"type": "text", "text": "{\"correct\":true,\"reason\":\"Names Washington.\"}"}],
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 120, "output_tokens": 14}
	}`, &req)

	if p.Model() != "claude-haiku-4-5-20251001" {
		t.Errorf("Model = %q, want alias resolved", p.Model())
	}

	c, err := p.Complete(context.Background(), Prompt{
		System: "You are an officer.", User: "Who was the first President?",
		Schema: answerSchema(), MaxTokens: 128,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if c.Usage.Total() != 134 {
		t.Errorf("usage = %+v", c.Usage)
	}
	if c.Truncated {
		t.Error("unexpected truncation")
	}
	var out struct{ Correct bool }
	if err := json.Unmarshal(c.JSON, &out); err != nil || !out.Correct {
		t.Errorf("JSON = %s", c.JSON)
	}
	if req["model"] != "claude-haiku-4-5-20251001" {
		t.Errorf("request model = %v", req["model"])
	}
}

func TestAnthropic_Truncated(t *testing.T) {
	p := anthropicServer(t, http.StatusOK, `{
		"id": "msg_2", "type": "message", "role": "assistant", "model": "claude-haiku-4-5-20251001",
		"content": [{"type": "text", "text": "{\"correct\":tr"}],
		"stop_reason": "max_tokens",
		"usage": {"input_tokens": 120, "output_tokens": 4}
	}`, nil)

	_, err := p.Complete(context.Background(), Prompt{User: "q", Schema: answerSchema(), MaxTokens: 4})
	if !IsKind(err, KindTruncated) {
		t.Fatalf("err = %v, want truncated", err)
	}
}

func TestAnthropic_Errors(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorKind
	}{
		{http.StatusTooManyRequests, KindRateLimited},
		{http.StatusUnauthorized, KindRejected},
		{http.StatusInternalServerError, KindUnavailable},
	}
	for _, tt := range tests {
		p := anthropicServer(t, tt.status,
			`{"type":"error","error":{"type":"api_error","message":"nope"}}`, nil)
		_, err := p.Complete(context.Background(), Prompt{User: "q", MaxTokens: 16})
		if !IsKind(err, tt.want) {
			t.Errorf("status %d: err = %v, want %s", tt.status, err, tt.want)
		}
	}
}

func TestAnthropic_RequiresKey(t *testing.T) {
	if _, err := newAnthropic(AnthropicConfig{}); err == nil {
		t.Fatal("expected error without API key")
	}
}

package openaicompat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rhuss/clinicdesk/pkg/api"
)

func TestClient_Complete(t *testing.T) {
	var received ChatCompletionRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("expected path /v1/chat/completions, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected Authorization header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ChatCompletionResponse{
			ID:    "chatcmpl-1",
			Model: "gpt-4-mini",
			Choices: []ChatChoice{{
				Message:      ChatMessage{Role: "assistant", Content: "  We are open 9 to 5.  "},
				FinishReason: "stop",
			}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "sk-test", time.Second)
	maxTokens := 500
	text, err := c.CompleteText(context.Background(), &ChatCompletionRequest{
		Model:     "gpt-4-mini",
		Messages:  []ChatMessage{{Role: "system", Content: "be nice"}, {Role: "user", Content: "hours?"}},
		MaxTokens: &maxTokens,
	})
	if err != nil {
		t.Fatalf("CompleteText failed: %v", err)
	}
	if text != "We are open 9 to 5." {
		t.Errorf("expected trimmed content, got %q", text)
	}
	if received.Model != "gpt-4-mini" || len(received.Messages) != 2 {
		t.Errorf("unexpected request body: %+v", received)
	}
	if received.MaxTokens == nil || *received.MaxTokens != 500 {
		t.Errorf("expected max_tokens 500, got %v", received.MaxTokens)
	}
}

func TestClient_CompleteTextEmpty(t *testing.T) {
	tests := []struct {
		name string
		resp ChatCompletionResponse
	}{
		{"no choices", ChatCompletionResponse{}},
		{"blank content", ChatCompletionResponse{Choices: []ChatChoice{{Message: ChatMessage{Role: "assistant", Content: "  "}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(tt.resp)
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, "", time.Second).CompleteText(context.Background(), &ChatCompletionRequest{Model: "m"})
			var apiErr *api.APIError
			if !errors.As(err, &apiErr) || apiErr.Type != api.ErrorTypeUpstreamError {
				t.Fatalf("expected upstream error, got %v", err)
			}
		})
	}
}

func TestMapHTTPError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantType api.ErrorType
		wantMsg  string
	}{
		{"bad request with message", 400, `{"error":{"message":"context too long"}}`, api.ErrorTypeUpstreamError, "context too long"},
		{"unauthorized", 401, "", api.ErrorTypeUpstreamError, "backend authentication failed"},
		{"forbidden", 403, "", api.ErrorTypeUpstreamError, "backend authentication failed"},
		{"not found", 404, "", api.ErrorTypeUpstreamError, "not found"},
		{"rate limited", 429, "", api.ErrorTypeTooManyRequests, "rate limit"},
		{"server error", 503, "oops", api.ErrorTypeUpstreamError, "HTTP 503"},
		{"teapot", 418, "", api.ErrorTypeUpstreamError, "HTTP 418"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{StatusCode: tt.status, Body: io.NopCloser(strings.NewReader(tt.body))}
			err := MapHTTPError(resp)
			if err.Type != tt.wantType {
				t.Errorf("type = %q, want %q", err.Type, tt.wantType)
			}
			if !strings.Contains(err.Message, tt.wantMsg) {
				t.Errorf("message %q does not contain %q", err.Message, tt.wantMsg)
			}
			if want := "backend_" + strconv.Itoa(tt.status); err.Code != want {
				t.Errorf("code = %q, want %q", err.Code, want)
			}
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, "", time.Second).Complete(context.Background(), &ChatCompletionRequest{Model: "m"})
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) || !strings.Contains(apiErr.Message, "backend connection error") {
		t.Fatalf("expected connection error, got %v", err)
	}
}

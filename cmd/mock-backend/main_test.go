package main

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/rhuss/clinicdesk/pkg/api"
	"github.com/rhuss/clinicdesk/pkg/embedding"
	"github.com/rhuss/clinicdesk/pkg/provider/openaicompat"
)

func TestEmbeddingsMatchDeterministicProvider(t *testing.T) {
	srv := httptest.NewServer(newMux(16, ""))
	defer srv.Close()

	client := embedding.NewClient(srv.URL, "", "mock", 0)
	texts := []string{"clinic hours", "parking"}
	got, err := client.Embed(context.Background(), texts)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	det := embedding.NewDeterministic(16)
	for i, text := range texts {
		want := det.Vector(text)
		if len(got[i]) != len(want) {
			t.Fatalf("vector %d has %d dims, want %d", i, len(got[i]), len(want))
		}
		for j := range want {
			if got[i][j] != want[j] {
				t.Fatalf("vector %d differs at %d: %v != %v", i, j, got[i][j], want[j])
			}
		}
	}
}

func TestAPIKeyRequired(t *testing.T) {
	srv := httptest.NewServer(newMux(8, "secret"))
	defer srv.Close()

	_, err := embedding.NewClient(srv.URL, "wrong", "mock", 0).Embed(context.Background(), []string{"x"})
	var reqErr *embedding.RequestError
	if !errors.As(err, &reqErr) || reqErr.StatusCode != 401 {
		t.Fatalf("err = %v, want 401 RequestError", err)
	}

	if _, err := embedding.NewClient(srv.URL, "secret", "mock", 0).Embed(context.Background(), []string{"x"}); err != nil {
		t.Errorf("with correct key: %v", err)
	}
}

func TestChatCompletionsRepeatsDraft(t *testing.T) {
	srv := httptest.NewServer(newMux(8, ""))
	defer srv.Close()

	client := openaicompat.NewClient(srv.URL, "", 0)
	tests := []struct {
		name     string
		messages []openaicompat.ChatMessage
		want     string
	}{
		{
			name: "assistant draft",
			messages: []openaicompat.ChatMessage{
				{Role: api.RoleSystem, Content: "system"},
				{Role: api.RoleUser, Content: "what are your hours?"},
				{Role: api.RoleAssistant, Content: "We are open 8 to 6."},
				{Role: api.RoleUser, Content: "Please rephrase."},
			},
			want: "We are open 8 to 6.",
		},
		{
			name:     "echo user",
			messages: []openaicompat.ChatMessage{{Role: api.RoleUser, Content: "hello"}},
			want:     "You said: hello",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := client.CompleteText(context.Background(), &openaicompat.ChatCompletionRequest{
				Model:    "mock",
				Messages: tt.messages,
			})
			if err != nil {
				t.Fatalf("CompleteText: %v", err)
			}
			if got != tt.want {
				t.Errorf("reply = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChatCompletionsRejectsEmpty(t *testing.T) {
	srv := httptest.NewServer(newMux(8, ""))
	defer srv.Close()

	_, err := openaicompat.NewClient(srv.URL, "", 0).Complete(context.Background(), &openaicompat.ChatCompletionRequest{Model: "mock"})
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *api.APIError", err)
	}
}

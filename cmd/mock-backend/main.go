// Command mock-backend runs a deterministic OpenAI-compatible backend for
// local development and integration testing. It serves /v1/embeddings with
// hash-derived vectors and /v1/chat/completions with a reply built from the
// conversation, so the server can run in its remote modes without network
// access.
//
// Configuration:
//
//	MOCK_PORT       - Listen port (default: 9090)
//	MOCK_DIMENSIONS - Embedding dimensions (default: 1536)
//	MOCK_API_KEY    - When set, requests must carry "Authorization: Bearer <key>"
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/rhuss/clinicdesk/pkg/api"
	"github.com/rhuss/clinicdesk/pkg/embedding"
	"github.com/rhuss/clinicdesk/pkg/provider/openaicompat"
)

func main() {
	port := os.Getenv("MOCK_PORT")
	if port == "" {
		port = "9090"
	}
	dims := embedding.DefaultDimensions
	if v := os.Getenv("MOCK_DIMENSIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			slog.Error("invalid MOCK_DIMENSIONS", "value", v)
			os.Exit(1)
		}
		dims = n
	}

	srv := &http.Server{Addr: ":" + port, Handler: newMux(dims, os.Getenv("MOCK_API_KEY"))}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("mock backend starting", "port", port, "dimensions", dims)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("mock backend failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("mock backend shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

func newMux(dims int, apiKey string) http.Handler {
	emb := embedding.NewDeterministic(dims)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/embeddings", requireKey(apiKey, func(w http.ResponseWriter, r *http.Request) {
		handleEmbeddings(w, r, emb)
	}))
	mux.HandleFunc("POST /v1/chat/completions", requireKey(apiKey, handleChatCompletions))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	return mux
}

func requireKey(key string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if key != "" && r.Header.Get("Authorization") != "Bearer "+key {
			writeError(w, http.StatusUnauthorized, "invalid_api_key", "Incorrect API key provided")
			return
		}
		next(w, r)
	}
}

// --- Embeddings ---

type embeddingsRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingsResponse struct {
	Object string          `json:"object"`
	Model  string          `json:"model"`
	Data   []embeddingItem `json:"data"`
}

type embeddingItem struct {
	Object    string    `json:"object"`
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
}

func handleEmbeddings(w http.ResponseWriter, r *http.Request, emb *embedding.Deterministic) {
	var req embeddingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body")
		return
	}

	resp := embeddingsResponse{Object: "list", Model: req.Model, Data: make([]embeddingItem, len(req.Input))}
	for i, text := range req.Input {
		resp.Data[i] = embeddingItem{Object: "embedding", Index: i, Embedding: emb.Vector(text)}
	}
	writeJSON(w, resp)
}

// --- Chat Completions ---

func handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req openaicompat.ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body")
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request_error", "messages must not be empty")
		return
	}

	reply := mockReply(req.Messages)
	promptTokens := 0
	for _, m := range req.Messages {
		promptTokens += len(strings.Fields(m.Content))
	}
	completionTokens := len(strings.Fields(reply))

	writeJSON(w, openaicompat.ChatCompletionResponse{
		ID:     "chatcmpl-" + uuid.NewString(),
		Object: "chat.completion",
		Model:  req.Model,
		Choices: []openaicompat.ChatChoice{{
			Index:        0,
			Message:      openaicompat.ChatMessage{Role: api.RoleAssistant, Content: reply},
			FinishReason: "stop",
		}},
		Usage: &openaicompat.ChatUsage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		},
	})
}

// mockReply repeats the latest assistant draft when there is one, so
// rephrasing requests return the retrieved answer unchanged. Otherwise it
// echoes the latest user message.
func mockReply(messages []openaicompat.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == api.RoleAssistant {
			return messages[i].Content
		}
	}
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == api.RoleUser {
			return "You said: " + messages[i].Content
		}
	}
	return "How can I help you today?"
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, errType, msg string) {
	var body openaicompat.ChatErrorResponse
	body.Error.Message = msg
	body.Error.Type = errType
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

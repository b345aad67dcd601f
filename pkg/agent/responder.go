package agent

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/rhuss/clinicdesk/pkg/api"
	"github.com/rhuss/clinicdesk/pkg/observability"
	"github.com/rhuss/clinicdesk/pkg/provider/openaicompat"
)

// Responder turns a prepared conversation into the assistant's reply.
// Implementations always produce a reply.
type Responder interface {
	Respond(ctx context.Context, messages []api.Message) string
}

// MockResponder stands in for the LLM. A conversation ending with the
// rephrase instruction gets the preceding assistant draft back unchanged.
// Otherwise it picks a canned reply from keywords in the first user message
// that is not an instruction (does not start with "please ").
type MockResponder struct{}

// Compile-time check that MockResponder implements Responder.
var _ Responder = MockResponder{}

type cannedReply struct {
	keywords []string
	reply    string
}

// cannedReplies are tried in order; the first match wins.
var cannedReplies = []cannedReply{
	{[]string{"hours", "open", "close", "when", "location", "address"}, replyHours},
	{[]string{"insurance", "billing", "payment", "cost", "price", "fee"}, replyInsurance},
	{[]string{"book", "schedule", "appointment", "date", "time", "reschedule"}, replyBooking},
	{[]string{"cancel", "reschedule", "change", "modify"}, replyModify},
	{[]string{"doctor", "physician", "specialist", "staff", "qualifications"}, replyTeam},
}

// Respond returns the canned reply for the conversation.
func (MockResponder) Respond(_ context.Context, messages []api.Message) string {
	if len(messages) == 0 {
		return replyEmpty
	}
	if draft, ok := rephraseDraft(messages); ok {
		return draft
	}

	var text string
	found := false
	for _, m := range messages {
		if m.Role != api.RoleUser {
			continue
		}
		content := strings.ToLower(m.Content)
		if !strings.HasPrefix(content, "please ") {
			text, found = content, true
			break
		}
	}
	if !found {
		return replyNoUserInput
	}

	for _, c := range cannedReplies {
		if containsAny(text, c.keywords) {
			return c.reply
		}
	}
	return replyDefault
}

// rephraseDraft returns the assistant message answered by a trailing
// rephrase instruction.
func rephraseDraft(messages []api.Message) (string, bool) {
	n := len(messages)
	if n < 2 {
		return "", false
	}
	last, prev := messages[n-1], messages[n-2]
	if last.Role != api.RoleUser || last.Content != rephraseInstruction {
		return "", false
	}
	if prev.Role != api.RoleAssistant || strings.TrimSpace(prev.Content) == "" {
		return "", false
	}
	return prev.Content, true
}

// Completer is the chat completion call LLMResponder depends on.
// *openaicompat.Client satisfies it.
type Completer interface {
	CompleteText(ctx context.Context, req *openaicompat.ChatCompletionRequest) (string, error)
}

// LLMResponder asks a Chat Completions backend for the reply. Any backend
// failure is logged and answered by the fallback responder instead.
type LLMResponder struct {
	completer Completer
	model     string
	maxTokens int
	fallback  Responder
	logger    *slog.Logger
}

// Compile-time check that LLMResponder implements Responder.
var _ Responder = (*LLMResponder)(nil)

// NewLLMResponder creates a responder backed by completer. A nil fallback
// uses MockResponder.
func NewLLMResponder(completer Completer, model string, maxTokens int, fallback Responder, logger *slog.Logger) *LLMResponder {
	if fallback == nil {
		fallback = MockResponder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMResponder{
		completer: completer,
		model:     model,
		maxTokens: maxTokens,
		fallback:  fallback,
		logger:    logger,
	}
}

// Respond calls the backend, falling back on error.
func (r *LLMResponder) Respond(ctx context.Context, messages []api.Message) string {
	req := &openaicompat.ChatCompletionRequest{
		Model:    r.model,
		Messages: make([]openaicompat.ChatMessage, len(messages)),
	}
	for i, m := range messages {
		req.Messages[i] = openaicompat.ChatMessage{Role: m.Role, Content: m.Content}
	}
	if r.maxTokens > 0 {
		req.MaxTokens = &r.maxTokens
	}

	text, err := r.completer.CompleteText(ctx, req)
	if err != nil {
		observability.ResponderFallbacksTotal.Inc()
		attrs := []any{"model", r.model, "error", err}
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.Code != "" {
			attrs = append(attrs, "code", apiErr.Code)
		}
		r.logger.Warn("LLM call failed, using canned reply", attrs...)
		return r.fallback.Respond(ctx, messages)
	}
	return text
}

// ResponderConfig selects the Responder.
type ResponderConfig struct {
	Mock       bool
	BackendURL string
	APIKey     string
	Model      string
	MaxTokens  int
	Timeout    time.Duration
}

// NewResponder returns MockResponder when cfg.Mock is set or no API key is
// configured, and an LLMResponder otherwise.
func NewResponder(cfg ResponderConfig, logger *slog.Logger) Responder {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Mock {
		logger.Info("responder selected", "responder", "mock")
		return MockResponder{}
	}
	if cfg.APIKey == "" {
		logger.Warn("LLM API key not set, using canned replies", "backend_url", cfg.BackendURL)
		return MockResponder{}
	}

	client := openaicompat.NewClient(cfg.BackendURL, cfg.APIKey, cfg.Timeout)
	logger.Info("responder selected", "responder", "llm", "backend_url", cfg.BackendURL, "model", cfg.Model)
	return NewLLMResponder(client, cfg.Model, cfg.MaxTokens, MockResponder{}, logger)
}

package faq

import (
	"context"
	"log/slog"
	"strings"

	"github.com/rhuss/clinicdesk/pkg/observability"
)

// Fixed answer texts.
const (
	FallbackAnswer = "I’m not fully sure about that. " +
		"Please call the clinic directly for the most accurate information."

	answerLeadIn  = "Here’s what I found based on our clinic information:"
	answerClosing = "If anything is still unclear, I can try to clarify further."
)

// Compose renders ranked results as a reply. Each result becomes a
// "- Title: Content" bullet in the given order. Titles are rendered as
// stored; sources fill in DefaultTitle for data without one. No results
// yields FallbackAnswer.
func Compose(results []ScoredResult) string {
	if len(results) == 0 {
		return FallbackAnswer
	}

	var b strings.Builder
	b.WriteString(answerLeadIn)
	b.WriteString("\n\n")
	for i, r := range results {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(r.Document.Title)
		b.WriteString(": ")
		b.WriteString(r.Document.Content)
	}
	b.WriteString("\n\n")
	b.WriteString(answerClosing)
	return b.String()
}

// DefaultTopK is how many documents an answer cites.
const DefaultTopK = 3

// Answerer answers a free-text clinic question.
type Answerer interface {
	Answer(ctx context.Context, question string) string
}

// Service answers questions from an Index. It never fails: any error is
// logged and answered with FallbackAnswer.
type Service struct {
	index  *Index
	topK   int
	logger *slog.Logger
}

// Compile-time check that Service implements Answerer.
var _ Answerer = (*Service)(nil)

// NewService creates a Service citing topK documents per answer. A
// non-positive topK selects DefaultTopK.
func NewService(index *Index, topK int, logger *slog.Logger) *Service {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{index: index, topK: topK, logger: logger}
}

// Answer queries the index and composes a reply.
func (s *Service) Answer(ctx context.Context, question string) string {
	results, err := s.index.Query(ctx, question, s.topK)
	if err != nil {
		observability.FAQQueriesTotal.WithLabelValues("error").Inc()
		s.logger.Error("FAQ query failed", "error", err)
		return FallbackAnswer
	}
	if len(results) == 0 {
		observability.FAQQueriesTotal.WithLabelValues("empty").Inc()
		return FallbackAnswer
	}
	observability.FAQQueriesTotal.WithLabelValues("answered").Inc()
	return Compose(results)
}

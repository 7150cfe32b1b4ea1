// Package service orchestrates the chat pipeline and catalog change
// notifications on top of the repositories and the completion client.
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/ndc-feature-tracker/internal/ai"
	"github.com/iliyamo/ndc-feature-tracker/internal/metrics"
	"github.com/iliyamo/ndc-feature-tracker/internal/query"
)

// Completer is the part of the completion client the chat pipeline uses.
type Completer interface {
	Enabled() bool
	Complete(ctx context.Context, system string, messages []ai.Message, maxTokens int) (string, error)
	TestConnection(ctx context.Context) (bool, error)
}

// ChatRequest is one user question plus the prior turns of the conversation.
type ChatRequest struct {
	Message string
	History []ai.Message
}

// ChatResult is returned to the client for a processed question.
type ChatResult struct {
	Message    string              `json:"message"`
	Context    []query.ContextItem `json:"context"`
	QueryType  query.QueryType     `json:"queryType"`
	Confidence float64             `json:"confidence"`
	Timestamp  time.Time           `json:"timestamp"`
}

// ChatService runs extract, classify, build context, serialize and complete
// for each question.
type ChatService struct {
	analyzer *query.Analyzer
	builder  *query.Builder
	ai       Completer
	timeout  time.Duration
	log      *zap.Logger
	now      func() time.Time
}

func NewChatService(analyzer *query.Analyzer, builder *query.Builder, completer Completer, timeout time.Duration, log *zap.Logger) *ChatService {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ChatService{
		analyzer: analyzer,
		builder:  builder,
		ai:       completer,
		timeout:  timeout,
		log:      log,
		now:      time.Now,
	}
}

// Available reports whether a completion backend is configured.
func (s *ChatService) Available() bool { return s.ai != nil && s.ai.Enabled() }

// Process answers one question.  The whole pipeline shares a single deadline.
func (s *ChatService) Process(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	if !s.Available() {
		return nil, ai.ErrAINotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	entities := s.analyzer.Analyze(req.Message)
	items := s.builder.Build(ctx, entities)
	implementations := query.CountImplementations(items)

	metrics.ChatQueries.WithLabelValues(string(entities.QueryType)).Inc()
	metrics.ContextImplementations.Observe(float64(implementations))
	s.log.Info("query analysis",
		zap.String("query_type", string(entities.QueryType)),
		zap.Float64("confidence", entities.Confidence),
		zap.Int("context_items", len(items)),
		zap.Int("context_implementations", implementations))

	started := time.Now()
	answer, err := s.ai.Complete(ctx, query.SystemPrompt(items), conversation(req), 0)
	outcome := "ok"
	if err != nil {
		outcome = errorCode(err)
		metrics.ChatFailures.WithLabelValues(outcome).Inc()
	}
	metrics.AIRequestDuration.WithLabelValues(outcome).Observe(time.Since(started).Seconds())
	if err != nil {
		s.log.Error("chat completion failed", zap.String("error_code", outcome), zap.Error(err))
		return nil, err
	}

	return &ChatResult{
		Message:    answer,
		Context:    items,
		QueryType:  entities.QueryType,
		Confidence: entities.Confidence,
		Timestamp:  s.now().UTC(),
	}, nil
}

// Health probes the completion backend.
func (s *ChatService) Health(ctx context.Context) (bool, error) {
	if !s.Available() {
		return false, ai.ErrAINotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.ai.TestConnection(ctx)
}

// conversation keeps user and assistant turns of the history, drops leading
// assistant turns (the API requires the first turn to be the user's) and
// appends the current question.
func conversation(req ChatRequest) []ai.Message {
	out := make([]ai.Message, 0, len(req.History)+1)
	for _, m := range req.History {
		if m.Role != ai.RoleUser && m.Role != ai.RoleAssistant {
			continue
		}
		if len(out) == 0 && m.Role == ai.RoleAssistant {
			continue
		}
		out = append(out, m)
	}
	return append(out, ai.Message{Role: ai.RoleUser, Content: req.Message})
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, ai.ErrAITimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ai.ErrAINotConfigured):
		return "not_configured"
	default:
		return "request_failed"
	}
}

// ExampleGroup is a titled list of sample questions for the chat UI.
type ExampleGroup struct {
	Category string   `json:"category"`
	Queries  []string `json:"queries"`
}

// ChatExamples is served by GET /api/chat/examples.
var ChatExamples = []ExampleGroup{
	{
		Category: "Airline Features",
		Queries: []string{
			"Which airlines support dynamic pricing?",
			"Does American Airlines have seat selection?",
			"What features are available for United Airlines?",
		},
	},
	{
		Category: "Feature Comparison",
		Queries: []string{
			"Compare baggage options across all airlines",
			"Which airlines offer pet transportation?",
			"Show me all airlines with unaccompanied minor support",
		},
	},
	{
		Category: "Provider Information",
		Queries: []string{
			"List all airlines using Sabre provider",
			"What providers are used by European airlines?",
			"Compare features across Altea NDC airlines",
		},
	},
	{
		Category: "Status Queries",
		Queries: []string{
			"Which features are in pilot status?",
			"Show production-ready airlines",
			"What features are not yet implemented?",
		},
	},
}

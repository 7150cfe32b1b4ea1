package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/iliyamo/ndc-feature-tracker/internal/ai"
	"github.com/iliyamo/ndc-feature-tracker/internal/model"
	"github.com/iliyamo/ndc-feature-tracker/internal/query"
)

type stubStore struct{ err error }

func (s stubStore) ListAirlines(context.Context) ([]model.Airline, error) {
	return []model.Airline{
		{ID: 1, Name: "American Airlines", Codes: "AA", Provider: "Sabre", Status: model.AirlineProduction},
		{ID: 4, Name: "United Airlines", Codes: "UA", Provider: "Sabre", Status: model.AirlinePilot},
	}, s.err
}

func (s stubStore) ListFeatures(context.Context) ([]model.Feature, error) {
	return []model.Feature{{ID: 2, Name: "Seat selection", Category: model.CategoryShopping}}, nil
}

func (s stubStore) ListImplementations(context.Context) ([]model.Implementation, error) {
	return []model.Implementation{
		{ID: 2, AirlineID: 1, FeatureID: 2, Value: "Yes"},
		{ID: 17, AirlineID: 4, FeatureID: 2, Value: "Yes"},
	}, nil
}

type stubCompleter struct {
	enabled  bool
	answer   string
	err      error
	system   string
	messages []ai.Message
	healthy  bool
}

func (c *stubCompleter) Enabled() bool { return c.enabled }

func (c *stubCompleter) Complete(_ context.Context, system string, messages []ai.Message, _ int) (string, error) {
	c.system, c.messages = system, messages
	return c.answer, c.err
}

func (c *stubCompleter) TestConnection(context.Context) (bool, error) { return c.healthy, c.err }

func newChat(t *testing.T, store query.Store, c *stubCompleter) *ChatService {
	log := zaptest.NewLogger(t)
	s := NewChatService(query.NewAnalyzer(nil), query.NewBuilder(store, log), c, time.Second, log)
	s.now = func() time.Time { return time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC) }
	return s
}

func TestChatService_Process(t *testing.T) {
	c := &stubCompleter{enabled: true, answer: "Yes, American Airlines supports seat selection."}
	s := newChat(t, stubStore{}, c)

	res, err := s.Process(context.Background(), ChatRequest{
		Message: "Does AA have seat selection?",
		History: []ai.Message{
			{Role: ai.RoleAssistant, Content: "Welcome!"},
			{Role: ai.RoleUser, Content: "hi"},
			{Role: ai.RoleAssistant, Content: "hello"},
			{Role: "system", Content: "ignored"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, c.answer, res.Message)
	assert.Equal(t, query.AirlineFeatures, res.QueryType)
	assert.Equal(t, 0.85, res.Confidence)
	assert.Equal(t, 1, query.CountImplementations(res.Context))
	assert.Equal(t, time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC), res.Timestamp)

	require.Len(t, c.messages, 3)
	assert.Equal(t, ai.Message{Role: ai.RoleUser, Content: "hi"}, c.messages[0])
	assert.Equal(t, ai.Message{Role: ai.RoleUser, Content: "Does AA have seat selection?"}, c.messages[2])
	assert.Contains(t, c.system, "- American Airlines (AA) - Seat selection: Yes")
	assert.NotContains(t, c.system, "United Airlines (UA) - Seat selection")
	assert.True(t, strings.HasSuffix(c.system, "based on this data."))
}

func TestChatService_StoreFailureStillAnswers(t *testing.T) {
	c := &stubCompleter{enabled: true, answer: "I am not sure."}
	s := newChat(t, stubStore{err: errors.New("db down")}, c)

	res, err := s.Process(context.Background(), ChatRequest{Message: "hello"})
	require.NoError(t, err)
	assert.Zero(t, query.CountImplementations(res.Context))
	assert.NotContains(t, c.system, "IMPLEMENTATIONS:")
}

func TestChatService_Errors(t *testing.T) {
	_, err := newChat(t, stubStore{}, &stubCompleter{}).Process(context.Background(), ChatRequest{Message: "x"})
	assert.ErrorIs(t, err, ai.ErrAINotConfigured)

	_, err = newChat(t, stubStore{}, &stubCompleter{enabled: true, err: ai.ErrAITimeout}).
		Process(context.Background(), ChatRequest{Message: "x"})
	assert.ErrorIs(t, err, ai.ErrAITimeout)
}

func TestChatService_Health(t *testing.T) {
	ok, err := newChat(t, stubStore{}, &stubCompleter{enabled: true, healthy: true}).Health(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = newChat(t, stubStore{}, &stubCompleter{}).Health(context.Background())
	assert.ErrorIs(t, err, ai.ErrAINotConfigured)
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "timeout", errorCode(ai.ErrAITimeout))
	assert.Equal(t, "timeout", errorCode(context.DeadlineExceeded))
	assert.Equal(t, "request_failed", errorCode(ai.ErrAIRequestFailed))
}

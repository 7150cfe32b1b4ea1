package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/iliyamo/ndc-feature-tracker/internal/config"
)

func testConfig(url string) config.AIConfig {
	return config.AIConfig{
		APIKey:     "test-key",
		BaseURL:    url,
		Model:      "test-model",
		MaxTokens:  1000,
		MaxRetries: 2,
	}
}

func reply(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"content": []map[string]string{{"type": "text", "text": text}},
	})
}

func TestComplete_SendsMessagesRequest(t *testing.T) {
	var got messagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		reply(w, "Delta supports it.")
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL+"/"), zaptest.NewLogger(t))
	text, err := c.Complete(context.Background(), "system text", []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
		{Role: RoleUser, Content: "Does Delta have seat selection?"},
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, "Delta supports it.", text)
	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, 1000, got.MaxTokens)
	assert.Equal(t, "system text", got.System)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, RoleAssistant, got.Messages[1].Role)
	assert.Equal(t, "text", got.Messages[2].Content[0].Type)
}

func TestComplete_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		reply(w, "ok")
	}))
	defer srv.Close()

	text, err := NewClient(testConfig(srv.URL), zaptest.NewLogger(t)).
		Complete(context.Background(), "", []Message{{Role: RoleUser, Content: "x"}}, 0)
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, int32(3), calls.Load())
}

func TestComplete_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":"bad request"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewClient(testConfig(srv.URL), zaptest.NewLogger(t)).
		Complete(context.Background(), "", []Message{{Role: RoleUser, Content: "x"}}, 0)
	assert.ErrorIs(t, err, ErrAIRequestFailed)
	assert.Equal(t, int32(1), calls.Load())
}

func TestComplete_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := NewClient(testConfig(srv.URL), zaptest.NewLogger(t)).
		Complete(ctx, "", []Message{{Role: RoleUser, Content: "x"}}, 0)
	assert.ErrorIs(t, err, ErrAITimeout)
}

func TestComplete_EmptyContentFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reply(w, "   ")
	}))
	defer srv.Close()

	_, err := NewClient(testConfig(srv.URL), zaptest.NewLogger(t)).
		Complete(context.Background(), "", []Message{{Role: RoleUser, Content: "x"}}, 0)
	assert.ErrorIs(t, err, ErrAIRequestFailed)
}

func TestComplete_NotConfigured(t *testing.T) {
	_, err := NewClient(config.AIConfig{}, nil).Complete(context.Background(), "", nil, 0)
	assert.ErrorIs(t, err, ErrAINotConfigured)
}

func TestTestConnection(t *testing.T) {
	cases := []struct {
		reply string
		want  bool
	}{
		{"AI connection successful", true},
		{"AI Connection SUCCESSFUL!", true},
		{"hello", false},
	}
	for _, tc := range cases {
		t.Run(tc.reply, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var req messagesRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, 100, req.MaxTokens)
				reply(w, tc.reply)
			}))
			defer srv.Close()

			ok, err := NewClient(testConfig(srv.URL), zaptest.NewLogger(t)).TestConnection(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tc.want, ok)
		})
	}
}

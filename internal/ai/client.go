// Package ai talks to the hosted completion model through the Anthropic
// Messages API.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/ndc-feature-tracker/internal/config"
)

const apiVersion = "2023-06-01"

var (
	ErrAINotConfigured = errors.New("AI_NOT_CONFIGURED")
	ErrAITimeout       = errors.New("AI_TIMEOUT")
	ErrAIRequestFailed = errors.New("AI_REQUEST_FAILED")
)

// Role values accepted in a conversation.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of the conversation sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiMessage struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type messagesRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	System    string       `json:"system,omitempty"`
	Messages  []apiMessage `json:"messages"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

// Client calls the Messages endpoint.  The zero retry count still makes one
// attempt.
type Client struct {
	cfg  config.AIConfig
	http *http.Client
	log  *zap.Logger
}

func NewClient(cfg config.AIConfig, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{}, // deadline comes from ctx
		log:  log.With(zap.String("component", "ai")),
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool { return c.cfg.Enabled() }

// Complete sends system plus messages and returns the first non-empty text
// block of the reply.  Transport errors, 429 and 5xx responses are retried
// with exponential backoff starting at 100ms; other 4xx responses fail at
// once.
func (c *Client) Complete(ctx context.Context, system string, messages []Message, maxTokens int) (string, error) {
	if !c.cfg.Enabled() {
		return "", ErrAINotConfigured
	}
	if maxTokens <= 0 {
		maxTokens = c.cfg.MaxTokens
	}
	req := messagesRequest{
		Model:     c.cfg.Model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  make([]apiMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, apiMessage{
			Role:    m.Role,
			Content: []contentBlock{{Type: "text", Text: m.Content}},
		})
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAIRequestFailed, err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ErrAITimeout
			}
		}

		text, retry, err := c.do(ctx, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", ErrAITimeout
		}
		c.log.Warn("completion attempt failed", zap.Int("attempt", attempt+1), zap.Error(err))
		if !retry {
			break
		}
	}
	return "", fmt.Errorf("%w: %v", ErrAIRequestFailed, lastErr)
}

// do performs one attempt and reports whether a failure may be retried.
func (c *Client) do(ctx context.Context, body []byte) (string, bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.cfg.BaseURL, "/")+"/messages", bytes.NewReader(body))
	if err != nil {
		return "", false, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", strings.TrimSpace(c.cfg.APIKey))
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", true, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", true, err
	}
	if resp.StatusCode != http.StatusOK {
		retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return "", retry, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var parsed messagesResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", false, fmt.Errorf("decode response: %w", err)
	}
	for _, b := range parsed.Content {
		if strings.TrimSpace(b.Text) != "" {
			return b.Text, false, nil
		}
	}
	return "", false, errors.New("no text content in response")
}

// TestConnection asks the model for a fixed phrase and reports whether the
// reply contains "successful".
func (c *Client) TestConnection(ctx context.Context) (bool, error) {
	text, err := c.Complete(ctx, "", []Message{{
		Role:    RoleUser,
		Content: `Hello, can you confirm you can respond? Just say "AI connection successful"`,
	}}, 100)
	if err != nil {
		return false, err
	}
	return strings.Contains(strings.ToLower(text), "successful"), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

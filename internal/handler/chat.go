package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/ndc-feature-tracker/internal/ai"
	"github.com/iliyamo/ndc-feature-tracker/internal/service"
)

const notConfiguredMessage = "AI chat service is not configured. Please set ANTHROPIC_API_KEY environment variable."

var chatSchema = mustSchema(object(map[string]any{
	"message": text(1000),
	"conversationHistory": map[string]any{
		"type": "array",
		"items": object(map[string]any{
			"role":    enum(ai.RoleUser, ai.RoleAssistant),
			"content": map[string]any{"type": "string", "minLength": 1, "pattern": `\S`},
		}, "role", "content"),
	},
}, "message"), map[string]string{
	rootField:                       bodyMustBeObject,
	"message":                       "Message must be between 1 and 1000 characters",
	"conversationHistory":           "Conversation history must be an array",
	"conversationHistory.*":         "Conversation history entries must be objects",
	"conversationHistory.*.role":    `Message role must be either "user" or "assistant"`,
	"conversationHistory.*.content": "Message content is required",
})

type chatBody struct {
	Message             string       `json:"message"`
	ConversationHistory []ai.Message `json:"conversationHistory"`
}

// ChatHandler serves /api/chat.
type ChatHandler struct {
	Chat *service.ChatService
	Log  *zap.Logger
}

func NewChatHandler(chat *service.ChatService, log *zap.Logger) *ChatHandler {
	return &ChatHandler{Chat: chat, Log: log}
}

// Send handles POST /api/chat.
func (h *ChatHandler) Send(c echo.Context) error {
	var body chatBody
	if err := chatSchema.bind(c, &body); err != nil {
		msg, _ := asValidation(err)
		return validationFailed(c, msg)
	}
	if !h.Chat.Available() {
		return fail(c, http.StatusServiceUnavailable, "Service unavailable", notConfiguredMessage)
	}

	history := make([]ai.Message, 0, len(body.ConversationHistory))
	for _, m := range body.ConversationHistory {
		history = append(history, ai.Message{Role: m.Role, Content: *trimmed(&m.Content)})
	}

	res, err := h.Chat.Process(c.Request().Context(), service.ChatRequest{
		Message: *trimmed(&body.Message),
		History: history,
	})
	switch {
	case errors.Is(err, ai.ErrAINotConfigured):
		return fail(c, http.StatusServiceUnavailable, "Service unavailable", notConfiguredMessage)
	case errors.Is(err, ai.ErrAITimeout):
		return fail(c, http.StatusGatewayTimeout, "Gateway timeout", "The AI service took too long to respond. Please try again.")
	case err != nil:
		return internal(c, "Failed to process your message. Please try again.")
	}
	return respond(c, http.StatusOK, res, "Message processed successfully")
}

// Health handles GET /api/chat/health.
func (h *ChatHandler) Health(c echo.Context) error {
	if !h.Chat.Available() {
		return fail(c, http.StatusServiceUnavailable, "Service unavailable", "AI chat service is not configured")
	}
	ok, err := h.Chat.Health(c.Request().Context())
	if err != nil {
		h.Log.Warn("chat health check failed", zap.Error(err))
		return internal(c, "Failed to check AI service health")
	}
	if !ok {
		return fail(c, http.StatusServiceUnavailable, "Service unhealthy", "AI chat service is not responding correctly")
	}
	return respond(c, http.StatusOK, nil, "AI chat service is available")
}

// Examples handles GET /api/chat/examples.
func (h *ChatHandler) Examples(c echo.Context) error {
	return respond(c, http.StatusOK, service.ChatExamples, "Example queries retrieved successfully")
}

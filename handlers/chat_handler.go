package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/upb/llm-gateway/middleware"
	"github.com/upb/llm-gateway/services/gateway"
	"github.com/upb/llm-gateway/services/providers"
	"github.com/upb/llm-gateway/utils"
	"go.uber.org/zap"
)

// ChatCompletionRequest is the OpenAI-compatible request body
type ChatCompletionRequest struct {
	Model       string        `json:"model" validate:"required"`
	Messages    []ChatMessage `json:"messages" validate:"required,min=1,dive"`
	MaxTokens   *int          `json:"max_tokens,omitempty" validate:"omitempty,gt=0"`
	Temperature *float64      `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	Stream      bool          `json:"stream,omitempty"`
}

// ChatMessage represents a single chat message
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content" validate:"required"`
}

// ChatCompletionResponse is the OpenAI-compatible response body
type ChatCompletionResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   ChatUsage    `json:"usage"`
}

// ChatChoice represents a completion choice
type ChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// ChatUsage represents normalized token usage information
type ChatUsage struct {
	PromptTokens     uint `json:"prompt_tokens"`
	CompletionTokens uint `json:"completion_tokens"`
	TotalTokens      uint `json:"total_tokens"`
}

// ChatHandler handles chat completion HTTP requests
type ChatHandler struct {
	service  *gateway.Service
	validate *validator.Validate
	logger   *zap.Logger
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(service *gateway.Service, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

// HandleChatCompletion handles POST /v1/chat/completions
func (h *ChatHandler) HandleChatCompletion(w http.ResponseWriter, r *http.Request) {
	var body ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		_ = utils.WriteBadRequest(w, "invalid JSON body", nil)
		return
	}

	if err := h.validate.Struct(body); err != nil {
		_ = utils.WriteBadRequest(w, "request validation failed", map[string]interface{}{
			"validation": err.Error(),
		})
		return
	}

	messages := make([]providers.Message, len(body.Messages))
	for i, m := range body.Messages {
		messages[i] = providers.Message{Role: m.Role, Content: m.Content}
	}

	result, err := h.service.Complete(r.Context(), &gateway.CompletionRequest{
		TenantID:    middleware.GetTenantIDFromContext(r.Context()),
		Model:       body.Model,
		Messages:    messages,
		MaxTokens:   body.MaxTokens,
		Temperature: body.Temperature,
		Stream:      body.Stream,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	choices := make([]ChatChoice, len(result.Response.Choices))
	for i, c := range result.Response.Choices {
		choices[i] = ChatChoice{
			Index:        c.Index,
			Message:      ChatMessage{Role: c.Message.Role, Content: c.Message.Content},
			FinishReason: c.FinishReason,
		}
	}

	_ = utils.WriteOK(w, ChatCompletionResponse{
		ID:      result.TraceID,
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   result.Route.Model,
		Choices: choices,
		Usage: ChatUsage{
			PromptTokens:     result.Usage.PromptTokens,
			CompletionTokens: result.Usage.CompletionTokens,
			TotalTokens:      result.Usage.PromptTokens + result.Usage.CompletionTokens,
		},
	})
}

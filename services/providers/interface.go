package providers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/upb/llm-gateway/models"
)

// Dispatcher forwards a policy-approved request to a concrete backend bound
// by the selected route. Implementations live outside the core engine; the
// gateway only depends on this interface.
type Dispatcher interface {
	// Name returns the provider kind this dispatcher serves
	Name() models.ProviderKind

	// Dispatch performs the chat completion against the route's endpoint.
	// The returned response carries the provider-native usage payload
	// untouched; normalization happens in the billing service.
	Dispatch(ctx context.Context, route models.Route, req *ChatRequest) (*ChatResponse, error)
}

// ChatRequest represents a unified chat completion request
type ChatRequest struct {
	// Model is the alias the caller requested
	Model string `json:"model"`

	// Messages in the conversation
	Messages []Message `json:"messages"`

	// MaxTokens limits the response length. Nil means the tenant policy
	// ceiling applies; the policy engine clamps this before dispatch.
	MaxTokens *int `json:"max_tokens,omitempty"`

	// Temperature controls randomness (0.0 to 2.0)
	Temperature *float64 `json:"temperature,omitempty"`

	// Stream enables streaming responses
	Stream bool `json:"stream,omitempty"`
}

// Message represents a single message in a conversation
type Message struct {
	// Role can be "system", "user", or "assistant"
	Role string `json:"role"`

	// Content is the message text
	Content string `json:"content"`
}

// ChatResponse represents a unified chat completion response
type ChatResponse struct {
	// ID is the provider's identifier for this completion
	ID string `json:"id"`

	// Model used for the completion
	Model string `json:"model"`

	// Choices contains the completion results
	Choices []Choice `json:"choices"`

	// Usage is the provider-native usage payload, left in its original
	// shape. Nil when the provider omitted usage entirely.
	Usage json.RawMessage `json:"usage,omitempty"`

	// Provider that handled the request
	Provider models.ProviderKind `json:"provider"`

	// Latency of the backend call
	Latency time.Duration `json:"-"`
}

// Choice represents a completion choice
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

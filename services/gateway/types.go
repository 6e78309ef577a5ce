package gateway

import (
	"github.com/upb/llm-gateway/models"
	"github.com/upb/llm-gateway/services/billing"
	"github.com/upb/llm-gateway/services/providers"
)

// CompletionRequest is the transport-supplied request for one chat completion
type CompletionRequest struct {
	// TenantID identifies the billed tenant; empty falls back to public
	TenantID string

	// Model is the alias the caller requested
	Model string

	// Messages in the conversation
	Messages []providers.Message

	// MaxTokens is the caller's output limit, clamped by policy before dispatch
	MaxTokens *int

	// Temperature controls randomness
	Temperature *float64

	// Stream requests a streaming response from the backend
	Stream bool
}

// CompletionResult is the outcome of a completed request
type CompletionResult struct {
	// TraceID is the gateway-assigned id tying response, log lines, and
	// ledger record together
	TraceID string

	// Route that served the request
	Route models.Route

	// Response from the backend
	Response *providers.ChatResponse

	// Usage is the normalized, priced usage committed to the ledger
	Usage billing.Billed

	// LatencyMs is the wall time of the backend call
	LatencyMs int
}

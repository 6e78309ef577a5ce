package providers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/upb/llm-gateway/models"
)

// LlamaCppDispatcher forwards requests to a local llama.cpp server through
// its OpenAI-compatible endpoint. llama.cpp ignores the model field and
// serves whatever weights it was started with, so no API key is sent and the
// request model is passed through untouched for log correlation only.
type LlamaCppDispatcher struct {
	config DispatcherConfig
	client *http.Client
}

// NewLlamaCppDispatcher creates a dispatcher for llama.cpp backends
func NewLlamaCppDispatcher(config DispatcherConfig) *LlamaCppDispatcher {
	if config.Timeout == 0 {
		// local inference is slow on long prompts
		config.Timeout = 300 * time.Second
	}
	config.APIKey = ""
	return &LlamaCppDispatcher{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// Name returns the provider kind this dispatcher serves
func (d *LlamaCppDispatcher) Name() models.ProviderKind {
	return models.ProviderLlamaCpp
}

// Dispatch performs the chat completion against the route's endpoint
func (d *LlamaCppDispatcher) Dispatch(ctx context.Context, route models.Route, req *ChatRequest) (*ChatResponse, error) {
	start := time.Now()
	url := strings.TrimSuffix(route.Endpoint, "/") + "/v1/chat/completions"

	resp, err := doChatCompletion(ctx, d.client, d.config, d.Name(), url, req)
	if err != nil {
		return nil, err
	}
	resp.Latency = time.Since(start)
	return resp, nil
}

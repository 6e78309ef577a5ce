package providers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/upb/llm-gateway/models"
)

// OpenAIDispatcher forwards requests to any backend exposing the OpenAI chat
// completions API. The route's endpoint is the backend base URL.
type OpenAIDispatcher struct {
	config DispatcherConfig
	client *http.Client
}

// NewOpenAIDispatcher creates a dispatcher for OpenAI-compatible backends
func NewOpenAIDispatcher(config DispatcherConfig) *OpenAIDispatcher {
	if config.Timeout == 0 {
		config.Timeout = DefaultDispatcherConfig().Timeout
	}
	return &OpenAIDispatcher{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// Name returns the provider kind this dispatcher serves
func (d *OpenAIDispatcher) Name() models.ProviderKind {
	return models.ProviderOpenAICompatible
}

// Dispatch performs the chat completion against the route's endpoint
func (d *OpenAIDispatcher) Dispatch(ctx context.Context, route models.Route, req *ChatRequest) (*ChatResponse, error) {
	start := time.Now()
	url := strings.TrimSuffix(route.Endpoint, "/") + "/v1/chat/completions"

	resp, err := doChatCompletion(ctx, d.client, d.config, d.Name(), url, req)
	if err != nil {
		return nil, err
	}
	resp.Latency = time.Since(start)
	return resp, nil
}

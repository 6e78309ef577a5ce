package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/upb/llm-gateway/models"
)

// DispatcherConfig holds the HTTP tuning shared by the backend dispatchers
type DispatcherConfig struct {
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	Headers    map[string]string
}

// DefaultDispatcherConfig returns the default dispatcher configuration
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		Timeout:    60 * time.Second,
		MaxRetries: 2,
		RetryDelay: 500 * time.Millisecond,
	}
}

// wireResponse is the OpenAI-style chat completion body both backend kinds
// speak. Usage stays raw; the billing service owns its interpretation.
type wireResponse struct {
	ID      string          `json:"id"`
	Model   string          `json:"model"`
	Choices []Choice        `json:"choices"`
	Usage   json.RawMessage `json:"usage"`
}

// wireError is the error envelope OpenAI-style backends return
type wireError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// doChatCompletion POSTs the request to url and decodes the OpenAI-style
// response. Attempts beyond the first happen only on transport errors and
// 5xx statuses; 4xx responses are returned to the caller immediately.
func doChatCompletion(ctx context.Context, client *http.Client, cfg DispatcherConfig, kind models.ProviderKind, url string, req *ChatRequest) (*ChatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var resp *http.Response
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(cfg.RetryDelay * time.Duration(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if cfg.APIKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+cfg.APIKey)
		}
		for k, v := range cfg.Headers {
			httpReq.Header.Set(k, v)
		}

		resp, lastErr = client.Do(httpReq)
		if lastErr == nil && resp.StatusCode < 500 {
			break
		}
		// keep the body readable on the last attempt so the caller sees
		// the backend's status and error envelope
		if resp != nil && attempt < cfg.MaxRetries {
			resp.Body.Close()
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%s request failed: %w", kind, lastErr)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", kind, err)
	}

	if resp.StatusCode != http.StatusOK {
		var we wireError
		if json.Unmarshal(respBody, &we) == nil && we.Error.Message != "" {
			return nil, fmt.Errorf("%s returned status %d: %s", kind, resp.StatusCode, we.Error.Message)
		}
		return nil, fmt.Errorf("%s returned status %d", kind, resp.StatusCode)
	}

	var wire wireResponse
	if err := json.Unmarshal(respBody, &wire); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", kind, err)
	}

	return &ChatResponse{
		ID:       wire.ID,
		Model:    wire.Model,
		Choices:  wire.Choices,
		Usage:    wire.Usage,
		Provider: kind,
	}, nil
}

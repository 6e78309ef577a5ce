package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/llm-gateway/middleware"
	"github.com/upb/llm-gateway/models"
	"github.com/upb/llm-gateway/services/gateway"
	"github.com/upb/llm-gateway/services/ledger"
	"github.com/upb/llm-gateway/services/policy"
	"github.com/upb/llm-gateway/services/providers"
	"github.com/upb/llm-gateway/services/routing"
	"go.uber.org/zap"
)

type fakeDispatcher struct {
	kind  models.ProviderKind
	usage json.RawMessage
	err   error
}

func (f *fakeDispatcher) Name() models.ProviderKind {
	return f.kind
}

func (f *fakeDispatcher) Dispatch(_ context.Context, route models.Route, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &providers.ChatResponse{
		ID:    "backend-1",
		Model: route.Model,
		Choices: []providers.Choice{
			{Index: 0, Message: providers.Message{Role: "assistant", Content: "hello"}, FinishReason: "stop"},
		},
		Usage:    f.usage,
		Provider: f.kind,
	}, nil
}

type testStack struct {
	handler *ChatHandler
	ledger  *ledger.Service
}

func newTestStack(t *testing.T, dispatcher providers.Dispatcher) *testStack {
	t.Helper()
	logger := zap.NewNop()

	table := routing.NewTable([]models.Route{
		{Model: "chat-default", Provider: models.ProviderOpenAICompatible, Endpoint: "http://backend-a:8080", Weight: 1, CostPer1kInput: 1.0, CostPer1kOutput: 5.0},
	}, logger)

	store := policy.NewStore(map[string]models.TenantPolicy{
		models.PublicTenant: {AllowModels: []string{"chat-default"}, MaxRequestUSD: 10.0, MaxOutputTokens: 1000},
		"restricted":        {AllowModels: []string{"chat-large"}, MaxRequestUSD: 10.0, MaxOutputTokens: 1000},
	}, logger)

	ledgerSvc := ledger.NewService(ledger.DefaultConfig(), logger)
	policySvc := policy.NewService(store, policy.Config{}, ledgerSvc, logger)

	registry := providers.NewRegistry()
	if dispatcher != nil {
		require.NoError(t, registry.Register(dispatcher))
	}

	svc := gateway.NewService(table, policySvc, registry, ledgerSvc, nil, logger)
	return &testStack{
		handler: NewChatHandler(svc, logger),
		ledger:  ledgerSvc,
	}
}

func doChat(t *testing.T, stack *testStack, tenantID string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", bytes.NewBufferString(body))
	if tenantID != "" {
		req = req.WithContext(middleware.WithTenantID(req.Context(), tenantID))
	}
	w := httptest.NewRecorder()
	stack.handler.HandleChatCompletion(w, req)
	return w
}

func TestHandleChatCompletion_Success(t *testing.T) {
	stack := newTestStack(t, &fakeDispatcher{
		kind:  models.ProviderOpenAICompatible,
		usage: json.RawMessage(`{"prompt_tokens":100,"completion_tokens":50}`),
	})

	w := doChat(t, stack, "team-a", `{"model":"chat-default","messages":[{"role":"user","content":"hi"}]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ChatCompletionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "chat.completion", resp.Object)
	assert.Equal(t, "chat-default", resp.Model)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "hello", resp.Choices[0].Message.Content)
	assert.Equal(t, uint(100), resp.Usage.PromptTokens)
	assert.Equal(t, uint(50), resp.Usage.CompletionTokens)
	assert.Equal(t, uint(150), resp.Usage.TotalTokens)

	summary, ok := stack.ledger.Summary("team-a")
	require.True(t, ok)
	assert.InDelta(t, 0.35, summary.SpendUSD, 1e-9)
}

func TestHandleChatCompletion_InvalidJSON(t *testing.T) {
	stack := newTestStack(t, &fakeDispatcher{kind: models.ProviderOpenAICompatible})

	w := doChat(t, stack, "team-a", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleChatCompletion_ValidationFailure(t *testing.T) {
	stack := newTestStack(t, &fakeDispatcher{kind: models.ProviderOpenAICompatible})

	tests := []struct {
		name string
		body string
	}{
		{"missing model", `{"messages":[{"role":"user","content":"hi"}]}`},
		{"empty messages", `{"model":"chat-default","messages":[]}`},
		{"bad role", `{"model":"chat-default","messages":[{"role":"robot","content":"hi"}]}`},
		{"negative max_tokens", `{"model":"chat-default","messages":[{"role":"user","content":"hi"}],"max_tokens":-5}`},
		{"temperature out of range", `{"model":"chat-default","messages":[{"role":"user","content":"hi"}],"temperature":3.5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doChat(t, stack, "team-a", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandleChatCompletion_UnknownAlias(t *testing.T) {
	stack := newTestStack(t, &fakeDispatcher{kind: models.ProviderOpenAICompatible})

	w := doChat(t, stack, "team-a", `{"model":"no-such-model","messages":[{"role":"user","content":"hi"}]}`)
	require.Equal(t, http.StatusNotFound, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "route_not_found", resp["error"])
}

func TestHandleChatCompletion_ModelNotAllowed(t *testing.T) {
	stack := newTestStack(t, &fakeDispatcher{kind: models.ProviderOpenAICompatible})

	w := doChat(t, stack, "restricted", `{"model":"chat-default","messages":[{"role":"user","content":"hi"}]}`)
	require.Equal(t, http.StatusForbidden, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "model_not_allowed", resp["error"])
}

func TestHandleChatCompletion_DispatchFailure(t *testing.T) {
	stack := newTestStack(t, &fakeDispatcher{
		kind: models.ProviderOpenAICompatible,
		err:  assert.AnError,
	})

	w := doChat(t, stack, "team-a", `{"model":"chat-default","messages":[{"role":"user","content":"hi"}]}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	_, ok := stack.ledger.Summary("team-a")
	assert.False(t, ok, "a failed dispatch must not leave a ledger entry")
}

func TestHandleChatCompletion_MissingDispatcher(t *testing.T) {
	stack := newTestStack(t, nil)

	w := doChat(t, stack, "team-a", `{"model":"chat-default","messages":[{"role":"user","content":"hi"}]}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestHandleChatCompletion_NoTenantContextBillsPublic(t *testing.T) {
	stack := newTestStack(t, &fakeDispatcher{
		kind:  models.ProviderOpenAICompatible,
		usage: json.RawMessage(`{"prompt_tokens":10,"completion_tokens":10}`),
	})

	w := doChat(t, stack, "", `{"model":"chat-default","messages":[{"role":"user","content":"hi"}]}`)
	require.Equal(t, http.StatusOK, w.Code)

	_, ok := stack.ledger.Summary(models.PublicTenant)
	assert.True(t, ok)
}

package billing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/upb/llm-gateway/models"
)

var pricedRoute = models.Route{
	Model:           "chat-default",
	Provider:        models.ProviderOpenAICompatible,
	Endpoint:        "http://vllm:8000/v1",
	CostPer1kInput:  1.0,
	CostPer1kOutput: 5.0,
}

func TestNormalize_Shapes(t *testing.T) {
	tests := []struct {
		name           string
		raw            string
		wantPrompt     uint
		wantCompletion uint
	}{
		{"openai shape", `{"prompt_tokens":100,"completion_tokens":50}`, 100, 50},
		{"anthropic shape", `{"input_tokens":100,"output_tokens":50}`, 100, 50},
		{"openai with total", `{"prompt_tokens":10,"completion_tokens":20,"total_tokens":30}`, 10, 20},
		{"prompt only", `{"prompt_tokens":42}`, 42, 0},
		{"output only", `{"output_tokens":7}`, 0, 7},
		{"null payload", `null`, 0, 0},
		{"empty object", `{}`, 0, 0},
		{"garbage", `not-json`, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt, completion := Normalize(json.RawMessage(tt.raw))
			assert.Equal(t, tt.wantPrompt, prompt)
			assert.Equal(t, tt.wantCompletion, completion)
		})
	}
}

func TestNormalize_NilPayload(t *testing.T) {
	prompt, completion := Normalize(nil)
	assert.Zero(t, prompt)
	assert.Zero(t, completion)
}

func TestBill_SameCostAcrossShapes(t *testing.T) {
	openai := Bill(pricedRoute, json.RawMessage(`{"prompt_tokens":100,"completion_tokens":50}`))
	anthropic := Bill(pricedRoute, json.RawMessage(`{"input_tokens":100,"output_tokens":50}`))

	assert.Equal(t, openai, anthropic)
	assert.Equal(t, uint(100), openai.PromptTokens)
	assert.Equal(t, uint(50), openai.CompletionTokens)
	// 100/1000*1.0 + 50/1000*5.0
	assert.InDelta(t, 0.35, openai.CostUSD, 1e-12)
}

func TestBill_AbsentUsageIsZeroCost(t *testing.T) {
	billed := Bill(pricedRoute, nil)

	assert.Zero(t, billed.PromptTokens)
	assert.Zero(t, billed.CompletionTokens)
	assert.Zero(t, billed.CostUSD)
}

func TestBill_FreeRoute(t *testing.T) {
	free := models.Route{Model: "local", Provider: models.ProviderLlamaCpp, Endpoint: "http://llama:8080"}

	billed := Bill(free, json.RawMessage(`{"prompt_tokens":1000,"completion_tokens":1000}`))

	assert.Equal(t, uint(1000), billed.PromptTokens)
	assert.Zero(t, billed.CostUSD)
}

func TestBill_NoDriftOverManyAdditions(t *testing.T) {
	// Repeated small costs summed at full precision should match the
	// closed-form total within float64 tolerance.
	raw := json.RawMessage(`{"prompt_tokens":100,"completion_tokens":50}`)
	var sum float64
	for i := 0; i < 10000; i++ {
		sum += Bill(pricedRoute, raw).CostUSD
	}
	assert.InDelta(t, 3500.0, sum, 1e-6)
}

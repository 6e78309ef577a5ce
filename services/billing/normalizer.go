package billing

import (
	"encoding/json"

	"github.com/upb/llm-gateway/models"
)

// Billed is the canonical usage for one completed request
type Billed struct {
	PromptTokens     uint    `json:"prompt_tokens"`
	CompletionTokens uint    `json:"completion_tokens"`
	CostUSD          float64 `json:"cost_usd"`
}

// usageShape covers the provider usage variants we accept. OpenAI-style
// backends report prompt_tokens/completion_tokens; Anthropic-style report
// input_tokens/output_tokens. Exactly one pair is populated per payload.
type usageShape struct {
	PromptTokens     *uint `json:"prompt_tokens"`
	CompletionTokens *uint `json:"completion_tokens"`
	InputTokens      *uint `json:"input_tokens"`
	OutputTokens     *uint `json:"output_tokens"`
}

// Normalize decodes a provider-native usage payload into a canonical
// {prompt, completion} pair. A nil, empty, or undecodable payload normalizes
// to zero usage rather than failing: billing degrades to zero-cost instead of
// blocking the response path.
func Normalize(raw json.RawMessage) (prompt, completion uint) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, 0
	}

	var u usageShape
	if err := json.Unmarshal(raw, &u); err != nil {
		return 0, 0
	}

	switch {
	case u.PromptTokens != nil || u.CompletionTokens != nil:
		if u.PromptTokens != nil {
			prompt = *u.PromptTokens
		}
		if u.CompletionTokens != nil {
			completion = *u.CompletionTokens
		}
	case u.InputTokens != nil || u.OutputTokens != nil:
		if u.InputTokens != nil {
			prompt = *u.InputTokens
		}
		if u.OutputTokens != nil {
			completion = *u.OutputTokens
		}
	}
	return prompt, completion
}

// Bill normalizes the raw usage payload and prices it against the route.
// Cost is kept at full float64 precision; rounding happens only at summary
// read time, so repeated small additions into a ledger do not drift.
func Bill(route models.Route, raw json.RawMessage) Billed {
	prompt, completion := Normalize(raw)
	cost := float64(prompt)/1000*route.CostPer1kInput + float64(completion)/1000*route.CostPer1kOutput
	return Billed{
		PromptTokens:     prompt,
		CompletionTokens: completion,
		CostUSD:          cost,
	}
}

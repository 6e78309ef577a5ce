package models

import (
	"math"
	"time"
)

// UsageRecord is the immutable per-request billing record appended to exactly
// one tenant's ring buffer after the provider response completes.
type UsageRecord struct {
	Timestamp        time.Time `json:"timestamp"`
	TraceID          string    `json:"trace_id"`
	Model            string    `json:"model"`
	PromptTokens     uint      `json:"prompt_tokens"`
	CompletionTokens uint      `json:"completion_tokens"`
	CostUSD          float64   `json:"cost_usd"`
}

// TenantSummary is the read-side view of a tenant ledger. SpendUSD is rounded
// to 4 decimal places at read time only; the ledger itself accumulates at
// full float64 precision.
type TenantSummary struct {
	TenantID  string  `json:"tenant_id"`
	BudgetUSD float64 `json:"budget_usd"`
	SpendUSD  float64 `json:"spend_usd"`
	TokensIn  uint64  `json:"tokens_in"`
	TokensOut uint64  `json:"tokens_out"`
	RingSize  int     `json:"ring_size"`
}

// RoundUSD rounds a dollar amount to 4 decimal places for summary reporting.
func RoundUSD(v float64) float64 {
	return math.Round(v*10000) / 10000
}

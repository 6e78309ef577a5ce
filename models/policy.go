package models

// PublicTenant is the distinguished tenant id whose policy applies to any
// request whose tenant id has no policy of its own.
const PublicTenant = "public"

// TenantPolicy holds the per-tenant admission rules: which model aliases the
// tenant may call, the per-request cost ceiling, and the hard output token
// ceiling. Policies are immutable during a request; hot reload swaps the
// whole policy snapshot.
type TenantPolicy struct {
	AllowModels     []string `json:"allow_models" yaml:"allow_models"`
	MaxRequestUSD   float64  `json:"max_request_usd" yaml:"max_request_usd"`
	MaxOutputTokens int      `json:"max_output_tokens" yaml:"max_output_tokens"`
}

// Allows reports whether the policy permits the given model alias.
func (p TenantPolicy) Allows(model string) bool {
	for _, m := range p.AllowModels {
		if m == model {
			return true
		}
	}
	return false
}

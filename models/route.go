package models

// ProviderKind identifies the backend protocol a route speaks
type ProviderKind string

const (
	// ProviderOpenAICompatible is any backend exposing the OpenAI chat API
	ProviderOpenAICompatible ProviderKind = "openai_compatible"

	// ProviderLlamaCpp is a local llama.cpp inference server
	ProviderLlamaCpp ProviderKind = "llamacpp"
)

// Route binds a model alias to a concrete backend with pricing and a
// load-balancing weight. Routes are immutable once loaded; several routes may
// share the same Model alias to fan out across backends.
type Route struct {
	Model           string       `json:"model" yaml:"model"`
	Provider        ProviderKind `json:"provider" yaml:"provider"`
	Endpoint        string       `json:"endpoint" yaml:"endpoint"`
	Weight          uint         `json:"weight" yaml:"weight"`
	CostPer1kInput  float64      `json:"cost_per_1k_input" yaml:"cost_per_1k_input"`
	CostPer1kOutput float64      `json:"cost_per_1k_output" yaml:"cost_per_1k_output"`
}

// EffectiveWeight returns the route weight, treating an unset weight as 1 so
// a zero-weight route can never starve selection entirely.
func (r Route) EffectiveWeight() uint {
	if r.Weight == 0 {
		return 1
	}
	return r.Weight
}

package policy

import (
	"github.com/upb/llm-gateway/models"
	"github.com/upb/llm-gateway/services"
	"github.com/upb/llm-gateway/services/providers"
	"go.uber.org/zap"
)

// inputEstimateFactor is the fixed proxy for prompt size in the pre-flight
// cost estimate. The gateway does not tokenize the prompt before dispatch;
// this nominal ~2-token-equivalent baseline stands in for the input-side
// cost, so the estimate can under- or over-shoot for unusual prompts. The
// output side of the estimate uses the clamped token ceiling and dominates
// in practice.
const inputEstimateFactor = 0.002

// BudgetChecker reports whether a tenant's cumulative spend exceeds its
// budget. Implemented by the ledger service; only consulted when cumulative
// gating is enabled.
type BudgetChecker interface {
	IsOverBudget(tenantID string) bool
}

// Config holds configuration for the policy service
type Config struct {
	// EnforceCumulativeBudget additionally rejects requests from tenants
	// whose ledger is already over budget. Off by default: the per-request
	// cost cap is the reference enforcement point and cumulative spend is
	// advisory reporting.
	EnforceCumulativeBudget bool
}

// Service enforces per-tenant admission rules before dispatch
type Service struct {
	store  *Store
	config Config
	budget BudgetChecker
	logger *zap.Logger
}

// NewService creates a new policy service. budget may be nil when cumulative
// gating is disabled.
func NewService(store *Store, config Config, budget BudgetChecker, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		config: config,
		budget: budget,
		logger: logger,
	}
}

// Enforce applies the tenant's policy to the request ahead of dispatch.
// Checks run in order: allow-list, token clamp, pre-flight cost cap, then
// the optional cumulative budget gate. The first failing check
// short-circuits; in particular the clamp is never applied when the
// allow-list already rejected. The clamp mutates req.MaxTokens and is a hard
// ceiling visible to the backend call.
func (s *Service) Enforce(route models.Route, tenantID string, req *providers.ChatRequest) error {
	policy, _ := s.store.Resolve(tenantID)

	if !policy.Allows(route.Model) {
		s.logger.Warn("model not allowed",
			zap.String("tenant_id", tenantID),
			zap.String("model", route.Model))
		return services.ErrModelNotAllowed.
			WithDetail("tenant_id", tenantID).
			WithDetail("model", route.Model)
	}

	clamped := policy.MaxOutputTokens
	if req.MaxTokens != nil && *req.MaxTokens < clamped {
		clamped = *req.MaxTokens
	}
	req.MaxTokens = &clamped

	estUSD := route.CostPer1kInput*inputEstimateFactor +
		route.CostPer1kOutput*(float64(clamped)/1000)
	if estUSD > policy.MaxRequestUSD {
		s.logger.Warn("cost cap exceeded",
			zap.String("tenant_id", tenantID),
			zap.String("model", route.Model),
			zap.Float64("estimated_usd", estUSD),
			zap.Float64("max_request_usd", policy.MaxRequestUSD))
		return services.ErrCostCapExceeded.
			WithDetail("estimated_usd", estUSD).
			WithDetail("max_request_usd", policy.MaxRequestUSD)
	}

	if s.config.EnforceCumulativeBudget && s.budget != nil && s.budget.IsOverBudget(tenantID) {
		s.logger.Warn("cumulative budget exhausted",
			zap.String("tenant_id", tenantID))
		return services.ErrBudgetExhausted.WithDetail("tenant_id", tenantID)
	}

	return nil
}

package gateway

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/upb/llm-gateway/models"
	"github.com/upb/llm-gateway/services"
	"github.com/upb/llm-gateway/services/billing"
	"github.com/upb/llm-gateway/services/ledger"
	"github.com/upb/llm-gateway/services/policy"
	"github.com/upb/llm-gateway/services/providers"
	"github.com/upb/llm-gateway/services/routing"
	"go.uber.org/zap"
)

// UsageExporter receives committed usage records without blocking the
// request path. Implemented by the export pump; nil disables export.
type UsageExporter interface {
	Enqueue(tenantID string, rec models.UsageRecord)
}

// Service orchestrates one request through the engine: resolve the alias to
// a route, enforce the tenant policy, dispatch, normalize the reported
// usage, and commit it to the tenant ledger.
type Service struct {
	table    *routing.Table
	policies *policy.Service
	registry *providers.Registry
	ledger   *ledger.Service
	exporter UsageExporter
	logger   *zap.Logger
}

// NewService creates a new gateway service. exporter may be nil.
func NewService(
	table *routing.Table,
	policies *policy.Service,
	registry *providers.Registry,
	ledgerSvc *ledger.Service,
	exporter UsageExporter,
	logger *zap.Logger,
) *Service {
	return &Service{
		table:    table,
		policies: policies,
		registry: registry,
		ledger:   ledgerSvc,
		exporter: exporter,
		logger:   logger,
	}
}

// Complete processes one chat completion request end to end. Policy checks
// are fail-closed: a rejected request is never dispatched and never billed.
// Usage normalization is fail-open: a successful response with absent usage
// bills zero rather than failing. A dispatch error aborts before billing, so
// aborted calls leave no ledger trace.
func (s *Service) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResult, error) {
	if len(req.Messages) == 0 {
		return nil, services.ErrEmptyPrompt
	}

	tenantID := req.TenantID
	if tenantID == "" {
		tenantID = models.PublicTenant
	}
	traceID := uuid.NewString()

	route, err := routing.PickRoute(req.Model, s.table.RoutesFor(req.Model))
	if err != nil {
		s.logger.Warn("no route for alias",
			zap.String("trace_id", traceID),
			zap.String("tenant_id", tenantID),
			zap.String("alias", req.Model))
		return nil, err
	}

	chatReq := &providers.ChatRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Stream:      req.Stream,
	}

	if err := s.policies.Enforce(route, tenantID, chatReq); err != nil {
		return nil, err
	}

	dispatcher, err := s.registry.Get(route.Provider)
	if err != nil {
		s.logger.Error("no dispatcher for provider",
			zap.String("trace_id", traceID),
			zap.String("provider", string(route.Provider)))
		return nil, services.WrapExternal("no dispatcher registered for provider", err)
	}

	start := time.Now()
	resp, err := dispatcher.Dispatch(ctx, route, chatReq)
	latency := time.Since(start)
	if err != nil {
		s.logger.Error("backend dispatch failed",
			zap.String("trace_id", traceID),
			zap.String("tenant_id", tenantID),
			zap.String("endpoint", route.Endpoint),
			zap.Error(err))
		return nil, services.WrapExternal("backend dispatch failed", err)
	}

	billed := billing.Bill(route, resp.Usage)
	rec := models.UsageRecord{
		Timestamp:        time.Now(),
		TraceID:          traceID,
		Model:            route.Model,
		PromptTokens:     billed.PromptTokens,
		CompletionTokens: billed.CompletionTokens,
		CostUSD:          billed.CostUSD,
	}
	s.ledger.Record(tenantID, rec)
	if s.exporter != nil {
		s.exporter.Enqueue(tenantID, rec)
	}

	s.logger.Info("completion served",
		zap.String("trace_id", traceID),
		zap.String("tenant_id", tenantID),
		zap.String("model", route.Model),
		zap.String("endpoint", route.Endpoint),
		zap.Uint("prompt_tokens", billed.PromptTokens),
		zap.Uint("completion_tokens", billed.CompletionTokens),
		zap.Float64("cost_usd", billed.CostUSD),
		zap.Duration("latency", latency))

	return &CompletionResult{
		TraceID:   traceID,
		Route:     route,
		Response:  resp,
		Usage:     billed,
		LatencyMs: int(latency.Milliseconds()),
	}, nil
}

// Ledger exposes the ledger service for the reporting surface
func (s *Service) Ledger() *ledger.Service {
	return s.ledger
}

// Routes exposes the current route table snapshot
func (s *Service) Routes() []models.Route {
	return s.table.All()
}

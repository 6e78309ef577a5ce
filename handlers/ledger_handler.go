package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/upb/llm-gateway/models"
	"github.com/upb/llm-gateway/services/ledger"
	"github.com/upb/llm-gateway/utils"
	"go.uber.org/zap"
)

// TenantSummaryResponse is the read-side view of one tenant ledger. Spend is
// serialized with exactly 4 decimal digits.
type TenantSummaryResponse struct {
	TenantID   string `json:"tenant_id"`
	BudgetUSD  string `json:"budget_usd"`
	SpendUSD   string `json:"spend_usd"`
	TokensIn   uint64 `json:"tokens_in"`
	TokensOut  uint64 `json:"tokens_out"`
	RingSize   int    `json:"ring_size"`
	OverBudget bool   `json:"over_budget"`
}

// LedgerHandler serves the operational reporting surface
type LedgerHandler struct {
	ledger *ledger.Service
	logger *zap.Logger
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledgerSvc *ledger.Service, logger *zap.Logger) *LedgerHandler {
	return &LedgerHandler{
		ledger: ledgerSvc,
		logger: logger,
	}
}

func summaryResponse(s models.TenantSummary, overBudget bool) TenantSummaryResponse {
	return TenantSummaryResponse{
		TenantID:   s.TenantID,
		BudgetUSD:  fmt.Sprintf("%.4f", s.BudgetUSD),
		SpendUSD:   fmt.Sprintf("%.4f", s.SpendUSD),
		TokensIn:   s.TokensIn,
		TokensOut:  s.TokensOut,
		RingSize:   s.RingSize,
		OverBudget: overBudget,
	}
}

// HandleListTenants handles GET /v1/tenants
func (h *LedgerHandler) HandleListTenants(w http.ResponseWriter, r *http.Request) {
	summaries := h.ledger.AllSummaries()
	out := make([]TenantSummaryResponse, len(summaries))
	for i, s := range summaries {
		out[i] = summaryResponse(s, h.ledger.IsOverBudget(s.TenantID))
	}
	_ = utils.WriteOK(w, out)
}

// HandleGetTenant handles GET /v1/tenants/{tenantID}
func (h *LedgerHandler) HandleGetTenant(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	summary, ok := h.ledger.Summary(tenantID)
	if !ok {
		_ = utils.WriteNotFound(w, "tenant has no recorded usage")
		return
	}
	_ = utils.WriteOK(w, summaryResponse(summary, h.ledger.IsOverBudget(tenantID)))
}

// HandleGetTenantRecords handles GET /v1/tenants/{tenantID}/records
func (h *LedgerHandler) HandleGetTenantRecords(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	records := h.ledger.Records(tenantID)
	if records == nil {
		records = []models.UsageRecord{}
	}
	_ = utils.WriteOK(w, records)
}

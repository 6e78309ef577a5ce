package handlers

import (
	"net/http"

	"github.com/upb/llm-gateway/services/routing"
	"github.com/upb/llm-gateway/utils"
)

// HealthHandler serves the liveness and readiness probes
type HealthHandler struct {
	table *routing.Table
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(table *routing.Table) *HealthHandler {
	return &HealthHandler{table: table}
}

// HandleHealthz handles GET /healthz
func (h *HealthHandler) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, map[string]string{"status": "ok"})
}

// HandleReadyz handles GET /readyz. The gateway is ready once at least one
// route is loaded; an empty table can only reject traffic.
func (h *HealthHandler) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	if len(h.table.All()) == 0 {
		_ = utils.WriteError(w, http.StatusServiceUnavailable, "not_ready", "route table is empty", nil)
		return
	}
	_ = utils.WriteOK(w, map[string]string{"status": "ready"})
}

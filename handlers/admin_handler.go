package handlers

import (
	"net/http"

	"github.com/upb/llm-gateway/services/policy"
	"github.com/upb/llm-gateway/services/routing"
	"github.com/upb/llm-gateway/utils"
	"go.uber.org/zap"
)

// RouteResponse is the public view of one route table entry
type RouteResponse struct {
	Model           string  `json:"model"`
	Provider        string  `json:"provider"`
	Endpoint        string  `json:"endpoint"`
	Weight          uint    `json:"weight"`
	CostPer1kInput  float64 `json:"cost_per_1k_input"`
	CostPer1kOutput float64 `json:"cost_per_1k_output"`
}

// ReloadResponse reports the outcome of a configuration reload
type ReloadResponse struct {
	Routes  int `json:"routes"`
	Tenants int `json:"tenants"`
}

// AdminHandler exposes the route table and the configuration reload endpoint
type AdminHandler struct {
	table        *routing.Table
	policies     *policy.Store
	routesFile   string
	policiesFile string
	logger       *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(table *routing.Table, policies *policy.Store, routesFile, policiesFile string, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		table:        table,
		policies:     policies,
		routesFile:   routesFile,
		policiesFile: policiesFile,
		logger:       logger,
	}
}

// HandleListRoutes handles GET /v1/routes
func (h *AdminHandler) HandleListRoutes(w http.ResponseWriter, r *http.Request) {
	routes := h.table.All()
	out := make([]RouteResponse, len(routes))
	for i, rt := range routes {
		out[i] = RouteResponse{
			Model:           rt.Model,
			Provider:        string(rt.Provider),
			Endpoint:        rt.Endpoint,
			Weight:          rt.Weight,
			CostPer1kInput:  rt.CostPer1kInput,
			CostPer1kOutput: rt.CostPer1kOutput,
		}
	}
	_ = utils.WriteOK(w, out)
}

// HandleReload handles POST /v1/admin/reload. Route and policy files are
// re-read from disk; on any error the running snapshots stay in place and
// the request fails without partial application.
func (h *AdminHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	routes, err := routing.LoadFile(h.routesFile)
	if err != nil {
		h.logger.Error("route reload rejected", zap.String("file", h.routesFile), zap.Error(err))
		_ = utils.WriteBadRequest(w, "route file rejected: "+err.Error(), nil)
		return
	}

	tenants, err := policy.LoadFile(h.policiesFile)
	if err != nil {
		h.logger.Error("policy reload rejected", zap.String("file", h.policiesFile), zap.Error(err))
		_ = utils.WriteBadRequest(w, "policy file rejected: "+err.Error(), nil)
		return
	}

	h.table.Replace(routes)
	h.policies.Replace(tenants)

	h.logger.Info("configuration reloaded",
		zap.Int("routes", len(routes)),
		zap.Int("tenants", len(tenants)))

	_ = utils.WriteOK(w, ReloadResponse{
		Routes:  len(routes),
		Tenants: len(tenants),
	})
}

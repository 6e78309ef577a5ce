package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/llm-gateway/app"
	"github.com/upb/llm-gateway/middleware"
	"github.com/upb/llm-gateway/utils"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(deps.Config.Server.WriteTimeout))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.TenantHeader},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check endpoints
	r.Get("/healthz", deps.HealthHandler.HandleHealthz)
	r.Get("/readyz", deps.HealthHandler.HandleReadyz)

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.ExtractTenant)

		r.Post("/chat/completions", deps.ChatHandler.HandleChatCompletion)

		r.Get("/routes", deps.AdminHandler.HandleListRoutes)
		r.Post("/admin/reload", deps.AdminHandler.HandleReload)

		r.Get("/tenants", deps.LedgerHandler.HandleListTenants)
		r.Get("/tenants/{tenantID}", deps.LedgerHandler.HandleGetTenant)
		r.Get("/tenants/{tenantID}/records", deps.LedgerHandler.HandleGetTenantRecords)
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})

	return r
}

// NewServer builds the HTTP server around the configured routes
func NewServer(deps *app.Dependencies) *http.Server {
	return &http.Server{
		Addr:              deps.Config.Server.Address(),
		Handler:           SetupRoutes(deps),
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/upb/llm-gateway/config"
	"github.com/upb/llm-gateway/handlers"
	"github.com/upb/llm-gateway/services/export"
	"github.com/upb/llm-gateway/services/gateway"
	"github.com/upb/llm-gateway/services/ledger"
	"github.com/upb/llm-gateway/services/policy"
	"github.com/upb/llm-gateway/services/providers"
	"github.com/upb/llm-gateway/services/routing"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	Logger *zap.Logger

	// Core engine
	Table    *routing.Table
	Policies *policy.Store
	Ledger   *ledger.Service
	Registry *providers.Registry
	Gateway  *gateway.Service

	// Usage export (nil when no DATABASE_URL is configured)
	sink export.UsageSink
	pump *export.Pump

	// HTTP handlers
	ChatHandler   *handlers.ChatHandler
	LedgerHandler *handlers.LedgerHandler
	AdminHandler  *handlers.AdminHandler
	HealthHandler *handlers.HealthHandler
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initEngine(cfg); err != nil {
		return nil, err
	}
	deps.initDispatchers(cfg)
	if err := deps.initExport(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize usage export: %w", err)
	}
	deps.initGateway(cfg)
	deps.initHandlers(cfg)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initEngine loads the route table and tenant policies from disk and creates
// the ledger
func (d *Dependencies) initEngine(cfg *config.Config) error {
	routes, err := routing.LoadFile(cfg.Gateway.RoutesFile)
	if err != nil {
		return fmt.Errorf("failed to load routes: %w", err)
	}
	d.Table = routing.NewTable(routes, d.Logger)

	policies, err := policy.LoadFile(cfg.Gateway.PoliciesFile)
	if err != nil {
		return fmt.Errorf("failed to load policies: %w", err)
	}
	d.Policies = policy.NewStore(policies, d.Logger)

	d.Ledger = ledger.NewService(ledger.Config{
		DefaultBudgetUSD: cfg.Gateway.DefaultBudgetUSD,
		RingCapacity:     cfg.Gateway.RingCapacity,
	}, d.Logger)

	d.Logger.Info("engine initialized",
		zap.Int("routes", len(routes)),
		zap.Int("tenants", len(policies)))
	return nil
}

// initDispatchers registers one dispatcher per provider kind
func (d *Dependencies) initDispatchers(cfg *config.Config) {
	d.Registry = providers.NewRegistry()

	_ = d.Registry.Register(providers.NewOpenAIDispatcher(providers.DispatcherConfig{
		APIKey:     cfg.Backends.OpenAI.APIKey,
		Timeout:    cfg.Backends.OpenAI.Timeout,
		MaxRetries: cfg.Backends.OpenAI.MaxRetries,
		RetryDelay: cfg.Backends.OpenAI.RetryDelay,
	}))
	_ = d.Registry.Register(providers.NewLlamaCppDispatcher(providers.DispatcherConfig{
		Timeout:    cfg.Backends.LlamaCpp.Timeout,
		MaxRetries: cfg.Backends.LlamaCpp.MaxRetries,
		RetryDelay: cfg.Backends.LlamaCpp.RetryDelay,
	}))

	d.Logger.Info("dispatchers registered", zap.Int("count", d.Registry.Count()))
}

// initExport connects the PostgreSQL sink and starts the async pump when
// DATABASE_URL is configured
func (d *Dependencies) initExport(ctx context.Context, cfg *config.Config) error {
	if cfg.Export == nil {
		d.Logger.Info("usage export disabled")
		return nil
	}

	sink, err := export.NewPostgresSink(ctx, cfg.Export.ConnectionString, d.Logger)
	if err != nil {
		return err
	}
	if err := sink.InitSchema(ctx); err != nil {
		_ = sink.Close()
		return err
	}

	pump := export.NewPump(sink, d.Logger, export.Config{
		BufferSize:  cfg.Export.BufferSize,
		WorkerCount: cfg.Export.WorkerCount,
	})
	if err := pump.Start(); err != nil {
		_ = sink.Close()
		return err
	}

	d.sink = sink
	d.pump = pump
	d.Logger.Info("usage export enabled", zap.String("connection", cfg.Export.LogString()))
	return nil
}

// initGateway assembles the request orchestrator
func (d *Dependencies) initGateway(cfg *config.Config) {
	policySvc := policy.NewService(d.Policies, policy.Config{
		EnforceCumulativeBudget: cfg.Gateway.EnforceCumulativeBudget,
	}, d.Ledger, d.Logger)

	var exporter gateway.UsageExporter
	if d.pump != nil {
		exporter = d.pump
	}
	d.Gateway = gateway.NewService(d.Table, policySvc, d.Registry, d.Ledger, exporter, d.Logger)
}

// initHandlers creates the HTTP handler layer
func (d *Dependencies) initHandlers(cfg *config.Config) {
	d.ChatHandler = handlers.NewChatHandler(d.Gateway, d.Logger)
	d.LedgerHandler = handlers.NewLedgerHandler(d.Ledger, d.Logger)
	d.AdminHandler = handlers.NewAdminHandler(d.Table, d.Policies,
		cfg.Gateway.RoutesFile, cfg.Gateway.PoliciesFile, d.Logger)
	d.HealthHandler = handlers.NewHealthHandler(d.Table)
}

// Shutdown drains the export pump and closes the sink. A drained pump closes
// the sink itself; the direct close covers the timeout path.
func (d *Dependencies) Shutdown(timeout time.Duration) {
	if d.pump != nil {
		if err := d.pump.Stop(timeout); err != nil {
			d.Logger.Warn("export pump did not drain in time", zap.Error(err))
			_ = d.sink.Close()
		}
		return
	}
	if d.sink != nil {
		_ = d.sink.Close()
	}
}

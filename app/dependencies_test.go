package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/llm-gateway/config"
	"github.com/upb/llm-gateway/models"
	"go.uber.org/zap/zaptest"
)

const testRoutesYAML = `routes:
  - model: chat-default
    provider: openai_compatible
    endpoint: http://backend-a:8080
    weight: 1
    cost_per_1k_input: 1.0
    cost_per_1k_output: 5.0
`

const testPoliciesYAML = `tenants:
  public:
    allow_models: [chat-default]
    max_request_usd: 10.0
    max_output_tokens: 1000
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	routesFile := filepath.Join(dir, "routes.yaml")
	require.NoError(t, os.WriteFile(routesFile, []byte(testRoutesYAML), 0o644))
	policiesFile := filepath.Join(dir, "policies.yaml")
	require.NoError(t, os.WriteFile(policiesFile, []byte(testPoliciesYAML), 0o644))

	return &config.Config{
		Environment: "test",
		Server:      config.ServerConfig{Host: "127.0.0.1", Port: 0},
		Gateway: config.GatewayConfig{
			RoutesFile:       routesFile,
			PoliciesFile:     policiesFile,
			DefaultBudgetUSD: 5.0,
			RingCapacity:     200,
		},
		Observability: config.ObservabilityConfig{LogLevel: "info", LogFormat: "json"},
	}
}

func TestNewDependencies(t *testing.T) {
	cfg := testConfig(t)
	logger := zaptest.NewLogger(t)

	deps, err := NewDependencies(context.Background(), cfg, logger)
	require.NoError(t, err)
	require.NotNil(t, deps)

	assert.NotNil(t, deps.Table)
	assert.Len(t, deps.Table.All(), 1)
	assert.NotNil(t, deps.Policies)
	assert.NotNil(t, deps.Ledger)
	assert.Equal(t, 2, deps.Registry.Count(), "one dispatcher per provider kind")
	assert.NotNil(t, deps.Gateway)

	assert.NotNil(t, deps.ChatHandler)
	assert.NotNil(t, deps.LedgerHandler)
	assert.NotNil(t, deps.AdminHandler)
	assert.NotNil(t, deps.HealthHandler)

	p, ok := deps.Policies.Resolve("anyone")
	require.True(t, ok)
	assert.True(t, p.Allows("chat-default"))

	deps.Shutdown(time.Second)
}

func TestNewDependencies_MissingRoutesFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Gateway.RoutesFile = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := NewDependencies(context.Background(), cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestNewDependencies_InvalidPolicyFile(t *testing.T) {
	cfg := testConfig(t)
	bad := filepath.Join(t.TempDir(), "policies.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("tenants:\n  public:\n    max_request_usd: -1\n"), 0o644))
	cfg.Gateway.PoliciesFile = bad

	_, err := NewDependencies(context.Background(), cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestNewDependencies_RegisteredKinds(t *testing.T) {
	deps, err := NewDependencies(context.Background(), testConfig(t), zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]models.ProviderKind{models.ProviderOpenAICompatible, models.ProviderLlamaCpp},
		deps.Registry.Kinds())
}

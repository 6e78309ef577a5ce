package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Gateway       GatewayConfig
	Backends      BackendsConfig
	Export        *ExportConfig // Optional: usage export to PostgreSQL. Nil when DATABASE_URL is unset.
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// GatewayConfig holds the routing, policy, and ledger configuration
type GatewayConfig struct {
	RoutesFile   string
	PoliciesFile string

	// DefaultBudgetUSD is assigned to tenant ledgers created on first use
	DefaultBudgetUSD float64

	// RingCapacity bounds the per-tenant retained usage records
	RingCapacity int

	// EnforceCumulativeBudget rejects requests from tenants whose
	// cumulative spend already exceeds their budget
	EnforceCumulativeBudget bool
}

// BackendsConfig holds the dispatcher tuning per provider kind
type BackendsConfig struct {
	OpenAI   BackendConfig
	LlamaCpp BackendConfig
}

// BackendConfig holds the HTTP client settings for one backend kind
type BackendConfig struct {
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// ExportConfig holds PostgreSQL usage export configuration
type ExportConfig struct {
	ConnectionString string // From DATABASE_URL
	BufferSize       int
	WorkerCount      int
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // json or text
}

// New creates a new Config instance by loading environment variables
func New() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Gateway: GatewayConfig{
			RoutesFile:              getEnv("ROUTES_FILE", "configs/routes.yaml"),
			PoliciesFile:            getEnv("POLICIES_FILE", "configs/policies.yaml"),
			DefaultBudgetUSD:        getEnvAsFloat("DEFAULT_BUDGET_USD", 5.0),
			RingCapacity:            getEnvAsInt("LEDGER_RING_CAPACITY", 200),
			EnforceCumulativeBudget: getEnvAsBool("ENFORCE_CUMULATIVE_BUDGET", false),
		},
		Backends: BackendsConfig{
			OpenAI: BackendConfig{
				APIKey:     getEnv("OPENAI_API_KEY", ""),
				Timeout:    getEnvAsDuration("OPENAI_TIMEOUT", 60*time.Second),
				MaxRetries: getEnvAsInt("OPENAI_MAX_RETRIES", 2),
				RetryDelay: getEnvAsDuration("OPENAI_RETRY_DELAY", 500*time.Millisecond),
			},
			LlamaCpp: BackendConfig{
				Timeout:    getEnvAsDuration("LLAMACPP_TIMEOUT", 300*time.Second),
				MaxRetries: getEnvAsInt("LLAMACPP_MAX_RETRIES", 1),
				RetryDelay: getEnvAsDuration("LLAMACPP_RETRY_DELAY", time.Second),
			},
		},
		Export: loadExportConfig(),
		Observability: ObservabilityConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	if c.Gateway.RoutesFile == "" {
		return fmt.Errorf("routes file is required")
	}
	if c.Gateway.PoliciesFile == "" {
		return fmt.Errorf("policies file is required")
	}
	if c.Gateway.DefaultBudgetUSD < 0 {
		return fmt.Errorf("default budget must be non-negative")
	}
	if c.Gateway.RingCapacity <= 0 {
		return fmt.Errorf("ledger ring capacity must be positive")
	}
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}
	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogString returns a safe string for logging (no password)
func (c *ExportConfig) LogString() string {
	u, err := url.Parse(c.ConnectionString)
	if err != nil {
		return "host=<from DATABASE_URL>"
	}
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "5432"
	}
	db := strings.TrimPrefix(u.Path, "/")
	return fmt.Sprintf("host=%s port=%s database=%s", host, port, db)
}

// loadExportConfig loads export config from DATABASE_URL.
// Returns nil when not set (usage is kept in memory only).
func loadExportConfig() *ExportConfig {
	dbURL := getEnv("DATABASE_URL", "")
	if dbURL == "" {
		return nil
	}
	return &ExportConfig{
		ConnectionString: dbURL,
		BufferSize:       getEnvAsInt("EXPORT_BUFFER_SIZE", 4096),
		WorkerCount:      getEnvAsInt("EXPORT_WORKER_COUNT", 2),
	}
}

// Helper functions

// getPort returns the server port from PORT or SERVER_PORT env vars (default: 8080)
func getPort() int {
	if value := os.Getenv("PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	if value := os.Getenv("SERVER_PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	return 8080
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

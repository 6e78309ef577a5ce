package export

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/upb/llm-gateway/models"
	"go.uber.org/zap"

	_ "github.com/lib/pq"
)

// PostgresSink appends usage records to a usage_records table
type PostgresSink struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresSink opens a connection pool against the given DSN and verifies
// connectivity.
func NewPostgresSink(ctx context.Context, dsn string, logger *zap.Logger) (*PostgresSink, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open usage export database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("usage export database ping failed: %w", err)
	}
	return &PostgresSink{db: db, logger: logger}, nil
}

// NewPostgresSinkWithDB wraps an existing connection, used in tests
func NewPostgresSinkWithDB(db *sql.DB, logger *zap.Logger) *PostgresSink {
	return &PostgresSink{db: db, logger: logger}
}

// InitSchema creates the usage_records table when it does not exist
func (s *PostgresSink) InitSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS usage_records (
			id BIGSERIAL PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			trace_id TEXT NOT NULL,
			model TEXT NOT NULL,
			prompt_tokens BIGINT NOT NULL,
			completion_tokens BIGINT NOT NULL,
			cost_usd DOUBLE PRECISION NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL
		)
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create usage_records table: %w", err)
	}
	return nil
}

// Write implements UsageSink
func (s *PostgresSink) Write(ctx context.Context, tenantID string, rec models.UsageRecord) error {
	query := `
		INSERT INTO usage_records
		(tenant_id, trace_id, model, prompt_tokens, completion_tokens, cost_usd, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.ExecContext(ctx, query,
		tenantID, rec.TraceID, rec.Model,
		int64(rec.PromptTokens), int64(rec.CompletionTokens),
		rec.CostUSD, rec.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert usage record: %w", err)
	}
	return nil
}

// Close implements UsageSink
func (s *PostgresSink) Close() error {
	return s.db.Close()
}

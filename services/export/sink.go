// Package export ships committed usage records to an external audit store.
// The in-memory ledger stays the source of truth for the process lifetime;
// the sink is an append-only export, never read back by the engine.
package export

import (
	"context"

	"github.com/upb/llm-gateway/models"
)

// UsageSink receives usage records after they are committed to the ledger.
// Implementations must be safe for concurrent use. Sink failures must never
// affect the request path.
type UsageSink interface {
	// Write persists one committed usage record for a tenant
	Write(ctx context.Context, tenantID string, rec models.UsageRecord) error

	// Close releases sink resources
	Close() error
}

// NopSink discards everything. Used when no export store is configured.
type NopSink struct{}

// Write implements UsageSink
func (NopSink) Write(ctx context.Context, tenantID string, rec models.UsageRecord) error {
	return nil
}

// Close implements UsageSink
func (NopSink) Close() error { return nil }

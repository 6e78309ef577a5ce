package ledger

import (
	"sort"
	"sync"

	"github.com/upb/llm-gateway/models"
	"go.uber.org/zap"
)

// Config holds configuration for the ledger service
type Config struct {
	// DefaultBudgetUSD is assigned to a tenant ledger on lazy creation
	DefaultBudgetUSD float64

	// RingCapacity bounds the per-tenant audit window
	RingCapacity int
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		DefaultBudgetUSD: 5.0,
		RingCapacity:     200,
	}
}

// tenantLedger is the mutable per-tenant state. The four numeric fields and
// the ring are updated as one atomic unit under mu. Reads take the shared
// side, so reporting on one tenant never serializes against other readers
// and only its own in-flight commit.
type tenantLedger struct {
	mu        sync.RWMutex
	budgetUSD float64
	spendUSD  float64
	tokensIn  uint64
	tokensOut uint64
	ring      *ring
}

// Service owns the process-wide map from tenant id to ledger state. It is
// constructed once at startup and passed by handle to request-handling code.
// Ledgers are created lazily on first Record and live for the process
// lifetime; there is no deletion API.
type Service struct {
	mu      sync.RWMutex
	tenants map[string]*tenantLedger
	config  Config
	logger  *zap.Logger
}

// NewService creates a new ledger service
func NewService(config Config, logger *zap.Logger) *Service {
	if config.RingCapacity <= 0 {
		config.RingCapacity = DefaultConfig().RingCapacity
	}
	return &Service{
		tenants: make(map[string]*tenantLedger),
		config:  config,
		logger:  logger,
	}
}

// ledgerFor returns the tenant's ledger, creating it with the default budget
// on first use. The map lock is released before the per-tenant lock is
// taken, so operations on one tenant never block another tenant's commits.
func (s *Service) ledgerFor(tenantID string) *tenantLedger {
	s.mu.RLock()
	tl, ok := s.tenants[tenantID]
	s.mu.RUnlock()
	if ok {
		return tl
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tl, ok = s.tenants[tenantID]; ok {
		return tl
	}
	tl = &tenantLedger{
		budgetUSD: s.config.DefaultBudgetUSD,
		ring:      newRing(s.config.RingCapacity),
	}
	s.tenants[tenantID] = tl
	s.logger.Info("tenant ledger created",
		zap.String("tenant_id", tenantID),
		zap.Float64("budget_usd", s.config.DefaultBudgetUSD))
	return tl
}

// lookup returns the tenant's ledger without creating it
func (s *Service) lookup(tenantID string) (*tenantLedger, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tl, ok := s.tenants[tenantID]
	return tl, ok
}

// Record commits one usage record to the tenant's ledger: spend and token
// counters advance and the record enters the ring in a single atomic unit.
// Spend accumulates at full float64 precision; rounding happens at read time.
func (s *Service) Record(tenantID string, rec models.UsageRecord) {
	tl := s.ledgerFor(tenantID)

	tl.mu.Lock()
	tl.spendUSD += rec.CostUSD
	tl.tokensIn += uint64(rec.PromptTokens)
	tl.tokensOut += uint64(rec.CompletionTokens)
	tl.ring.append(rec)
	tl.mu.Unlock()

	s.logger.Debug("usage recorded",
		zap.String("tenant_id", tenantID),
		zap.String("trace_id", rec.TraceID),
		zap.String("model", rec.Model),
		zap.Float64("cost_usd", rec.CostUSD))
}

// SetBudget overrides a tenant's budget, creating the ledger if absent
func (s *Service) SetBudget(tenantID string, budgetUSD float64) {
	tl := s.ledgerFor(tenantID)
	tl.mu.Lock()
	tl.budgetUSD = budgetUSD
	tl.mu.Unlock()
}

// Records returns the tenant's retained records, most recent first. The
// returned slice is an independent copy; mutating it never affects the
// stored ring. An unknown tenant yields an empty slice and is not created.
func (s *Service) Records(tenantID string) []models.UsageRecord {
	tl, ok := s.lookup(tenantID)
	if !ok {
		return nil
	}
	tl.mu.RLock()
	defer tl.mu.RUnlock()
	return tl.ring.newestFirst()
}

// Summary returns the tenant's read-side view with spend rounded to 4
// decimal places. The second return reports whether the tenant exists.
func (s *Service) Summary(tenantID string) (models.TenantSummary, bool) {
	tl, ok := s.lookup(tenantID)
	if !ok {
		return models.TenantSummary{}, false
	}
	tl.mu.RLock()
	defer tl.mu.RUnlock()
	return models.TenantSummary{
		TenantID:  tenantID,
		BudgetUSD: tl.budgetUSD,
		SpendUSD:  models.RoundUSD(tl.spendUSD),
		TokensIn:  tl.tokensIn,
		TokensOut: tl.tokensOut,
		RingSize:  tl.ring.len(),
	}, true
}

// AllSummaries returns a summary per known tenant, sorted by tenant id
func (s *Service) AllSummaries() []models.TenantSummary {
	s.mu.RLock()
	ids := make([]string, 0, len(s.tenants))
	for id := range s.tenants {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)

	summaries := make([]models.TenantSummary, 0, len(ids))
	for _, id := range ids {
		if summary, ok := s.Summary(id); ok {
			summaries = append(summaries, summary)
		}
	}
	return summaries
}

// IsOverBudget reports whether the tenant's cumulative spend exceeds its
// budget. Advisory by default; the policy engine consults it only when
// cumulative gating is enabled.
func (s *Service) IsOverBudget(tenantID string) bool {
	tl, ok := s.lookup(tenantID)
	if !ok {
		return false
	}
	tl.mu.RLock()
	defer tl.mu.RUnlock()
	return tl.spendUSD > tl.budgetUSD
}

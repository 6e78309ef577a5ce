package policy

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/upb/llm-gateway/models"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// policyFile is the on-disk shape of the tenant policy map
type policyFile struct {
	Tenants map[string]models.TenantPolicy `yaml:"tenants"`
}

// Store holds the process-wide tenant policy map as an immutable snapshot
// behind an atomic pointer. Hot reload swaps the whole map; in-flight
// requests keep the snapshot they resolved against.
type Store struct {
	snapshot atomic.Pointer[map[string]models.TenantPolicy]
	logger   *zap.Logger
}

// NewStore creates a policy store with an initial policy map
func NewStore(policies map[string]models.TenantPolicy, logger *zap.Logger) *Store {
	s := &Store{logger: logger}
	s.Replace(policies)
	return s
}

// LoadFile parses a YAML tenant policy file
func LoadFile(path string) (map[string]models.TenantPolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	var pf policyFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse policy file: %w", err)
	}

	for tenant, p := range pf.Tenants {
		if p.MaxRequestUSD < 0 {
			return nil, fmt.Errorf("tenant %s: max_request_usd must be non-negative", tenant)
		}
		if p.MaxOutputTokens < 0 {
			return nil, fmt.Errorf("tenant %s: max_output_tokens must be non-negative", tenant)
		}
	}

	return pf.Tenants, nil
}

// Replace atomically swaps in a new policy snapshot
func (s *Store) Replace(policies map[string]models.TenantPolicy) {
	copied := make(map[string]models.TenantPolicy, len(policies))
	for k, v := range policies {
		copied[k] = v
	}
	s.snapshot.Store(&copied)

	if s.logger != nil {
		s.logger.Info("tenant policies replaced", zap.Int("tenants", len(copied)))
	}
}

// ReloadFile re-reads the policy file and swaps the snapshot. A parse or
// validation error leaves the current snapshot in place.
func (s *Store) ReloadFile(path string) error {
	policies, err := LoadFile(path)
	if err != nil {
		return err
	}
	s.Replace(policies)
	return nil
}

// Resolve returns the policy for a tenant id, falling back to the public
// policy for unknown tenants. Unknown tenants are not rejected; they
// silently inherit the public policy. The second return reports whether any
// policy (own or public) was found.
func (s *Store) Resolve(tenantID string) (models.TenantPolicy, bool) {
	policies := *s.snapshot.Load()
	if p, ok := policies[tenantID]; ok {
		return p, true
	}
	p, ok := policies[models.PublicTenant]
	return p, ok
}

// All returns the current policy snapshot. Callers must treat it as read-only.
func (s *Store) All() map[string]models.TenantPolicy {
	return *s.snapshot.Load()
}

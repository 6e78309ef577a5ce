package routing

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/upb/llm-gateway/models"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// routeFile is the on-disk shape of the route table
type routeFile struct {
	Routes []models.Route `yaml:"routes"`
}

// Table holds the process-wide route table. The underlying slice is an
// immutable snapshot behind an atomic pointer: readers never observe a
// half-applied reload, and no locking is needed on the request path.
type Table struct {
	snapshot atomic.Pointer[[]models.Route]
	logger   *zap.Logger
}

// NewTable creates a route table with an initial set of routes
func NewTable(routes []models.Route, logger *zap.Logger) *Table {
	t := &Table{logger: logger}
	t.Replace(routes)
	return t
}

// LoadFile parses a YAML route file and validates each entry
func LoadFile(path string) ([]models.Route, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read route file: %w", err)
	}

	var rf routeFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse route file: %w", err)
	}

	for i, r := range rf.Routes {
		if r.Model == "" {
			return nil, fmt.Errorf("route %d: model alias is required", i)
		}
		if r.Endpoint == "" {
			return nil, fmt.Errorf("route %d (%s): endpoint is required", i, r.Model)
		}
		if r.Provider != models.ProviderOpenAICompatible && r.Provider != models.ProviderLlamaCpp {
			return nil, fmt.Errorf("route %d (%s): unknown provider %q", i, r.Model, r.Provider)
		}
		if r.CostPer1kInput < 0 || r.CostPer1kOutput < 0 {
			return nil, fmt.Errorf("route %d (%s): costs must be non-negative", i, r.Model)
		}
	}

	return rf.Routes, nil
}

// Replace atomically swaps in a new route snapshot
func (t *Table) Replace(routes []models.Route) {
	copied := make([]models.Route, len(routes))
	copy(copied, routes)
	t.snapshot.Store(&copied)

	if t.logger != nil {
		t.logger.Info("route table replaced", zap.Int("routes", len(copied)))
	}
}

// ReloadFile re-reads the route file and swaps the snapshot. On a parse or
// validation error the current snapshot stays in place.
func (t *Table) ReloadFile(path string) error {
	routes, err := LoadFile(path)
	if err != nil {
		return err
	}
	t.Replace(routes)
	return nil
}

// All returns the current snapshot. Callers must treat it as read-only.
func (t *Table) All() []models.Route {
	return *t.snapshot.Load()
}

// RoutesFor returns the candidate routes for a model alias
func (t *Table) RoutesFor(alias string) []models.Route {
	var candidates []models.Route
	for _, r := range t.All() {
		if r.Model == alias {
			candidates = append(candidates, r)
		}
	}
	return candidates
}

// Aliases returns the distinct model aliases in the current snapshot
func (t *Table) Aliases() []string {
	seen := make(map[string]bool)
	var aliases []string
	for _, r := range t.All() {
		if !seen[r.Model] {
			seen[r.Model] = true
			aliases = append(aliases, r.Model)
		}
	}
	return aliases
}

package providers

import (
	"errors"
	"sync"

	"github.com/upb/llm-gateway/models"
)

var (
	// ErrDispatcherNotFound is returned when no dispatcher is registered for a provider kind
	ErrDispatcherNotFound = errors.New("dispatcher not found")

	// ErrDispatcherAlreadyRegistered is returned when trying to register a duplicate dispatcher
	ErrDispatcherAlreadyRegistered = errors.New("dispatcher already registered")
)

// Registry manages dispatcher instances keyed by provider kind. Routes name a
// ProviderKind; the gateway resolves it to a Dispatcher here.
type Registry struct {
	mu          sync.RWMutex
	dispatchers map[models.ProviderKind]Dispatcher
}

// NewRegistry creates a new dispatcher registry
func NewRegistry() *Registry {
	return &Registry{
		dispatchers: make(map[models.ProviderKind]Dispatcher),
	}
}

// Register registers a dispatcher instance
func (r *Registry) Register(d Dispatcher) error {
	if d == nil {
		return errors.New("dispatcher cannot be nil")
	}
	if d.Name() == "" {
		return errors.New("dispatcher kind cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.dispatchers[d.Name()]; exists {
		return ErrDispatcherAlreadyRegistered
	}
	r.dispatchers[d.Name()] = d
	return nil
}

// Get retrieves the dispatcher for a provider kind
func (r *Registry) Get(kind models.ProviderKind) (Dispatcher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, exists := r.dispatchers[kind]
	if !exists {
		return nil, ErrDispatcherNotFound
	}
	return d, nil
}

// Kinds returns the registered provider kinds
func (r *Registry) Kinds() []models.ProviderKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]models.ProviderKind, 0, len(r.dispatchers))
	for k := range r.dispatchers {
		kinds = append(kinds, k)
	}
	return kinds
}

// Count returns the number of registered dispatchers
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.dispatchers)
}

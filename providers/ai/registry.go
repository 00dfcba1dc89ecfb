package ai

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// ErrUnknownProvider is returned by Registry.New for an unregistered name.
var ErrUnknownProvider = errors.New("unknown provider")

// Registry maps provider names to factories. It is filled explicitly by the
// composition root; nothing registers itself at import time.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds factory under name (case-insensitive). Registering a name
// twice is an error.
func (r *Registry) Register(name string, factory Factory) error {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return errors.New("provider name is empty")
	}
	if factory == nil {
		return fmt.Errorf("provider %s: nil factory", key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[key]; exists {
		return fmt.Errorf("provider %s already registered", key)
	}
	r.factories[key] = factory
	return nil
}

// New builds the named provider from cfg.
func (r *Registry) New(name string, cfg *ProviderConfig) (Provider, error) {
	key := strings.ToLower(strings.TrimSpace(name))

	r.mu.RLock()
	factory, ok := r.factories[key]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (have: %s)", ErrUnknownProvider, name, strings.Join(r.Names(), ", "))
	}
	if cfg == nil {
		return nil, fmt.Errorf("provider %s: nil config", key)
	}
	return factory(cfg)
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Package registry holds the commands a UI host can discover and invoke.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/tether/pkg/domain"
)

// Handler defines the signature for a command implementation.
// Commands take no arguments; all configuration is bound at registration time.
type Handler func(ctx context.Context) (*domain.Result, error)

type entry struct {
	desc    domain.Descriptor
	handler Handler
}

// Registry manages the available commands.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]entry),
	}
}

// Register adds a command to the registry.
// If a command with the same name exists, it is overwritten.
func (r *Registry) Register(desc domain.Descriptor, fn Handler) error {
	if desc.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidCommand)
	}
	if fn == nil {
		return fmt.Errorf("%w: %s: nil handler", domain.ErrInvalidCommand, desc.Name)
	}
	if desc.Kind == "" {
		desc.Kind = domain.KindFunc
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[desc.Name] = entry{desc: desc, handler: fn}
	return nil
}

// Unregister removes a command. It reports whether the command existed.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[name]
	delete(r.entries, name)
	return ok
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (domain.Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e.desc, ok
}

// List returns all descriptors sorted by name.
func (r *Registry) List() []domain.Descriptor {
	r.mu.RLock()
	out := make([]domain.Descriptor, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.desc)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Invoke looks up a command by name and executes it.
// Returns an error wrapping domain.ErrCommandNotFound if the command is not found.
func (r *Registry) Invoke(ctx context.Context, name string) (*domain.Result, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCommandNotFound, name)
	}

	return e.handler(ctx)
}

package provider

import (
	"fmt"
	"sync"

	"github.com/blackcoderx/promptmgr/pkg/core/eval/model"
)

// Registry is the process-wide singleton mapping a ProviderID to its
// adapter, filled once and read-only during run execution. Generalized from
// the reference tool registry's "register every tool" shape to "register
// every provider tag exactly once."
type Registry struct {
	mu        sync.RWMutex
	providers map[model.ProviderID]Provider
	filled    bool
}

var (
	globalRegistry     *Registry
	globalRegistryOnce sync.Once
)

// GlobalRegistry returns the process-wide registry, creating it empty on
// first call.
func GlobalRegistry() *Registry {
	globalRegistryOnce.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

// NewRegistry returns an empty registry. Production code should use
// GlobalRegistry; this constructor exists for isolated tests.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[model.ProviderID]Provider)}
}

// RegisterBuiltins registers the three built-in adapters idempotently: at
// most one registration per process, subsequent calls are no-ops.
func (r *Registry) RegisterBuiltins(openai, anthropic, gemini Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.filled {
		return
	}
	r.providers[model.ProviderOpenAI] = openai
	r.providers[model.ProviderAnthropic] = anthropic
	r.providers[model.ProviderGemini] = gemini
	r.filled = true
}

// RegisterProvider overrides or adds a single adapter. Exposed for tests
// only; production code goes through RegisterBuiltins.
func (r *Registry) RegisterProvider(id model.ProviderID, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[id] = p
}

// Lookup returns the adapter registered for id. An unknown id is a
// configuration-time error.
func (r *Registry) Lookup(id model.ProviderID) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[id]
	if !ok {
		return nil, fmt.Errorf("provider: no adapter registered for %q", id)
	}
	return p, nil
}

// Reset clears all registrations. Test-only.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = make(map[model.ProviderID]Provider)
	r.filled = false
}

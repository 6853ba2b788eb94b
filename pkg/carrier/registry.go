package carrier

import (
	"sync"
)

// Registry stores carrier adapters by code. The service layer looks up
// carriers here without knowing the concrete implementations. Lookup
// fails closed with CARRIER_NOT_FOUND.
type Registry struct {
	mu       sync.RWMutex
	carriers map[string]Carrier
	order    []string
}

// NewRegistry creates an empty carrier registry.
func NewRegistry() *Registry {
	return &Registry{
		carriers: make(map[string]Carrier),
	}
}

// Register adds a carrier under its code. Re-registering a code replaces
// the adapter but keeps its original position in List order.
func (r *Registry) Register(c Carrier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	code := c.Code()
	if _, exists := r.carriers[code]; !exists {
		r.order = append(r.order, code)
	}
	r.carriers[code] = c
}

// Get returns the carrier registered under code.
func (r *Registry) Get(code string) (Carrier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.carriers[code]; ok {
		return c, nil
	}
	return nil, NewError(KindCarrierNotFound, "no carrier registered for code "+code)
}

// List returns all registered carriers in registration order.
func (r *Registry) List() []Carrier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Carrier, 0, len(r.order))
	for _, code := range r.order {
		result = append(result, r.carriers[code])
	}
	return result
}

// Codes returns the registered carrier codes in registration order.
func (r *Registry) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]string, len(r.order))
	copy(codes, r.order)
	return codes
}

// Count returns the number of registered carriers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.carriers)
}

package source

import (
	"fmt"
	"sync"
)

// Registry is an ordered list of variants. The first variant whose recognizer
// accepts a reference wins.
type Registry struct {
	mu       sync.RWMutex
	variants []Variant
}

// NewRegistry creates a Registry holding variants in the given order.
func NewRegistry(variants ...Variant) *Registry {
	return &Registry{variants: append([]Variant(nil), variants...)}
}

// DefaultRegistry returns a Registry with the built-in variants.
func DefaultRegistry() *Registry {
	return NewRegistry(Watch(), Shorts())
}

// Register appends v. It is consulted after every variant already registered.
func (r *Registry) Register(v Variant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variants = append(r.variants, v)
}

// Resolve returns the first variant that recognizes ref.
func (r *Registry) Resolve(ref string) (Variant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range r.variants {
		if v.Recognize != nil && v.Recognize(ref) {
			return v, nil
		}
	}
	return Variant{}, fmt.Errorf("%w: %q", ErrNoVariant, ref)
}

// Names returns the registered variant names in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.variants))
	for _, v := range r.variants {
		names = append(names, v.Name)
	}
	return names
}

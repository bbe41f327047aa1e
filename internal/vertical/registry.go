package vertical

import (
	"github.com/rotisserie/eris"
)

// Registry maps vertical slugs to their implementations.
type Registry struct {
	verticals map[string]Vertical
	order     []string // insertion order for deterministic iteration
}

// NewRegistry creates a registry populated with all five verticals.
func NewRegistry() *Registry {
	r := &Registry{
		verticals: make(map[string]Vertical),
	}

	r.Register(&Fintech{})
	r.Register(&AITalent{})
	r.Register(&ESG{})
	r.Register(&Regulatory{})
	r.Register(&SupplyChain{})

	return r
}

// Register adds a vertical to the registry.
func (r *Registry) Register(v Vertical) {
	if r.verticals == nil {
		r.verticals = make(map[string]Vertical)
	}
	slug := v.Slug()
	r.verticals[slug] = v
	r.order = append(r.order, slug)
}

// Get returns a vertical by slug.
func (r *Registry) Get(slug string) (Vertical, error) {
	v, ok := r.verticals[slug]
	if !ok {
		return nil, eris.Errorf("vertical: unknown vertical %q", slug)
	}
	return v, nil
}

// All returns all verticals in registration order.
func (r *Registry) All() []Vertical {
	result := make([]Vertical, 0, len(r.order))
	for _, slug := range r.order {
		result = append(result, r.verticals[slug])
	}
	return result
}

// Slugs returns all registered slugs in registration order.
func (r *Registry) Slugs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// ByPrefix returns the vertical whose BaseFilename prefixes the given
// product filename, or nil when none matches.
func (r *Registry) ByPrefix(filename string) Vertical {
	for _, slug := range r.order {
		v := r.verticals[slug]
		if hasPrefix(filename, v.BaseFilename()) {
			return v
		}
	}
	return nil
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

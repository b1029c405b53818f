package oauth

// Registry keeps providers in display order.
type Registry struct {
	order []Provider
	byID  map[string]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{byID: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		if _, dup := r.byID[p.ID()]; dup {
			continue
		}
		r.order = append(r.order, p)
		r.byID[p.ID()] = p
	}
	return r
}

func (r *Registry) Get(id string) (Provider, bool) {
	p, ok := r.byID[id]
	return p, ok
}

func (r *Registry) List() []Provider {
	return append([]Provider(nil), r.order...)
}

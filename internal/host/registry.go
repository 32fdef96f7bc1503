package host

import "sync"

// Registry holds the search sources of a session. Middlewares installed
// with Use decorate every source, including ones added earlier.
type Registry struct {
	mu          sync.RWMutex
	middlewares []Middleware
	raw         []Source
	wrapped     []Source
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Use installs a middleware.
func (r *Registry) Use(mw Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.middlewares = append(r.middlewares, mw)
	for i, src := range r.raw {
		r.wrapped[i] = r.wrap(src)
	}
}

// AddSource registers a source, decorated by every installed middleware.
func (r *Registry) AddSource(src Source) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.raw = append(r.raw, src)
	r.wrapped = append(r.wrapped, r.wrap(src))
}

// Sources returns the decorated sources in registration order.
func (r *Registry) Sources() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Source(nil), r.wrapped...)
}

// Source finds a decorated source by title.
func (r *Registry) Source(title string) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.wrapped {
		if s.Title() == title {
			return s, true
		}
	}
	return nil, false
}

// middlewares apply in installation order, so the last one is outermost
func (r *Registry) wrap(src Source) Source {
	for _, mw := range r.middlewares {
		src = mw(src)
	}
	return src
}

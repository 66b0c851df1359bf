package routes

import "sync"

// MemoryRouter is an in-process Router used by the API shell and tests.
type MemoryRouter struct {
	mu        sync.Mutex
	current   Route
	nextID    int
	listeners map[int]func(Route)
}

// NewMemoryRouter constructs a MemoryRouter positioned at the given route.
func NewMemoryRouter(start Route) *MemoryRouter {
	return &MemoryRouter{current: start, listeners: map[int]func(Route){}}
}

// Current returns the route currently displayed.
func (r *MemoryRouter) Current() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Go navigates to a route and notifies listeners.
func (r *MemoryRouter) Go(route Route) {
	r.mu.Lock()
	r.current = route
	fns := make([]func(Route), 0, len(r.listeners))
	for _, fn := range r.listeners {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(route)
	}
}

// OnChange registers a route change callback and returns an unsubscribe.
func (r *MemoryRouter) OnChange(fn func(Route)) func() {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}

package mapping

import (
	"sync"

	"cachestore/internal/events"
)

// Subscriber receives partial state updates produced by mappings.
// Registry compares subscribers with ==, so implementations should be pointers.
type Subscriber interface {
	SetState(update map[string]any)
}

// Filter transforms a cache value before it is handed to a subscriber.
type Filter[V any] func(V) any

// Identity is the default Filter.
func Identity[V any](v V) any {
	return v
}

// binding ties one cache key to one subscriber field through a bus listener.
type binding[V any] struct {
	key      string
	field    string
	sub      Subscriber
	listener *events.Listener[V]
}

// Options controls construction of a Registry.
type Options struct {
	ConcurrencySafe bool
}

// Registry owns the active mappings and their bus listeners.
type Registry[V any] struct {
	muPtr *sync.Mutex

	bus      *events.Bus[V]
	bindings []*binding[V]
}

// NewRegistry builds a Registry that subscribes through bus.
func NewRegistry[V any](bus *events.Bus[V], opts Options) *Registry[V] {
	var mu *sync.Mutex
	if opts.ConcurrencySafe {
		mu = &sync.Mutex{}
	}
	return &Registry[V]{muPtr: mu, bus: bus}
}

func (r *Registry[V]) lock() func() {
	if r.muPtr == nil {
		return func() {}
	}
	r.muPtr.Lock()
	return r.muPtr.Unlock
}

// Map forwards every change of key to sub as {field: filter(newVal)}.
// Repeated calls with the same arguments stack independent mappings.
func (r *Registry[V]) Map(key, field string, sub Subscriber, filter Filter[V]) {
	if filter == nil {
		filter = Identity[V]
	}
	l := events.NewListener(func(e events.ChangeEvent[V]) {
		sub.SetState(map[string]any{field: filter(e.NewVal)})
	})

	unlock := r.lock()
	r.bindings = append(r.bindings, &binding[V]{key: key, field: field, sub: sub, listener: l})
	unlock()

	r.bus.On(key, l)
}

// Unmap removes every mapping of key. An empty field and a nil sub match any value.
func (r *Registry[V]) Unmap(key, field string, sub Subscriber) {
	unlock := r.lock()
	var removed []*binding[V]
	for i := len(r.bindings); i > 0; i-- {
		b := r.bindings[i-1]
		if b.key != key || (field != "" && b.field != field) || (sub != nil && b.sub != sub) {
			continue
		}
		removed = append(removed, b)
		r.bindings = append(r.bindings[:i-1], r.bindings[i:]...)
	}
	unlock()

	for _, b := range removed {
		r.bus.Off(b.key, b.listener)
	}
}

// Len returns the number of active mappings.
func (r *Registry[V]) Len() int {
	unlock := r.lock()
	defer unlock()
	return len(r.bindings)
}

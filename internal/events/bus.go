package events

import "sync"

// EventType describes how a cache key changed.
type EventType string

const (
	Added   EventType = "added"
	Updated EventType = "updated"
	Deleted EventType = "deleted"
)

// ChangeEvent is built fresh for every listener invocation and never stored.
// NewVal is the cache's value for Key at notification time; it is the zero value
// after a deletion.
type ChangeEvent[V any] struct {
	Type   EventType
	Key    string
	NewVal V
	OldVal V
}

// Listener wraps a callback so it can be registered and removed by identity.
type Listener[V any] struct {
	fn func(ChangeEvent[V])
}

// NewListener wraps fn. Each call returns a distinct listener.
func NewListener[V any](fn func(ChangeEvent[V])) *Listener[V] {
	return &Listener[V]{fn: fn}
}

// ValueFunc reads the current value of a key from the owning cache.
type ValueFunc[V any] func(key string) V

// Options controls construction of a Bus.
type Options struct {
	// ConcurrencySafe guards the listener lists with a RWMutex.
	ConcurrencySafe bool
}

// Bus keeps an ordered list of listeners per key.
type Bus[V any] struct {
	// If muPtr is nil, the bus is NOT goroutine-safe.
	muPtr *sync.RWMutex

	listeners map[string][]*Listener[V]
	current   ValueFunc[V]
}

// NewBus builds a Bus whose events carry values read through current.
func NewBus[V any](current ValueFunc[V], opts Options) *Bus[V] {
	var mu *sync.RWMutex
	if opts.ConcurrencySafe {
		mu = &sync.RWMutex{}
	}
	return &Bus[V]{
		muPtr:     mu,
		listeners: make(map[string][]*Listener[V]),
		current:   current,
	}
}

func (b *Bus[V]) lockR() func() {
	if b.muPtr == nil {
		return func() {}
	}
	b.muPtr.RLock()
	return b.muPtr.RUnlock
}

func (b *Bus[V]) lockW() func() {
	if b.muPtr == nil {
		return func() {}
	}
	b.muPtr.Lock()
	return b.muPtr.Unlock
}

// On appends l to the listeners of key. A listener may be added more than once;
// each addition is invoked separately.
func (b *Bus[V]) On(key string, l *Listener[V]) {
	if l == nil {
		return
	}
	unlock := b.lockW()
	defer unlock()
	b.listeners[key] = append(b.listeners[key], l)
}

// Off removes the first occurrence of l from key. A nil l removes every listener of key.
// Unknown keys and listeners are ignored.
func (b *Bus[V]) Off(key string, l *Listener[V]) {
	unlock := b.lockW()
	defer unlock()

	list, ok := b.listeners[key]
	if !ok {
		return
	}
	if l == nil {
		delete(b.listeners, key)
		return
	}
	for i, cur := range list {
		if cur != l {
			continue
		}
		next := make([]*Listener[V], 0, len(list)-1)
		next = append(next, list[:i]...)
		next = append(next, list[i+1:]...)
		b.listeners[key] = next
		return
	}
}

// Count returns how many listeners key has.
func (b *Bus[V]) Count(key string) int {
	unlock := b.lockR()
	defer unlock()
	return len(b.listeners[key])
}

// Trigger synchronously invokes the listeners of key in registration order.
// The list is snapshotted first, so listeners may subscribe or unsubscribe while running.
// A panicking listener is not recovered and stops the remaining listeners of this event.
func (b *Bus[V]) Trigger(key string, typ EventType, oldVal V) {
	unlock := b.lockR()
	list := b.listeners[key]
	unlock()

	for _, l := range list {
		var newVal V
		if b.current != nil {
			newVal = b.current(key)
		}
		l.fn(ChangeEvent[V]{Type: typ, Key: key, NewVal: newVal, OldVal: oldVal})
	}
}

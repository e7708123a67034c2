package cache

import (
	"container/list"
	"errors"
	"sync"

	"cachestore/internal/events"
	"cachestore/internal/local"
	"cachestore/internal/mapping"
)

// localKeyPrefix separates mirrored cache entries from direct local store usage.
const localKeyPrefix = "cache_"

// entry is the value stored in the insertion-order list.
type entry[V any] struct {
	key   string
	value V
}

// Options controls construction of a Store.
type Options[V any] struct {
	// ConcurrencySafe guards the entries, listeners and mappings with mutexes.
	// Locks are never held while listeners run.
	ConcurrencySafe bool

	// Equal decides whether a Set changes anything. Defaults to Identical.
	Equal func(a, b V) bool

	// Local is the persistent tier. Nil disables mirroring and fall-through reads.
	Local *local.Store
}

// Store is the in-memory cache. Every instance owns its entries, listeners and mappings.
type Store[V any] struct {
	// If muPtr is nil, the store is NOT goroutine-safe.
	muPtr *sync.RWMutex

	items map[string]*list.Element
	order *list.List

	equal    func(a, b V) bool
	local    *local.Store
	bus      *events.Bus[V]
	registry *mapping.Registry[V]
}

// New constructs a Store with the given options.
func New[V any](opts Options[V]) *Store[V] {
	var mu *sync.RWMutex
	if opts.ConcurrencySafe {
		mu = &sync.RWMutex{}
	}
	equal := opts.Equal
	if equal == nil {
		equal = Identical[V]
	}

	s := &Store[V]{
		muPtr: mu,
		items: make(map[string]*list.Element),
		order: list.New(),
		equal: equal,
		local: opts.Local,
	}
	s.bus = events.NewBus[V](s.current, events.Options{ConcurrencySafe: opts.ConcurrencySafe})
	s.registry = mapping.NewRegistry(s.bus, mapping.Options{ConcurrencySafe: opts.ConcurrencySafe})
	return s
}

func (s *Store[V]) lockR() func() {
	if s.muPtr == nil {
		return func() {}
	}
	s.muPtr.RLock()
	return s.muPtr.RUnlock
}

func (s *Store[V]) lockW() func() {
	if s.muPtr == nil {
		return func() {}
	}
	s.muPtr.Lock()
	return s.muPtr.Unlock
}

func (s *Store[V]) lookup(key string) (V, bool) {
	unlock := s.lockR()
	defer unlock()
	if el, ok := s.items[key]; ok {
		return el.Value.(*entry[V]).value, true
	}
	var zero V
	return zero, false
}

// current feeds the bus with post-mutation values.
func (s *Store[V]) current(key string) V {
	v, _ := s.lookup(key)
	return v
}

// Set implements Cache.Set.
func (s *Store[V]) Set(key string, value V, saveToLocal bool) error {
	unlock := s.lockW()
	var oldVal V
	el, existed := s.items[key]
	if existed {
		e := el.Value.(*entry[V])
		oldVal = e.value
		if s.equal(oldVal, value) {
			unlock()
			return nil
		}
		e.value = value
	} else {
		s.items[key] = s.order.PushBack(&entry[V]{key: key, value: value})
	}
	unlock()

	var err error
	if saveToLocal {
		err = s.SaveToLocal(key)
	}

	typ := events.Added
	if existed {
		typ = events.Updated
	}
	s.bus.Trigger(key, typ, oldVal)
	return err
}

// Get implements Cache.Get. A fall-through read does not repopulate memory.
func (s *Store[V]) Get(key string, fallbackToLocal bool) (V, bool) {
	v, ok := s.lookup(key)
	if ok || !fallbackToLocal {
		return v, ok
	}
	return s.GetFromLocal(key)
}

// Del implements Cache.Del.
func (s *Store[V]) Del(key string, removeFromLocal bool) error {
	unlock := s.lockW()
	var oldVal V
	if el, ok := s.items[key]; ok {
		oldVal = el.Value.(*entry[V]).value
		s.order.Remove(el)
		delete(s.items, key)
	}
	unlock()

	var err error
	if removeFromLocal {
		err = s.RemoveFromLocal(key)
	}
	s.bus.Trigger(key, events.Deleted, oldVal)
	return err
}

// Empty implements Cache.Empty. One deleted event is emitted per key.
func (s *Store[V]) Empty(removeFromLocal bool) error {
	var errs []error
	for _, key := range s.Keys() {
		if err := s.Del(key, removeFromLocal); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SaveToLocal mirrors the in-memory value of key without expiration. A missing key is a no-op.
func (s *Store[V]) SaveToLocal(key string) error {
	if s.local == nil {
		return ErrNoLocalStore
	}
	v, ok := s.lookup(key)
	if !ok {
		return nil
	}
	return s.local.Set(localKeyPrefix+key, v, 0)
}

// GetFromLocal reads the mirrored value of key.
func (s *Store[V]) GetFromLocal(key string) (V, bool) {
	var v V
	if s.local == nil {
		return v, false
	}
	if !s.local.Lookup(localKeyPrefix+key, &v) {
		var zero V
		return zero, false
	}
	return v, true
}

// RemoveFromLocal deletes the mirrored value of key.
func (s *Store[V]) RemoveFromLocal(key string) error {
	if s.local == nil {
		return ErrNoLocalStore
	}
	return s.local.Del(localKeyPrefix + key)
}

// Local implements Cache.Local.
func (s *Store[V]) Local() *local.Store {
	return s.local
}

// On registers l for changes of key.
func (s *Store[V]) On(key string, l *events.Listener[V]) {
	s.bus.On(key, l)
}

// Off removes l from key, or every listener of key when l is nil.
func (s *Store[V]) Off(key string, l *events.Listener[V]) {
	s.bus.Off(key, l)
}

// Map forwards changes of key into sub's field. A nil filter passes values through.
func (s *Store[V]) Map(key, field string, sub mapping.Subscriber, filter mapping.Filter[V]) {
	s.registry.Map(key, field, sub, filter)
}

// Unmap removes mappings of key; empty field and nil sub act as wildcards.
func (s *Store[V]) Unmap(key, field string, sub mapping.Subscriber) {
	s.registry.Unmap(key, field, sub)
}

// Keys returns the cached keys in insertion order.
func (s *Store[V]) Keys() []string {
	unlock := s.lockR()
	defer unlock()
	out := make([]string, 0, s.order.Len())
	for el := s.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*entry[V]).key)
	}
	return out
}

// Len returns the number of cached keys.
func (s *Store[V]) Len() int {
	unlock := s.lockR()
	defer unlock()
	return len(s.items)
}

// Ensure Store implements Cache at compile time.
var _ Cache[any] = (*Store[any])(nil)

package cache

import (
	"errors"
	"reflect"

	"cachestore/internal/events"
	"cachestore/internal/local"
	"cachestore/internal/mapping"
)

// ErrNoLocalStore is returned when a persistent operation is requested on a cache
// built without a local store.
var ErrNoLocalStore = errors.New("cache has no local store")

// Cache defines the memory cache API with an optional persistent tier and change notifications.
type Cache[V any] interface {
	// Set stores value, mirroring it to the local store when saveToLocal is true.
	// Setting a value equal to the current one does nothing.
	Set(key string, value V, saveToLocal bool) error

	// Get returns the in-memory value, falling through to the local store on a miss
	// when fallbackToLocal is true.
	Get(key string, fallbackToLocal bool) (V, bool)

	// Del removes key and always emits a deleted event, even for a missing key.
	Del(key string, removeFromLocal bool) error

	// Empty deletes every key in insertion order.
	Empty(removeFromLocal bool) error

	SaveToLocal(key string) error
	GetFromLocal(key string) (V, bool)
	RemoveFromLocal(key string) error

	// Local exposes the persistent store directly; nil when none is configured.
	Local() *local.Store

	On(key string, l *events.Listener[V])
	Off(key string, l *events.Listener[V])
	Map(key, field string, sub mapping.Subscriber, filter mapping.Filter[V])
	Unmap(key, field string, sub mapping.Subscriber)

	Keys() []string
	Len() int
}

// Identical reports identity/primitive equality. Comparable values use ==; maps,
// slices, funcs and channels are identical only when they share the same underlying data.
// Non-nil empty slices are never identical, since Go may back them with one shared address.
func Identical[V any](a, b V) bool {
	va, vb := reflect.ValueOf(any(a)), reflect.ValueOf(any(b))
	if !va.IsValid() || !vb.IsValid() {
		return va.IsValid() == vb.IsValid()
	}
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Map, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		// zero-capacity allocations share one address, so only nil slices compare equal there
		if va.Cap() == 0 || vb.Cap() == 0 {
			return va.IsNil() && vb.IsNil()
		}
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}
	if va.Comparable() && vb.Comparable() {
		return va.Equal(vb)
	}
	// structs or arrays holding non-comparable fields are never identical
	return false
}

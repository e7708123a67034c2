package local

import "sync"

// Medium is the external string-keyed storage the persistent store writes to.
// Implementations must keep values as opaque text.
type Medium interface {
	// GetItem returns the stored text and whether the key exists.
	GetItem(key string) (string, bool, error)

	// SetItem stores the text under key, overwriting any previous value.
	SetItem(key, value string) error

	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(key string) error

	// Keys lists every key currently stored, including keys of other namespaces.
	Keys() ([]string, error)
}

// MemoryMedium is an in-process Medium that keeps keys in insertion order.
// It is safe for concurrent use.
type MemoryMedium struct {
	mu    sync.RWMutex
	order []string
	items map[string]string
}

// NewMemoryMedium returns an empty MemoryMedium.
func NewMemoryMedium() *MemoryMedium {
	return &MemoryMedium{items: make(map[string]string)}
}

func (m *MemoryMedium) GetItem(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *MemoryMedium) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[key]; !ok {
		m.order = append(m.order, key)
	}
	m.items[key] = value
	return nil
}

func (m *MemoryMedium) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[key]; !ok {
		return nil
	}
	delete(m.items, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemoryMedium) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out, nil
}

// Ensure MemoryMedium implements Medium at compile time.
var _ Medium = (*MemoryMedium)(nil)

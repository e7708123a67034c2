package local

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
)

// DefaultPrefix namespaces every key this package writes to a Medium.
const DefaultPrefix = "__local_"

// record is the envelope persisted on the medium.
type record struct {
	Value     json.RawMessage `json:"value"`
	ExpiredAt int64           `json:"expiredAt"` // unix ms, 0 means no expiration
}

// Store is a persistent key/value store with per-key expiration on top of a Medium.
// Expiration is lazy: an expired record is only removed when it is read.
type Store struct {
	medium Medium
	prefix string
}

// New builds a Store writing to medium under prefix. An empty prefix uses DefaultPrefix.
func New(medium Medium, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{medium: medium, prefix: prefix}
}

// now is a small indirection to allow test stubbing.
var now = time.Now

// Prefix returns the namespace prefix of the store.
func (s *Store) Prefix() string {
	return s.prefix
}

// Set stores value under key. A negative expireAfter is silently ignored and nothing is
// written; zero means the record never expires. Any existing record is overwritten.
func (s *Store) Set(key string, value any, expireAfter time.Duration) error {
	if expireAfter < 0 {
		return nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}

	var expiredAt int64
	if expireAfter > 0 {
		expiredAt = now().Add(expireAfter).UnixMilli()
	}

	data, err := json.Marshal(record{Value: raw, ExpiredAt: expiredAt})
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	if err := s.medium.SetItem(s.prefix+key, string(data)); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Get returns the value stored under key decoded into its generic JSON shape
// (float64, string, bool, nil, []any, map[string]any).
func (s *Store) Get(key string) (any, bool) {
	var v any
	if !s.Lookup(key, &v) {
		return nil, false
	}
	return v, true
}

// Lookup decodes the value stored under key into dst and reports whether a live record
// was found. Unreadable or undecodable records count as a miss.
func (s *Store) Lookup(key string, dst any) bool {
	rec, ok := s.load(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(rec.Value, dst); err != nil {
		return false
	}
	return true
}

// Raw returns the serialized record under key without any expiration check.
func (s *Store) Raw(key string) (string, bool) {
	data, ok, err := s.medium.GetItem(s.prefix + key)
	if err != nil {
		log.Printf("local: read %q: %v", key, err)
		return "", false
	}
	return data, ok
}

func (s *Store) load(key string) (record, bool) {
	var rec record
	data, ok := s.Raw(key)
	if !ok || data == "" {
		return rec, false
	}
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return rec, false
	}
	if rec.ExpiredAt == 0 || now().UnixMilli() < rec.ExpiredAt {
		return rec, true
	}
	if err := s.Del(key); err != nil {
		log.Printf("local: drop expired %q: %v", key, err)
	}
	return rec, false
}

// Del removes the record under key. Deleting a missing key is a no-op.
func (s *Store) Del(key string) error {
	if err := s.medium.RemoveItem(s.prefix + key); err != nil {
		return fmt.Errorf("del %q: %w", key, err)
	}
	return nil
}

// Empty deletes every record in this store's namespace. Keys of other namespaces
// on the same medium are left untouched.
func (s *Store) Empty() error {
	keys, err := s.medium.Keys()
	if err != nil {
		return fmt.Errorf("list keys: %w", err)
	}
	for _, k := range keys {
		if !strings.HasPrefix(k, s.prefix) {
			continue
		}
		if err := s.Del(strings.TrimPrefix(k, s.prefix)); err != nil {
			return err
		}
	}
	return nil
}

package layout

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Keys under which layout state is persisted. The names match the ones the
// host plugin used so existing stores stay readable.
const (
	KeyCustomOrder = "button_custom_order"
	KeyItemOrder   = "button_item_order"
	KeyHidden      = "button_hidden"
	KeyFolders     = "button_folders"
)

// Store is a synchronous key-value persistence layer.
// Get decodes the value under key into dst and reports whether it existed.
type Store interface {
	Get(key string, dst any) (bool, error)
	Set(key string, value any) error
}

// Load reads key from store, returning the zero value when it is absent.
func Load[T any](store Store, key string) (T, error) {
	var v T
	if _, err := store.Get(key, &v); err != nil {
		return v, fmt.Errorf("load %s: %w", key, err)
	}
	return v, nil
}

// MemoryStore keeps JSON-encoded values in memory
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]json.RawMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]json.RawMessage)}
}

func (m *MemoryStore) Get(key string, dst any) (bool, error) {
	m.mu.Lock()
	raw, ok := m.values[key]
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (m *MemoryStore) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	m.mu.Lock()
	m.values[key] = raw
	m.mu.Unlock()
	return nil
}

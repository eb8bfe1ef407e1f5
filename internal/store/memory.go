package store

import (
	"fmt"
	"sort"
	"sync"
)

// MemoryStore is an in-process key/value store. Setting FailWith makes every
// Save return that error, which is how persistence failures are simulated.
type MemoryStore struct {
	mu       sync.Mutex
	values   map[string]string
	saves    int
	FailWith error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Load(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Save(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return fmt.Errorf("save state %q: %w", key, m.FailWith)
	}
	m.values[key] = value
	m.saves++
	return nil
}

// Saves returns how many successful Save calls were made.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *MemoryStore) Keys() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

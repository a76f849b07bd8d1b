package store

import "sync"

// KV is the persistence boundary of the conversation store: a flat string
// key-value space. Get returns the empty string for a missing key.
type KV interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// MemKV is an in-memory KV used by tests and by sessions that do not need
// to survive a restart.
type MemKV struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemKV() *MemKV {
	return &MemKV{values: make(map[string]string)}
}

func (m *MemKV) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *MemKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

package client

import "sync"

// CodeStore remembers the last-used room code between connections. The
// embedding application chooses the scope: a browser bridge would back it
// with tab-scoped storage, a terminal client with process memory.
type CodeStore interface {
	Load() string
	Save(code string)
	Clear()
}

// MemoryStore is a process-local CodeStore.
type MemoryStore struct {
	mu   sync.Mutex
	code string
}

// NewMemoryStore creates an empty in-memory code store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the remembered code, or the empty string.
func (m *MemoryStore) Load() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.code
}

// Save remembers a code.
func (m *MemoryStore) Save(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.code = code
}

// Clear forgets the remembered code.
func (m *MemoryStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.code = ""
}

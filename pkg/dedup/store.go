// Package dedup persists the set of already-seen source item identifiers
// so a watcher never emits the same item twice. Stores are injected into
// adapters; an identifier is added only after its action document has been
// durably written.
package dedup

import "sync"

// Store is a persisted (or session-scoped) set of identifiers.
type Store interface {
	Contains(id string) (bool, error)
	Add(id string) error
}

// MemStore is a process-lifetime Store. Used for sources whose dedup
// state is only meaningful within one session, and in tests.
type MemStore struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{ids: make(map[string]struct{})}
}

func (s *MemStore) Contains(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok, nil
}

func (s *MemStore) Add(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[id] = struct{}{}
	return nil
}

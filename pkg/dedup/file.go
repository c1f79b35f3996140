package dedup

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
)

// FileStore keeps identifiers as a flat JSON list on disk. The whole set
// is loaded at open; every Add rewrites the file so a crash mid-cycle
// cannot lose dedup state for already-emitted items.
type FileStore struct {
	path string
	ids  map[string]struct{}
}

// OpenFileStore loads the identifier list at path. A missing file starts
// empty; an unreadable or corrupt file is treated as empty with a logged
// warning, never an error.
func OpenFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create dedup dir: %w", err)
	}

	s := &FileStore{path: path, ids: make(map[string]struct{})}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		log.Printf("Could not load processed ids (%v), starting fresh", err)
		return s, nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		log.Printf("Could not parse processed ids (%v), starting fresh", err)
		return s, nil
	}
	for _, id := range list {
		s.ids[id] = struct{}{}
	}
	return s, nil
}

func (s *FileStore) Contains(id string) (bool, error) {
	_, ok := s.ids[id]
	return ok, nil
}

// Add records id and persists the full set immediately.
func (s *FileStore) Add(id string) error {
	s.ids[id] = struct{}{}

	list := make([]string, 0, len(s.ids))
	for v := range s.ids {
		list = append(list, v)
	}
	sort.Strings(list)

	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to marshal processed ids: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to save processed ids: %w", err)
	}
	return nil
}

// Len reports the number of known identifiers.
func (s *FileStore) Len() int {
	return len(s.ids)
}

package dedup

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMemStore(t *testing.T) {
	s := NewMemStore()

	ok, err := s.Contains("a")
	if err != nil || ok {
		t.Fatalf("Contains on empty store = %v, %v", ok, err)
	}
	if err := s.Add("a"); err != nil {
		t.Fatal(err)
	}
	ok, _ = s.Contains("a")
	if !ok {
		t.Error("added id not found")
	}
}

func TestFileStorePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets", "processed_ids.json")

	s, err := OpenFileStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Add("abc123"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Add("def456"); err != nil {
		t.Fatalf("add: %v", err)
	}

	// Reopen: identifiers survive a restart.
	reopened, err := OpenFileStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	for _, id := range []string{"abc123", "def456"} {
		ok, _ := reopened.Contains(id)
		if !ok {
			t.Errorf("id %q lost across reopen", id)
		}
	}
	if reopened.Len() != 2 {
		t.Errorf("Len = %d, want 2", reopened.Len())
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_ids.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := OpenFileStore(path)
	if err != nil {
		t.Fatalf("corrupt file must not be fatal: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("corrupt file should start fresh, got %d ids", s.Len())
	}

	// And the store is usable afterwards.
	if err := s.Add("abc"); err != nil {
		t.Fatalf("add after recovery: %v", err)
	}
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLiteStore(":memory:", "gmail")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	ok, err := s.Contains("abc123")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("empty store reported id present")
	}

	if err := s.Add("abc123"); err != nil {
		t.Fatal(err)
	}
	ok, _ = s.Contains("abc123")
	if !ok {
		t.Error("added id not found")
	}

	// Adding twice is fine.
	if err := s.Add("abc123"); err != nil {
		t.Errorf("duplicate add: %v", err)
	}
}

func TestSQLiteStoreOnDisk(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "secrets", "dedup.db")

	s, err := OpenSQLiteStore(dbPath, "gmail")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Add("abc123"); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen: survives restart; a different source does not see the id.
	reopened, err := OpenSQLiteStore(dbPath, "gmail")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { reopened.Close() })

	ok, _ := reopened.Contains("abc123")
	if !ok {
		t.Error("id lost across reopen")
	}

	other, err := OpenSQLiteStore(dbPath, "whatsapp")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { other.Close() })
	ok, _ = other.Contains("abc123")
	if ok {
		t.Error("id leaked across sources")
	}
}

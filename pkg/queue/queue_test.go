package queue

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tkhan-dev/vaultwatch/pkg/action"
)

func TestWriterWrite(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	doc := action.Document{Filename: "DROP_note_20260101_1030.md", Content: "---\ntype: thought_drop\n---\n\nbody"}
	path, err := w.Write(doc)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != doc.Content {
		t.Errorf("content mismatch: %q", string(data))
	}

	// No temp files left behind.
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".queue-") {
			t.Errorf("leftover temp file: %s", e.Name())
		}
	}
}

func TestWriterCollision(t *testing.T) {
	w := NewWriter(t.TempDir())
	doc := action.Document{Filename: "EMAIL_abc123de_20260101.md", Content: "first"}

	if _, err := w.Write(doc); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if _, err := w.Write(doc); err == nil {
		t.Fatal("second write with same filename should fail")
	}

	// The first document must be untouched.
	data, _ := os.ReadFile(filepath.Join(w.Dir, doc.Filename))
	if string(data) != "first" {
		t.Errorf("original overwritten: %q", string(data))
	}
}

func TestMoveNoClobber(t *testing.T) {
	srcDir := t.TempDir()
	destDir := filepath.Join(t.TempDir(), "originals")
	now := time.Date(2026, 1, 1, 10, 30, 0, 0, time.UTC)

	writeSrc := func(content string) string {
		t.Helper()
		path := filepath.Join(srcDir, "note.md")
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	first, err := MoveNoClobber(writeSrc("one"), destDir, now)
	if err != nil {
		t.Fatalf("first move: %v", err)
	}
	if filepath.Base(first) != "note.md" {
		t.Errorf("first dest = %q", first)
	}

	second, err := MoveNoClobber(writeSrc("two"), destDir, now)
	if err != nil {
		t.Fatalf("second move: %v", err)
	}
	if filepath.Base(second) != "note_20260101_103000.md" {
		t.Errorf("second dest = %q", second)
	}

	// Both contents survived.
	one, _ := os.ReadFile(first)
	two, _ := os.ReadFile(second)
	if string(one) != "one" || string(two) != "two" {
		t.Errorf("contents = %q, %q", one, two)
	}

	// Same name and same timestamp: refuse rather than overwrite.
	if _, err := MoveNoClobber(writeSrc("three"), destDir, now); err == nil {
		t.Fatal("third move with identical collision suffix should fail")
	}
}

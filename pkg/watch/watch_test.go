package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAccept(t *testing.T) {
	w := New(t.TempDir(), []string{".md", ".txt"}, nil)

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"markdown allowed", "/vault/Drop_Here/note.md", true},
		{"text allowed", "/vault/Drop_Here/idea.txt", true},
		{"uppercase extension allowed", "/vault/Drop_Here/NOTE.MD", true},
		{"other extension rejected", "/vault/Drop_Here/photo.png", false},
		{"no extension rejected", "/vault/Drop_Here/README", false},
		{"duplicate path rejected", "/vault/Drop_Here/note.md", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.accept(tt.path); got != tt.want {
				t.Errorf("accept(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestRunDeliversCreatedFile(t *testing.T) {
	dir := t.TempDir()

	got := make(chan string, 1)
	w := New(dir, []string{".md"}, func(path string) {
		got <- path
	})
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher a moment to register before creating the file.
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(dir, "note.md")
	if err := os.WriteFile(path, []byte("idea X"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case p := <-got:
		if p != path {
			t.Errorf("handler path = %q, want %q", p, path)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("handler never invoked for created file")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop on cancellation")
	}
}

func TestRunIgnoresVanishedFile(t *testing.T) {
	dir := t.TempDir()

	called := make(chan string, 1)
	w := New(dir, []string{".md"}, func(path string) {
		called <- path
	})
	w.debounce = 200 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(dir, "ghost.md")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	// Remove it before the debounce elapses.
	time.Sleep(50 * time.Millisecond)
	os.Remove(path)

	select {
	case p := <-called:
		t.Errorf("handler invoked for vanished file %q", p)
	case <-time.After(600 * time.Millisecond):
	}
}

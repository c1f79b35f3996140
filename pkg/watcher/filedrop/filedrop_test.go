package filedrop

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tkhan-dev/vaultwatch/pkg/vault"
)

func setupAdapter(t *testing.T) (*Adapter, vault.Vault) {
	t.Helper()
	v := vault.New(t.TempDir())
	if err := v.EnsureLayout(); err != nil {
		t.Fatal(err)
	}
	a := New(v)
	a.now = func() time.Time {
		return time.Date(2026, 1, 1, 10, 30, 0, 0, time.UTC)
	}
	return a, v
}

func TestHandleDrop(t *testing.T) {
	a, v := setupAdapter(t)

	dropped := filepath.Join(v.DropHere(), "note.md")
	if err := os.WriteFile(dropped, []byte("idea X"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := a.HandleDrop(dropped); err != nil {
		t.Fatalf("HandleDrop: %v", err)
	}

	// Action document landed in the queue.
	queued := filepath.Join(v.NeedsAction(), "DROP_note_20260101_1030.md")
	data, err := os.ReadFile(queued)
	if err != nil {
		t.Fatalf("queued document missing: %v", err)
	}

	meta := vault.ParseFrontmatter(string(data))
	if meta["type"] != "thought_drop" {
		t.Errorf("type = %q", meta["type"])
	}
	if meta["source"] != "file_drop" {
		t.Errorf("source = %q", meta["source"])
	}
	if meta["status"] != "pending" {
		t.Errorf("status = %q", meta["status"])
	}
	if !strings.Contains(string(data), "idea X") {
		t.Error("raw content missing from document body")
	}

	// Original was archived, not left in the drop folder.
	if _, err := os.Stat(dropped); !os.IsNotExist(err) {
		t.Error("original still in drop folder")
	}
	if _, err := os.Stat(filepath.Join(v.DoneOriginals(), "note.md")); err != nil {
		t.Errorf("original not archived: %v", err)
	}
}

type recordingNotifier struct {
	queued []string
}

func (r *recordingNotifier) ActionQueued(filename, summary string) error {
	r.queued = append(r.queued, filename+"|"+summary)
	return nil
}

func (r *recordingNotifier) ActionCompleted(action, topic string) error { return nil }

func TestHandleDropNotifies(t *testing.T) {
	a, v := setupAdapter(t)
	notifier := &recordingNotifier{}
	a.Notifier = notifier

	dropped := filepath.Join(v.DropHere(), "note.md")
	if err := os.WriteFile(dropped, []byte("idea X"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := a.HandleDrop(dropped); err != nil {
		t.Fatalf("HandleDrop: %v", err)
	}

	want := "DROP_note_20260101_1030.md|Dropped file: note.md"
	if len(notifier.queued) != 1 || notifier.queued[0] != want {
		t.Errorf("notifications = %v, want [%s]", notifier.queued, want)
	}
}

func TestHandleDropArchiveCollision(t *testing.T) {
	a, v := setupAdapter(t)

	// A file with the same name was archived earlier.
	if err := os.WriteFile(filepath.Join(v.DoneOriginals(), "note.md"), []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	dropped := filepath.Join(v.DropHere(), "note.md")
	if err := os.WriteFile(dropped, []byte("new idea"), 0644); err != nil {
		t.Fatal(err)
	}

	// The queued name collides with nothing, but the archive name does;
	// the archived copy must get a timestamp suffix.
	if err := a.HandleDrop(dropped); err != nil {
		t.Fatalf("HandleDrop: %v", err)
	}

	old, _ := os.ReadFile(filepath.Join(v.DoneOriginals(), "note.md"))
	if string(old) != "old" {
		t.Error("earlier archive overwritten")
	}
	suffixed, err := os.ReadFile(filepath.Join(v.DoneOriginals(), "note_20260101_103000.md"))
	if err != nil {
		t.Fatalf("suffixed archive missing: %v", err)
	}
	if string(suffixed) != "new idea" {
		t.Errorf("suffixed archive content = %q", suffixed)
	}
}

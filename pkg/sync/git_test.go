package sync

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5"
)

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if _, err := git.PlainInit(dir, false); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestEnabled(t *testing.T) {
	repo := initRepo(t)
	if !NewManager(repo).Enabled() {
		t.Error("initialized repo reported disabled")
	}
	if NewManager(t.TempDir()).Enabled() {
		t.Error("plain directory reported enabled")
	}
}

func TestSyncCleanWorktreeIsNoop(t *testing.T) {
	m := NewManager(initRepo(t))
	if err := m.Sync("nothing to do"); err != nil {
		t.Fatalf("clean worktree should sync without error: %v", err)
	}
}

func TestSyncNotARepo(t *testing.T) {
	m := NewManager(t.TempDir())
	if err := m.Sync(""); err == nil {
		t.Fatal("expected an error outside a repository")
	}
}

func TestSyncCommitsChanges(t *testing.T) {
	dir := initRepo(t)
	if err := os.WriteFile(filepath.Join(dir, "Dashboard.md"), []byte("# hi\n"), 0644); err != nil {
		t.Fatal(err)
	}

	// No remote is configured, so the push must fail after the commit
	// lands.
	m := NewManager(dir)
	err := m.Sync("Completed: email_reply")
	if err == nil || !strings.Contains(err.Error(), "push") {
		t.Fatalf("err = %v, want push failure", err)
	}

	r, _ := git.PlainOpen(dir)
	head, err := r.Head()
	if err != nil {
		t.Fatalf("no commit created: %v", err)
	}
	commit, _ := r.CommitObject(head.Hash())
	if commit.Message != "Completed: email_reply" {
		t.Errorf("commit message = %q", commit.Message)
	}
}

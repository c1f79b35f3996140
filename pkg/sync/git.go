// Package sync commits and pushes vault changes after each completed
// action, so the vault history doubles as an audit trail.
package sync

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// Manager handles git operations on the vault repository.
type Manager struct {
	RepoPath string
}

// NewManager creates a Manager for the given vault root.
func NewManager(repoPath string) *Manager {
	return &Manager{RepoPath: repoPath}
}

// Enabled reports whether the vault is a git repository at all. A vault
// without one simply skips syncing.
func (m *Manager) Enabled() bool {
	info, err := os.Stat(filepath.Join(m.RepoPath, ".git"))
	return err == nil && info.IsDir()
}

// Sync stages everything, commits and pushes. A clean worktree and an
// up-to-date remote both count as success.
func (m *Manager) Sync(message string) error {
	r, err := git.PlainOpen(m.RepoPath)
	if err != nil {
		return fmt.Errorf("failed to open repo: %w", err)
	}

	w, err := r.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	if _, err := w.Add("."); err != nil {
		return fmt.Errorf("failed to add changes: %w", err)
	}

	status, err := w.Status()
	if err != nil {
		return fmt.Errorf("failed to read status: %w", err)
	}
	if status.IsClean() {
		return nil
	}

	if message == "" {
		message = fmt.Sprintf("Auto-sync: %s", time.Now().Format(time.RFC3339))
	}
	_, err = w.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "vaultwatch",
			Email: "vaultwatch@localhost",
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	// go-git has no credential helper support, so push with the default
	// SSH key when one loads and bare otherwise.
	home, _ := os.UserHomeDir()
	keyPath := filepath.Join(home, ".ssh", "id_rsa")

	publicKeys, keyErr := ssh.NewPublicKeysFromFile("git", keyPath, "")
	if keyErr != nil {
		log.Printf("Could not load SSH key: %v, pushing without explicit auth", keyErr)
		err = r.Push(&git.PushOptions{})
	} else {
		err = r.Push(&git.PushOptions{Auth: publicKeys})
	}
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return fmt.Errorf("failed to push: %w", err)
	}
	return nil
}

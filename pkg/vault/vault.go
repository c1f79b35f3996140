package vault

import (
	"os"
	"path/filepath"
)

// Vault describes the folder layout shared by all watchers and the
// orchestrator. The directories act as the work queue: watchers write to
// Needs_Action/, the approval workflow moves files into Approved/, and the
// orchestrator retires them to Done/.
type Vault struct {
	Root string
}

// New returns a Vault rooted at the given path.
func New(root string) Vault {
	return Vault{Root: root}
}

// DropHere is the inbox folder watched by the file drop adapter.
func (v Vault) DropHere() string {
	return filepath.Join(v.Root, "Drop_Here")
}

// NeedsAction is the shared queue directory for new action documents.
func (v Vault) NeedsAction() string {
	return filepath.Join(v.Root, "Needs_Action")
}

// PendingApproval holds drafts awaiting human review (written externally).
func (v Vault) PendingApproval() string {
	return filepath.Join(v.Root, "Pending_Approval")
}

// Approved is watched by the orchestrator.
func (v Vault) Approved() string {
	return filepath.Join(v.Root, "Approved")
}

// Done holds completed action documents.
func (v Vault) Done() string {
	return filepath.Join(v.Root, "Done")
}

// DoneOriginals holds archived source files from the drop folder.
func (v Vault) DoneOriginals() string {
	return filepath.Join(v.Root, "Done", "originals")
}

// Logs holds the per-day JSON journals.
func (v Vault) Logs() string {
	return filepath.Join(v.Root, "Logs")
}

// Dashboard is the human-readable status document.
func (v Vault) Dashboard() string {
	return filepath.Join(v.Root, "Dashboard.md")
}

// EnsureLayout creates every directory the pipeline writes to.
func (v Vault) EnsureLayout() error {
	dirs := []string{
		v.DropHere(),
		v.NeedsAction(),
		v.PendingApproval(),
		v.Approved(),
		v.Done(),
		v.DoneOriginals(),
		v.Logs(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// Package filedrop turns files dropped into the vault's Drop_Here folder
// into queued thought_drop action documents.
package filedrop

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/tkhan-dev/vaultwatch/pkg/action"
	"github.com/tkhan-dev/vaultwatch/pkg/notify"
	"github.com/tkhan-dev/vaultwatch/pkg/queue"
	"github.com/tkhan-dev/vaultwatch/pkg/vault"
	"github.com/tkhan-dev/vaultwatch/pkg/watch"
)

// AllowedExtensions is the drop-folder allow-list.
var AllowedExtensions = []string{".md", ".txt"}

// Adapter reacts to files created in the drop folder.
type Adapter struct {
	vault vault.Vault
	queue *queue.Writer
	now   func() time.Time

	// Notifier, when set, is pinged for every queued document.
	Notifier notify.Notifier
}

// New returns an Adapter writing into v's queue directory.
func New(v vault.Vault) *Adapter {
	return &Adapter{
		vault: v,
		queue: queue.NewWriter(v.NeedsAction()),
		now:   time.Now,
	}
}

// Run watches the drop folder until ctx is cancelled.
func (a *Adapter) Run(ctx context.Context) error {
	w := watch.New(a.vault.DropHere(), AllowedExtensions, func(path string) {
		if err := a.HandleDrop(path); err != nil {
			log.Printf("Error processing dropped file %s: %v", filepath.Base(path), err)
		}
	})
	return w.Run(ctx)
}

// HandleDrop builds and queues an action document for the dropped file,
// then archives the original under Done/originals/. The queue write
// happens first: if archival fails the worst case is a re-emission, never
// a lost drop.
func (a *Adapter) HandleDrop(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read dropped file: %w", err)
	}

	now := a.now().UTC()
	doc, err := action.BuildThoughtDrop(filepath.Base(path), string(raw), now)
	if err != nil {
		return fmt.Errorf("failed to build action document: %w", err)
	}

	if _, err := a.queue.Write(doc); err != nil {
		return fmt.Errorf("failed to queue action document: %w", err)
	}

	if _, err := queue.MoveNoClobber(path, a.vault.DoneOriginals(), now); err != nil {
		return fmt.Errorf("failed to archive original: %w", err)
	}

	if a.Notifier != nil {
		if err := a.Notifier.ActionQueued(doc.Filename, "Dropped file: "+filepath.Base(path)); err != nil {
			log.Printf("Notification for %s failed: %v", doc.Filename, err)
		}
	}

	log.Printf("Created action file: %s", doc.Filename)
	return nil
}

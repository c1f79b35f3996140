// Package orchestrator consumes approved action documents: it watches the
// Approved/ folder and, per file, executes the completion sequence of
// archive, dashboard update, notification and git sync. Dry-run mode logs
// and journals what would happen without touching anything.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tkhan-dev/vaultwatch/pkg/dashboard"
	"github.com/tkhan-dev/vaultwatch/pkg/journal"
	"github.com/tkhan-dev/vaultwatch/pkg/notify"
	"github.com/tkhan-dev/vaultwatch/pkg/queue"
	"github.com/tkhan-dev/vaultwatch/pkg/sync"
	"github.com/tkhan-dev/vaultwatch/pkg/vault"
	"github.com/tkhan-dev/vaultwatch/pkg/watch"
)

// Orchestrator executes approved actions. Every collaborator except the
// vault is optional: nil notifier means no notifications, nil git means
// no syncing.
type Orchestrator struct {
	vault    vault.Vault
	journal  *journal.Appender
	patcher  *dashboard.Patcher
	notifier notify.Notifier
	git      *sync.Manager

	// DryRun suppresses every side effect except the journal entry.
	DryRun bool

	now func() time.Time
}

// New wires an Orchestrator over the vault.
func New(v vault.Vault, notifier notify.Notifier, git *sync.Manager) *Orchestrator {
	return &Orchestrator{
		vault:    v,
		journal:  journal.NewAppender(v.Logs()),
		patcher:  dashboard.NewPatcher(v.Dashboard()),
		notifier: notifier,
		git:      git,
		DryRun:   true,
		now:      time.Now,
	}
}

// Run processes files appearing in Approved/ until ctx is cancelled.
// Files already present at startup are handled first.
func (o *Orchestrator) Run(ctx context.Context) error {
	if err := o.processBacklog(); err != nil {
		return err
	}

	w := watch.New(o.vault.Approved(), []string{".md"}, func(path string) {
		if err := o.Process(path); err != nil {
			log.Printf("Failed to execute %s: %v", filepath.Base(path), err)
		}
	})
	return w.Run(ctx)
}

func (o *Orchestrator) processBacklog() error {
	entries, err := os.ReadDir(o.vault.Approved())
	if err != nil {
		return fmt.Errorf("failed to read approved folder: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		path := filepath.Join(o.vault.Approved(), e.Name())
		if err := o.Process(path); err != nil {
			log.Printf("Failed to execute %s: %v", e.Name(), err)
		}
	}
	return nil
}

// Process executes one approved document. On any step failure the file
// stays in Approved/ so a rerun picks it up again. A file that vanished
// before processing is not an error.
func (o *Orchestrator) Process(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	filename := filepath.Base(path)
	meta := vault.ParseFrontmatter(string(data))

	act := meta["action"]
	if act == "" {
		act = meta["type"]
	}
	if act == "" {
		act = "unknown"
	}
	topic := meta["topic"]
	if topic == "" {
		topic = filename
	}

	now := o.now().UTC()

	if o.DryRun {
		log.Printf("[DRY RUN] Would execute %s: %s (%s)", act, topic, filename)
	} else {
		log.Printf("Executing %s: %s (%s)", act, topic, filename)
	}

	entry := journal.Entry{
		Timestamp:  now.Format("2006-01-02T15:04:05Z"),
		Component:  "orchestrator",
		Level:      "info",
		Action:     act,
		Topic:      topic,
		SourceFile: filename,
		DryRun:     o.DryRun,
		Result:     "completed",
	}
	if err := o.journal.Append(entry, now); err != nil {
		return fmt.Errorf("failed to journal %s: %w", filename, err)
	}

	if o.DryRun {
		return nil
	}

	if _, err := queue.MoveNoClobber(path, o.vault.Done(), now); err != nil {
		return fmt.Errorf("failed to archive %s: %w", filename, err)
	}

	if err := o.patcher.Apply(dashboard.Update{
		Filename: filename,
		Action:   act,
		Topic:    topic,
		Now:      now,
	}); err != nil {
		return fmt.Errorf("failed to update dashboard: %w", err)
	}

	if o.notifier != nil {
		if err := o.notifier.ActionCompleted(act, topic); err != nil {
			log.Printf("Notification for %s failed: %v", filename, err)
		}
	}

	if o.git != nil && o.git.Enabled() {
		msg := fmt.Sprintf("Completed: %s (%s)", act, topic)
		if err := o.git.Sync(msg); err != nil {
			log.Printf("Git sync after %s failed: %v", filename, err)
		}
	}

	return nil
}

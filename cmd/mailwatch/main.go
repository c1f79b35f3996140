package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/tkhan-dev/vaultwatch/pkg/dedup"
	"github.com/tkhan-dev/vaultwatch/pkg/notify"
	"github.com/tkhan-dev/vaultwatch/pkg/queue"
	"github.com/tkhan-dev/vaultwatch/pkg/vault"
	"github.com/tkhan-dev/vaultwatch/pkg/watcher/mail"
)

func main() {
	vaultPath := flag.String("vault", "", "Path to the vault root")
	credentials := flag.String("credentials", "credentials.json", "Path to OAuth client credentials")
	token := flag.String("token", "token.json", "Path to the stored OAuth token")
	interval := flag.Duration("interval", mail.DefaultInterval, "Poll interval")
	maxResults := flag.Int64("max", mail.DefaultPageSize, "Max unread messages per poll")
	dedupKind := flag.String("dedup", "file", "Dedup store: file or sqlite")
	dedupPath := flag.String("dedup-path", "", "Dedup state path (defaults inside the vault)")
	flag.Parse()

	if *vaultPath == "" {
		log.Fatal("Please provide -vault path")
	}

	v := vault.New(*vaultPath)
	if err := v.EnsureLayout(); err != nil {
		log.Fatalf("Failed to prepare vault layout: %v", err)
	}

	notifier, err := notify.FromEnv()
	if err != nil {
		log.Fatalf("Notifier configuration invalid: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(*dedupKind, *dedupPath, *vaultPath)
	if err != nil {
		log.Fatalf("Failed to open dedup store: %v", err)
	}

	// log.Fatalf skips deferred cleanup, so the store is closed
	// explicitly on every exit path.
	err = run(ctx, v, store, notifier, *credentials, *token, *interval, *maxResults)
	closeStore()
	if err != nil {
		log.Fatalf("Mail watcher failed: %v", err)
	}
}

func run(ctx context.Context, v vault.Vault, store dedup.Store, notifier notify.Notifier, credentials, token string, interval time.Duration, maxResults int64) error {
	httpClient, err := mail.NewHTTPClient(ctx, credentials, token)
	if err != nil {
		return err
	}
	client, err := mail.NewClient(ctx, httpClient)
	if err != nil {
		return err
	}

	poller := mail.NewPoller(client, store, queue.NewWriter(v.NeedsAction()))
	poller.Interval = interval
	poller.PageSize = maxResults
	poller.Notifier = notifier

	log.Printf("Polling mailbox every %s", interval)
	return poller.Run(ctx)
}

func openStore(kind, path, vaultPath string) (dedup.Store, func(), error) {
	switch kind {
	case "sqlite":
		if path == "" {
			path = filepath.Join(vaultPath, ".vaultwatch.db")
		}
		store, err := dedup.OpenSQLiteStore(path, "gmail")
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	case "file":
		if path == "" {
			path = filepath.Join(vaultPath, ".processed_emails.json")
		}
		store, err := dedup.OpenFileStore(path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	default:
		log.Fatalf("Unknown dedup store %q", kind)
		return nil, nil, nil
	}
}

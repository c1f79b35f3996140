package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tkhan-dev/vaultwatch/pkg/dedup"
	"github.com/tkhan-dev/vaultwatch/pkg/queue"
	"github.com/tkhan-dev/vaultwatch/pkg/vault"
	"github.com/tkhan-dev/vaultwatch/pkg/watcher/whatsapp"
)

func main() {
	vaultPath := flag.String("vault", "", "Path to the vault root")
	profileDir := flag.String("profile", ".whatsapp-profile", "Browser profile directory (keeps the session paired)")
	interval := flag.Duration("interval", whatsapp.DefaultInterval, "Scan interval")
	firstRun := flag.Bool("first-run", false, "Run the browser visible for the initial QR pairing")
	flag.Parse()

	if *vaultPath == "" {
		log.Fatal("Please provide -vault path")
	}

	v := vault.New(*vaultPath)
	if err := v.EnsureLayout(); err != nil {
		log.Fatalf("Failed to prepare vault layout: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	headless := !*firstRun
	if headless && profileEmpty(*profileDir) {
		log.Printf("Profile %s is empty, running visible for QR pairing", *profileDir)
		headless = false
	}

	session := whatsapp.NewSession(*profileDir, headless)
	if err := session.Connect(ctx); err != nil {
		log.Fatalf("Could not establish WhatsApp session: %v", err)
	}

	poller := whatsapp.NewPoller(session, dedup.NewMemStore(), queue.NewWriter(v.NeedsAction()))
	poller.Interval = *interval

	log.Printf("Scanning WhatsApp Web every %s", *interval)
	err := poller.Run(ctx)

	// log.Fatalf skips deferred cleanup, so the browser is torn down
	// explicitly before any fatal exit.
	session.Close()
	if err != nil {
		log.Fatalf("Poller stopped: %v", err)
	}
}

// profileEmpty reports whether dir is missing or has no entries, meaning
// no browser session has ever been paired there.
func profileEmpty(dir string) bool {
	entries, err := os.ReadDir(dir)
	return err != nil || len(entries) == 0
}

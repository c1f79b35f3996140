package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/tkhan-dev/vaultwatch/pkg/notify"
	"github.com/tkhan-dev/vaultwatch/pkg/vault"
	"github.com/tkhan-dev/vaultwatch/pkg/watcher/filedrop"
)

func main() {
	vaultPath := flag.String("vault", "", "Path to the vault root")
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

	notifier, err := notify.FromEnv()
	if err != nil {
		log.Fatalf("Notifier configuration invalid: %v", err)
	}

	adapter := filedrop.New(v)
	adapter.Notifier = notifier
	log.Printf("Watching %s for dropped files", v.DropHere())
	if err := adapter.Run(ctx); err != nil {
		log.Fatalf("Watcher stopped: %v", err)
	}
}

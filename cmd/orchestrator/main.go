package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/tkhan-dev/vaultwatch/pkg/notify"
	"github.com/tkhan-dev/vaultwatch/pkg/orchestrator"
	"github.com/tkhan-dev/vaultwatch/pkg/sync"
	"github.com/tkhan-dev/vaultwatch/pkg/vault"
)

func main() {
	vaultPath := flag.String("vault", "", "Path to the vault root")
	dryRun := flag.Bool("dry-run", true, "Log and journal actions without executing them")
	gitSync := flag.Bool("git-sync", false, "Commit and push the vault after each completed action")
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

	var git *sync.Manager
	if *gitSync {
		git = sync.NewManager(*vaultPath)
		if !git.Enabled() {
			log.Fatal("-git-sync requires the vault to be a git repository")
		}
	}

	o := orchestrator.New(v, notifier, git)
	o.DryRun = *dryRun
	if *dryRun {
		log.Printf("Running in dry-run mode, no actions will be executed")
	}

	log.Printf("Watching %s for approved actions", v.Approved())
	if err := o.Run(ctx); err != nil {
		log.Fatalf("Orchestrator stopped: %v", err)
	}
}

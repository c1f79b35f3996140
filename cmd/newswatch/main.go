package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/tkhan-dev/vaultwatch/pkg/queue"
	"github.com/tkhan-dev/vaultwatch/pkg/schedule"
	"github.com/tkhan-dev/vaultwatch/pkg/vault"
	"github.com/tkhan-dev/vaultwatch/pkg/watcher/news"
)

func main() {
	vaultPath := flag.String("vault", "", "Path to the vault root")
	topicsFlag := flag.String("topics", "", "Comma-separated topics to sweep")
	cronExpr := flag.String("schedule", "", "Cron expression for repeated sweeps (empty runs once)")
	timezone := flag.String("tz", "", "Timezone for the schedule (default UTC)")
	flag.Parse()

	if *vaultPath == "" {
		log.Fatal("Please provide -vault path")
	}
	apiKey := os.Getenv("SEARCH_API_KEY")
	if apiKey == "" {
		log.Fatal("SEARCH_API_KEY environment variable is required")
	}
	engineID := os.Getenv("SEARCH_ENGINE_ID")
	if engineID == "" {
		log.Fatal("SEARCH_ENGINE_ID environment variable is required")
	}

	var topics []string
	for _, t := range strings.Split(*topicsFlag, ",") {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}
	if len(topics) == 0 {
		log.Fatal("Please provide -topics")
	}

	v := vault.New(*vaultPath)
	if err := v.EnsureLayout(); err != nil {
		log.Fatalf("Failed to prepare vault layout: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	search, err := news.NewCustomSearch(ctx, apiKey, engineID)
	if err != nil {
		log.Fatalf("Failed to create search client: %v", err)
	}
	runner := news.NewRunner(search, queue.NewWriter(v.NeedsAction()), topics)

	if *cronExpr == "" {
		if err := runner.RunOnce(ctx); err != nil {
			log.Fatalf("News sweep failed: %v", err)
		}
		return
	}

	log.Printf("Sweeping %d topics on schedule %q", len(topics), *cronExpr)
	if err := schedule.Loop(ctx, "cron", *cronExpr, *timezone, runner.RunOnce); err != nil {
		log.Fatalf("Scheduler stopped: %v", err)
	}
}

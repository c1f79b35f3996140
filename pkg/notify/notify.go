// Package notify pushes short status messages to chat channels. The
// orchestrator is the only caller; a notification failure never blocks
// the pipeline.
package notify

import (
	"fmt"
	"log"
	"os"
	"strconv"
)

// Notifier receives pipeline events.
type Notifier interface {
	// ActionQueued fires when a new action document enters the queue.
	ActionQueued(filename, summary string) error
	// ActionCompleted fires after an approved action has been executed.
	ActionCompleted(action, topic string) error
}

// Multi fans an event out to several notifiers. Individual failures are
// logged; the fan-out itself never fails.
type Multi []Notifier

func (m Multi) ActionQueued(filename, summary string) error {
	for _, n := range m {
		if err := n.ActionQueued(filename, summary); err != nil {
			log.Printf("Notification failed: %v", err)
		}
	}
	return nil
}

func (m Multi) ActionCompleted(action, topic string) error {
	for _, n := range m {
		if err := n.ActionCompleted(action, topic); err != nil {
			log.Printf("Notification failed: %v", err)
		}
	}
	return nil
}

// FromEnv assembles the fan-out from whatever channels the environment
// configures (TELEGRAM_TOKEN/TELEGRAM_CHAT_ID, DISCORD_TOKEN/
// DISCORD_CHANNEL_ID). No channels configured yields a nil Notifier.
func FromEnv() (Notifier, error) {
	var notifiers Multi

	if token := os.Getenv("TELEGRAM_TOKEN"); token != "" {
		chatIDStr := os.Getenv("TELEGRAM_CHAT_ID")
		chatID, err := strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", chatIDStr, err)
		}
		tg, err := NewTelegram(token, chatID)
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, tg)
		log.Printf("Telegram notifications enabled")
	}

	if token := os.Getenv("DISCORD_TOKEN"); token != "" {
		channelID := os.Getenv("DISCORD_CHANNEL_ID")
		if channelID == "" {
			return nil, fmt.Errorf("DISCORD_CHANNEL_ID is required when DISCORD_TOKEN is set")
		}
		dc, err := NewDiscord(token, channelID)
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, dc)
		log.Printf("Discord notifications enabled")
	}

	if len(notifiers) == 0 {
		return nil, nil
	}
	return notifiers, nil
}

func queuedText(filename, summary string) string {
	return fmt.Sprintf("📥 New action queued: %s\n%s", filename, summary)
}

func completedText(action, topic string) string {
	return fmt.Sprintf("✅ Completed %s: %s", action, topic)
}

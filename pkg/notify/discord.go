package notify

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Discord sends notifications to a single channel. Messages go over the
// REST API only, so no gateway connection is opened.
type Discord struct {
	session   *discordgo.Session
	channelID string
}

// NewDiscord creates a Discord notifier.
func NewDiscord(token, channelID string) (*Discord, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	return &Discord{session: session, channelID: channelID}, nil
}

func (d *Discord) send(text string) error {
	if _, err := d.session.ChannelMessageSend(d.channelID, text); err != nil {
		return fmt.Errorf("discord send failed: %w", err)
	}
	return nil
}

func (d *Discord) ActionQueued(filename, summary string) error {
	return d.send(queuedText(filename, summary))
}

func (d *Discord) ActionCompleted(action, topic string) error {
	return d.send(completedText(action, topic))
}

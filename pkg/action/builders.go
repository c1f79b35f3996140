package action

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/tkhan-dev/vaultwatch/pkg/vault"
)

// Front-matter schemas. No two sources share a schema, but all carry
// type, source, created and status: pending.

type dropMeta struct {
	Type         string `yaml:"type"`
	Source       string `yaml:"source"`
	OriginalFile string `yaml:"original_file"`
	Created      string `yaml:"created"`
	Status       string `yaml:"status"`
}

type emailMeta struct {
	Type     string `yaml:"type"`
	Source   string `yaml:"source"`
	From     string `yaml:"from"`
	Subject  string `yaml:"subject"`
	MsgID    string `yaml:"msg_id"`
	Received string `yaml:"received"`
	Created  string `yaml:"created"`
	Status   string `yaml:"status"`
}

type chatMeta struct {
	Type        string `yaml:"type"`
	Source      string `yaml:"source"`
	Contact     string `yaml:"contact"`
	UnreadCount int    `yaml:"unread_count"`
	Created     string `yaml:"created"`
	Status      string `yaml:"status"`
}

type newsMeta struct {
	Type         string `yaml:"type"`
	Topic        string `yaml:"topic"`
	Source       string `yaml:"source"`
	ArticleTitle string `yaml:"article_title"`
	ArticleURL   string `yaml:"article_url"`
	Created      string `yaml:"created"`
	Status       string `yaml:"status"`
}

const replyInstructions = `## Instructions for the Assistant

Read the content above. Use the classify_message skill to:
1. Classify priority (urgent/normal/low/flagged)
2. Draft a reply following the Company_Handbook.md tone rules
3. Save the approval request to /Pending_Approval/
`

const postInstructions = `## Instructions for the Assistant

Read the content above. Use the draft_linkedin_post skill to create a
polished post. Read /Company_Handbook.md for tone and identity rules.
Save the approval request to /Pending_Approval/ and wait for human approval.
`

// BuildThoughtDrop builds a document for a file dropped into the watch
// folder. originalName is the dropped file's base name.
func BuildThoughtDrop(originalName, rawContent string, now time.Time) (Document, error) {
	stem := strings.TrimSuffix(originalName, filepath.Ext(originalName))
	filename := fmt.Sprintf("DROP_%s_%s.md", stem, now.UTC().Format(timestampShort))

	meta := dropMeta{
		Type:         "thought_drop",
		Source:       "file_drop",
		OriginalFile: originalName,
		Created:      iso(now),
		Status:       "pending",
	}
	body := fmt.Sprintf("## Raw Content\n\n%s\n\n%s", rawContent, postInstructions)

	content, err := vault.RenderNote(meta, body)
	if err != nil {
		return Document{}, err
	}
	return Document{Filename: filename, Content: content}, nil
}

// EmailItem is a normalized unread email.
type EmailItem struct {
	ID      string
	From    string
	Subject string
	Date    string
	Body    string
}

// BuildEmail builds a document for an unread email. The filename embeds a
// prefix of the provider message id, which is the dedup identifier.
func BuildEmail(item EmailItem, now time.Time) (Document, error) {
	id := item.ID
	if len(id) > 8 {
		id = id[:8]
	}
	filename := fmt.Sprintf("EMAIL_%s_%s.md", id, now.UTC().Format(timestampDate))

	from := item.From
	if from == "" {
		from = "(unknown sender)"
	}
	subject := item.Subject
	if subject == "" {
		subject = "No Subject"
	}
	date := item.Date
	if date == "" {
		date = "(no date)"
	}
	body := item.Body
	if strings.TrimSpace(body) == "" {
		body = "(no plain-text body available)"
	}

	meta := emailMeta{
		Type:     "email",
		Source:   "gmail",
		From:     from,
		Subject:  subject,
		MsgID:    item.ID,
		Received: date,
		Created:  iso(now),
		Status:   "pending",
	}
	content := fmt.Sprintf(
		"## Email Content\n\n**From:** %s\n**Subject:** %s\n**Date:** %s\n\n%s\n\n%s",
		from, subject, date, body, replyInstructions,
	)

	rendered, err := vault.RenderNote(meta, content)
	if err != nil {
		return Document{}, err
	}
	return Document{Filename: filename, Content: rendered}, nil
}

// ChatMessage is one extracted message from an open conversation.
type ChatMessage struct {
	Sender    string
	Text      string
	Timestamp string
}

// ChatItem is a normalized unread conversation.
type ChatItem struct {
	Contact     string
	UnreadCount int
	Messages    []ChatMessage
}

// BuildWhatsApp builds a document for an unread WhatsApp conversation.
// The contact slug in the filename is capped at 30 characters.
func BuildWhatsApp(item ChatItem, now time.Time) (Document, error) {
	filename := fmt.Sprintf("WHATSAPP_%s_%s.md",
		Slug(item.Contact, 30), now.UTC().Format(timestampShort))

	var context []string
	for _, msg := range item.Messages {
		prefix := ""
		if msg.Timestamp != "" {
			prefix = fmt.Sprintf("[%s] ", msg.Timestamp)
		}
		context = append(context, fmt.Sprintf("%s**%s**: %s", prefix, msg.Sender, msg.Text))
	}
	contextBlock := "(no message history extracted)"
	if len(context) > 0 {
		contextBlock = strings.Join(context, "\n")
	}

	latestText := "(no text)"
	latestTS := iso(now)
	if n := len(item.Messages); n > 0 {
		latestText = item.Messages[n-1].Text
		if ts := item.Messages[n-1].Timestamp; ts != "" {
			latestTS = ts
		}
	}

	meta := chatMeta{
		Type:        "whatsapp",
		Source:      "whatsapp",
		Contact:     item.Contact,
		UnreadCount: item.UnreadCount,
		Created:     iso(now),
		Status:      "pending",
	}
	body := fmt.Sprintf(
		"## Conversation Context\n\n%s\n\n## Latest Unread Message\n\n**From:** %s\n**Message:** %s\n**Received:** %s\n\n%s",
		contextBlock, item.Contact, latestText, latestTS, replyInstructions,
	)

	content, err := vault.RenderNote(meta, body)
	if err != nil {
		return Document{}, err
	}
	return Document{Filename: filename, Content: content}, nil
}

// NewsItem is the top search result for one topic.
type NewsItem struct {
	Topic     string
	Title     string
	URL       string
	Published string
	Snippet   string
}

// BuildNews builds a document for a fetched article.
func BuildNews(item NewsItem, now time.Time) (Document, error) {
	filename := fmt.Sprintf("NEWS_%s_%s.md",
		now.UTC().Format(timestampDate), Slug(item.Topic, 0))

	title := item.Title
	if title == "" {
		title = "Unknown title"
	}
	published := item.Published
	if published == "" {
		published = "Not available"
	}
	snippet := item.Snippet
	if snippet == "" {
		snippet = "No content available."
	}

	meta := newsMeta{
		Type:         "tech_news",
		Topic:        item.Topic,
		Source:       "search",
		ArticleTitle: title,
		ArticleURL:   item.URL,
		Created:      iso(now),
		Status:       "pending",
	}
	body := fmt.Sprintf(
		"## Article\n\n**Title**: %s\n**URL**: %s\n**Published**: %s\n\n## Snippet\n\n%s\n\n%s",
		title, item.URL, published, snippet, postInstructions,
	)

	content, err := vault.RenderNote(meta, body)
	if err != nil {
		return Document{}, err
	}
	return Document{Filename: filename, Content: content}, nil
}

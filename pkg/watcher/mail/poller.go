package mail

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"

	"github.com/tkhan-dev/vaultwatch/pkg/action"
	"github.com/tkhan-dev/vaultwatch/pkg/dedup"
	"github.com/tkhan-dev/vaultwatch/pkg/notify"
	"github.com/tkhan-dev/vaultwatch/pkg/queue"
)

const (
	// DefaultInterval between poll cycles.
	DefaultInterval = 2 * time.Minute
	// DefaultCooldown after a rate-limit response.
	DefaultCooldown = time.Minute
	// DefaultPageSize bounds how many unread messages one cycle looks at.
	DefaultPageSize = 10
)

var errRateLimited = errors.New("rate limited")

// Poller runs the mailbox poll loop.
type Poller struct {
	mailbox  Mailbox
	store    dedup.Store
	queue    *queue.Writer
	Interval time.Duration
	Cooldown time.Duration
	PageSize int64

	// Notifier, when set, is pinged for every queued document.
	Notifier notify.Notifier

	now func() time.Time
}

// NewPoller wires a Poller from its collaborators.
func NewPoller(mailbox Mailbox, store dedup.Store, q *queue.Writer) *Poller {
	return &Poller{
		mailbox:  mailbox,
		store:    store,
		queue:    q,
		Interval: DefaultInterval,
		Cooldown: DefaultCooldown,
		PageSize: DefaultPageSize,
		now:      time.Now,
	}
}

// Run polls until ctx is cancelled. A rate-limited cycle extends the wait
// to the cooldown if that is longer than the regular interval; it never
// stacks on top of it.
func (p *Poller) Run(ctx context.Context) error {
	for {
		wait := p.Interval
		if err := p.PollOnce(ctx); err != nil {
			if errors.Is(err, errRateLimited) {
				log.Printf("Mailbox rate limit hit, cooling down")
				if p.Cooldown > wait {
					wait = p.Cooldown
				}
			} else {
				log.Printf("Mail poll failed: %v", err)
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

// PollOnce runs one cycle: list unread, skip known ids, fetch and queue
// the rest. Rate limiting aborts the cycle (nothing gets marked
// processed); any other per-item failure is logged and skipped.
func (p *Poller) PollOnce(ctx context.Context) error {
	ids, err := p.mailbox.ListUnread(ctx, p.PageSize)
	if err != nil {
		if isRateLimited(err) {
			return errRateLimited
		}
		return err
	}

	for _, id := range ids {
		seen, err := p.store.Contains(id)
		if err != nil {
			log.Printf("Dedup lookup for %s failed: %v, skipping", id, err)
			continue
		}
		if seen {
			continue
		}

		msg, err := p.mailbox.Get(ctx, id)
		if err != nil {
			if isRateLimited(err) {
				return errRateLimited
			}
			log.Printf("Could not fetch message %s: %v, skipping", id, err)
			continue
		}

		body := ExtractBody(msg.Payload)
		if body == "" {
			// The snippet is plain text and always present.
			body = msg.Snippet
		}

		// Metadata-only responses come without a payload.
		var headers []*gmail.MessagePartHeader
		if msg.Payload != nil {
			headers = msg.Payload.Headers
		}
		item := action.EmailItem{
			ID:      id,
			From:    header(headers, "From"),
			Subject: header(headers, "Subject"),
			Date:    header(headers, "Date"),
			Body:    Truncate(body),
		}

		doc, err := action.BuildEmail(item, p.now().UTC())
		if err != nil {
			log.Printf("Could not build document for %s: %v, skipping", id, err)
			continue
		}
		if _, err := p.queue.Write(doc); err != nil {
			log.Printf("Could not queue %s: %v, skipping", doc.Filename, err)
			continue
		}

		// Persist immediately so a crash mid-cycle cannot re-emit this
		// message.
		if err := p.store.Add(id); err != nil {
			log.Printf("Could not persist dedup id %s: %v", id, err)
		}

		if p.Notifier != nil {
			summary := fmt.Sprintf("From %s: %s", item.From, item.Subject)
			if err := p.Notifier.ActionQueued(doc.Filename, summary); err != nil {
				log.Printf("Notification for %s failed: %v", doc.Filename, err)
			}
		}

		log.Printf("New email detected: %s from %s", item.Subject, item.From)
	}
	return nil
}

func isRateLimited(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == 403 || apiErr.Code == 429
	}
	return false
}

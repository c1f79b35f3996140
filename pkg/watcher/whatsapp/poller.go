package whatsapp

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/tkhan-dev/vaultwatch/pkg/action"
	"github.com/tkhan-dev/vaultwatch/pkg/dedup"
	"github.com/tkhan-dev/vaultwatch/pkg/queue"
)

// DefaultInterval between chat list scans.
const DefaultInterval = 30 * time.Second

// Poller drives the scan loop over an established session.
type Poller struct {
	session  *Session
	store    dedup.Store
	queue    *queue.Writer
	Interval time.Duration
	now      func() time.Time
}

// NewPoller wires a Poller. The session must already be connected. Dedup
// is session-scoped: a conversation is keyed by contact plus its latest
// message text, so a new incoming message re-triggers the same contact.
func NewPoller(session *Session, store dedup.Store, q *queue.Writer) *Poller {
	return &Poller{
		session:  session,
		store:    store,
		queue:    q,
		Interval: DefaultInterval,
		now:      time.Now,
	}
}

// dedupKey identifies a conversation state. The latest message text is
// clipped so giant messages keep the key bounded.
func dedupKey(item action.ChatItem) string {
	latest := ""
	if n := len(item.Messages); n > 0 {
		latest = item.Messages[n-1].Text
	}
	if len(latest) > 60 {
		latest = latest[:60]
	}
	return item.Contact + "::" + latest
}

// Run scans until ctx is cancelled. A scan that times out against the
// page gets one reload-and-resume; a second consecutive failure ends the
// loop so the supervisor can restart the whole session.
func (p *Poller) Run(ctx context.Context) error {
	reloaded := false
	for {
		err := p.PollOnce(ctx)
		switch {
		case err == nil:
			reloaded = false
		case errors.Is(err, context.Canceled):
			return nil
		case !reloaded:
			log.Printf("Scan failed: %v, reloading page", err)
			if rerr := p.session.Reload(); rerr != nil {
				return rerr
			}
			reloaded = true
		default:
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(p.Interval):
		}
	}
}

// PollOnce scans the chat list once and queues a document per unread
// conversation not yet seen this session.
func (p *Poller) PollOnce(ctx context.Context) error {
	items, err := p.session.extractUnread(ctx)
	if err != nil {
		return err
	}

	for _, item := range items {
		key := dedupKey(item)
		seen, err := p.store.Contains(key)
		if err != nil {
			log.Printf("Dedup lookup for %s failed: %v, skipping", item.Contact, err)
			continue
		}
		if seen {
			continue
		}

		doc, err := action.BuildWhatsApp(item, p.now().UTC())
		if err != nil {
			log.Printf("Could not build document for %s: %v, skipping", item.Contact, err)
			continue
		}
		if _, err := p.queue.Write(doc); err != nil {
			log.Printf("Could not queue %s: %v, skipping", doc.Filename, err)
			continue
		}
		if err := p.store.Add(key); err != nil {
			log.Printf("Could not record dedup key for %s: %v", item.Contact, err)
		}

		log.Printf("New WhatsApp conversation queued: %s (%d unread)", item.Contact, item.UnreadCount)
	}
	return nil
}

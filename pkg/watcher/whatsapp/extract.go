package whatsapp

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/tkhan-dev/vaultwatch/pkg/action"
)

// unreadBadgeSelector matches the unread-count badge on a chat row.
const unreadBadgeSelector = `[aria-label*="unread"]`

// unreadBadges returns the aria-labels of every unread badge currently in
// the chat list. Order matches the DOM, which is the visual order.
const unreadBadgesJS = `
(() => {
	const out = [];
	document.querySelectorAll('` + unreadBadgeSelector + `').forEach(el => {
		out.push(el.getAttribute('aria-label') || '');
	});
	return out;
})()
`

// openChatJS clicks the chat row owning badge i. The row element has
// changed across DOM generations, so the lookup walks a chain of
// strategies and reports which one hit along with the contact name read
// off the row before clicking.
const openChatJS = `
((i) => {
	const badges = document.querySelectorAll('` + unreadBadgeSelector + `');
	const badge = badges[i];
	if (!badge) return {ok: false, strategy: 'none', name: ''};

	const rowName = (row) => {
		if (!row) return '';
		for (const sel of ['span[title]', 'span[dir="auto"]']) {
			const el = row.querySelector(sel);
			if (el) {
				const text = (el.getAttribute('title') || el.textContent || '').trim();
				if (text && text.length < 120) return text;
			}
		}
		return '';
	};

	let row = badge.closest('[data-testid="cell-frame-container"]');
	let strategy = 'cell-frame';
	if (!row) { row = badge.closest('[role="listitem"]'); strategy = 'listitem'; }
	if (!row) { row = badge.closest('li'); strategy = 'li'; }
	if (!row) { row = badge.closest('div[tabindex="0"]'); strategy = 'tabindex'; }
	if (!row) {
		strategy = 'ancestor';
		row = badge;
		for (let n = 0; n < 6 && row; n++) row = row.parentElement;
	}
	if (!row) return {ok: false, strategy: 'none', name: ''};

	const name = rowName(row);
	row.click();
	return {ok: true, strategy: strategy, name: name};
})(%d)
`

// headerNameJS reads the contact name from the open conversation header.
const headerNameJS = `
(() => {
	for (const sel of ['header span[dir="auto"]', '[data-testid="conversation-info-header"] span', 'header span[title]']) {
		const el = document.querySelector(sel);
		if (el) {
			const text = (el.getAttribute('title') || el.textContent || '').trim();
			if (text) return text;
		}
	}
	return '';
})()
`

// MaxMessages bounds how much conversation history one document carries.
const MaxMessages = 5

// messagesJS collects the visible copyable messages of the open
// conversation, newest last. pre carries the "[time, date] Sender: "
// prefix WhatsApp stores on the element.
var messagesJS = `
(() => {
	const out = [];
	document.querySelectorAll('.copyable-text[data-pre-plain-text]').forEach(el => {
		out.push({
			pre: el.getAttribute('data-pre-plain-text') || '',
			text: (el.innerText || '').trim(),
		});
	});
	if (out.length === 0) {
		document.querySelectorAll('.message-in, .message-out').forEach(el => {
			const incoming = el.classList.contains('message-in');
			out.push({pre: incoming ? 'Contact:' : 'You:', text: (el.innerText || '').trim()});
		});
	}
	return out.slice(-` + strconv.Itoa(MaxMessages) + `);
})()
`

// prePlainRe splits WhatsApp's data-pre-plain-text attribute, shaped like
// "[10:30, 1/1/2026] Jane Doe: ".
var prePlainRe = regexp.MustCompile(`\[([^\]]+)\]\s*(.*?):\s*$`)

type openResult struct {
	OK       bool   `json:"ok"`
	Strategy string `json:"strategy"`
	Name     string `json:"name"`
}

type rawMessage struct {
	Pre  string `json:"pre"`
	Text string `json:"text"`
}

// parseMessage turns one raw DOM message into a ChatMessage. The pre
// attribute may be absent or degenerate; sender falls back to "Contact".
func parseMessage(raw rawMessage) action.ChatMessage {
	msg := action.ChatMessage{Sender: "Contact", Text: raw.Text}
	if m := prePlainRe.FindStringSubmatch(strings.TrimSpace(raw.Pre)); m != nil {
		msg.Timestamp = m[1]
		if m[2] != "" {
			msg.Sender = m[2]
		}
	} else if pre := strings.TrimSuffix(strings.TrimSpace(raw.Pre), ":"); pre != "" {
		msg.Sender = pre
	}
	return msg
}

// cleanHeaderName filters out the UI tooltips the header selectors are
// known to match instead of a name.
func cleanHeaderName(name string) string {
	name = strings.TrimSpace(name)
	lower := strings.ToLower(name)
	if strings.Contains(lower, "contact info") || strings.Contains(lower, "click here") {
		return ""
	}
	return name
}

// parseUnreadCount pulls the number out of a badge label like
// "3 unread messages". An unparsable label still means at least one.
func parseUnreadCount(label string) int {
	for _, field := range strings.Fields(label) {
		if n, err := strconv.Atoi(field); err == nil && n > 0 {
			return n
		}
	}
	return 1
}

// extractUnread walks every unread badge and returns one ChatItem per
// conversation it managed to open.
func (s *Session) extractUnread(ctx context.Context) ([]action.ChatItem, error) {
	return walkUnread(ctx, s.scanBadges, s.extractChat)
}

func (s *Session) scanBadges(ctx context.Context) ([]string, error) {
	var labels []string
	if err := s.evaluate(ctx, unreadBadgesJS, &labels); err != nil {
		return nil, fmt.Errorf("failed to scan unread badges: %w", err)
	}
	return labels, nil
}

// walkUnread visits every unread badge. Opening a chat clears its badge
// and reshuffles rows, so the list is re-scanned before every open and
// the next unvisited conversation always sits at the skip offset. A
// badge that fails to open stays in the DOM; bumping the offset passes
// over it so the conversations behind it are still reached.
func walkUnread(ctx context.Context, scan func(context.Context) ([]string, error), open func(context.Context, int, string) (*action.ChatItem, error)) ([]action.ChatItem, error) {
	labels, err := scan(ctx)
	if err != nil {
		return nil, err
	}
	total := len(labels)

	skip := 0
	var items []action.ChatItem
	for i := 0; i < total; i++ {
		if labels, err = scan(ctx); err != nil {
			return items, err
		}
		if skip >= len(labels) {
			break
		}
		item, err := open(ctx, skip, labels[skip])
		if err != nil {
			if ctx.Err() != nil {
				return items, ctx.Err()
			}
			// One broken conversation must not block the rest.
			log.Printf("Skipping unread chat: %v", err)
			skip++
			continue
		}
		if item == nil {
			log.Printf("No clickable row found for badge %q, skipping", labels[skip])
			skip++
			continue
		}
		items = append(items, *item)
	}
	return items, nil
}

// extractChat opens the badge at index and reads the conversation.
func (s *Session) extractChat(ctx context.Context, index int, badgeLabel string) (*action.ChatItem, error) {
	var opened openResult
	if err := s.evaluate(ctx, fmt.Sprintf(openChatJS, index), &opened); err != nil {
		return nil, fmt.Errorf("failed to open chat: %w", err)
	}
	if !opened.OK {
		return nil, nil
	}

	// The message pane needs a moment to render after the click.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(1500 * time.Millisecond):
	}

	// The name read off the row before clicking is the reliable one;
	// header selectors are a fallback for rows that carried no name.
	contact := opened.Name
	if contact == "" {
		var headerName string
		if err := s.evaluate(ctx, headerNameJS, &headerName); err == nil {
			contact = cleanHeaderName(headerName)
		}
	}
	if contact == "" {
		contact = "Unknown Contact"
	}

	var raw []rawMessage
	if err := s.evaluate(ctx, messagesJS, &raw); err != nil {
		return nil, fmt.Errorf("failed to read messages for %s: %w", contact, err)
	}

	item := action.ChatItem{
		Contact:     contact,
		UnreadCount: parseUnreadCount(badgeLabel),
	}
	for _, r := range raw {
		if r.Text == "" {
			continue
		}
		item.Messages = append(item.Messages, parseMessage(r))
	}
	return &item, nil
}

// evaluate runs js in the browser tab. The call is bounded so a wedged
// page surfaces as a deadline error instead of hanging the poll loop.
func (s *Session) evaluate(ctx context.Context, js string, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancel()
	return chromedp.Run(runCtx, chromedp.Evaluate(js, out))
}

// Package whatsapp polls WhatsApp Web through a persistent browser
// profile, extracts unread conversations and queues reply-draft
// documents. The browser session is the fragile part: selectors probe
// several DOM generations and every interaction tolerates a missing
// element.
package whatsapp

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/chromedp/chromedp"
)

const (
	webURL = "https://web.whatsapp.com"

	// QRTimeout is how long a first run waits for the user to scan the
	// QR code.
	QRTimeout = 120 * time.Second
	// LoadTimeout is how long a restored session waits for the chat
	// list to render.
	LoadTimeout = 30 * time.Second
)

// chatListSelectors probe successive DOM generations of the chat pane.
var chatListSelectors = []string{
	`[aria-label="Chat list"]`,
	`div[data-testid="chat-list"]`,
	`[data-testid="pane-side"]`,
}

// Session owns a browser context bound to a persistent user profile, so
// the QR pairing survives restarts.
type Session struct {
	ProfileDir string
	Headless   bool

	ctx         context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// NewSession configures a session over the given profile directory.
func NewSession(profileDir string, headless bool) *Session {
	return &Session{ProfileDir: profileDir, Headless: headless}
}

func (s *Session) launch(parent context.Context, headless bool) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserDataDir(s.ProfileDir),
		chromedp.Flag("headless", headless),
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1280, 900),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx)
	s.ctx = ctx
	s.cancelCtx = cancelCtx
	s.cancelAlloc = cancelAlloc
}

// Connect launches the browser and navigates to WhatsApp Web. With a
// paired profile the chat list appears within the load timeout; if it
// does not, the session is assumed expired and the browser is relaunched
// visible so the user can scan the QR code again.
func (s *Session) Connect(parent context.Context) error {
	s.launch(parent, s.Headless)

	if err := chromedp.Run(s.ctx, chromedp.Navigate(webURL)); err != nil {
		s.Close()
		return fmt.Errorf("failed to open %s: %w", webURL, err)
	}

	if err := s.waitChatList(LoadTimeout); err == nil {
		return nil
	}

	if !s.Headless {
		// Already visible, so the user just has not scanned yet.
		log.Printf("Waiting up to %s for QR scan", QRTimeout)
		if err := s.waitChatList(QRTimeout); err != nil {
			s.Close()
			return fmt.Errorf("chat list never appeared: %w", err)
		}
		return nil
	}

	log.Printf("Session appears expired, relaunching visible for QR scan")
	s.Close()
	s.launch(parent, false)
	if err := chromedp.Run(s.ctx, chromedp.Navigate(webURL)); err != nil {
		s.Close()
		return fmt.Errorf("failed to open %s: %w", webURL, err)
	}
	if err := s.waitChatList(QRTimeout); err != nil {
		s.Close()
		return fmt.Errorf("QR scan did not complete: %w", err)
	}
	return nil
}

// waitChatList waits until any known chat list selector is visible.
func (s *Session) waitChatList(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		for _, sel := range chatListSelectors {
			ctx, cancel := context.WithTimeout(s.ctx, 2*time.Second)
			err := chromedp.Run(ctx, chromedp.WaitVisible(sel, chromedp.ByQuery))
			cancel()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("no chat list selector matched within %s", timeout)
		}
	}
}

// Reload refreshes the page and waits for the chat list to come back.
// Used to recover from a wedged page without dropping the session.
func (s *Session) Reload() error {
	if err := chromedp.Run(s.ctx, chromedp.Reload()); err != nil {
		return fmt.Errorf("reload failed: %w", err)
	}
	return s.waitChatList(LoadTimeout)
}

// Close tears the browser down.
func (s *Session) Close() {
	if s.cancelCtx != nil {
		s.cancelCtx()
	}
	if s.cancelAlloc != nil {
		s.cancelAlloc()
	}
	s.ctx = nil
	s.cancelCtx = nil
	s.cancelAlloc = nil
}

// Package mail polls a Gmail inbox for unread messages and queues them as
// email action documents.
package mail

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Mailbox is the slice of the Gmail API the poller needs; satisfied by
// Client and by fakes in tests.
type Mailbox interface {
	ListUnread(ctx context.Context, max int64) ([]string, error)
	Get(ctx context.Context, id string) (*gmail.Message, error)
}

// Client wraps the Gmail API service.
type Client struct {
	srv *gmail.Service
}

// NewClient creates a Client from an authenticated HTTP client.
func NewClient(ctx context.Context, httpClient *http.Client) (*Client, error) {
	srv, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail client: %w", err)
	}
	return &Client{srv: srv}, nil
}

// ListUnread returns the ids of up to max unread messages.
func (c *Client) ListUnread(ctx context.Context, max int64) ([]string, error) {
	r, err := c.srv.Users.Messages.List("me").
		Q("is:unread").
		MaxResults(max).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to list messages: %w", err)
	}

	ids := make([]string, 0, len(r.Messages))
	for _, m := range r.Messages {
		ids = append(ids, m.Id)
	}
	return ids, nil
}

// Get fetches the full message for id.
func (c *Client) Get(ctx context.Context, id string) (*gmail.Message, error) {
	msg, err := c.srv.Users.Messages.Get("me", id).
		Format("full").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to fetch message %s: %w", id, err)
	}
	return msg, nil
}

// Package news fetches the top article for a set of configured topics and
// queues a draft request for each one.
package news

import (
	"context"
	"fmt"
	"log"
	"time"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/tkhan-dev/vaultwatch/pkg/action"
	"github.com/tkhan-dev/vaultwatch/pkg/queue"
)

// Article is the single result a search yields for a topic.
type Article struct {
	Title     string
	URL       string
	Published string
	Snippet   string
}

// Searcher finds the top article for a topic.
type Searcher interface {
	TopResult(ctx context.Context, topic string) (*Article, error)
}

// CustomSearch implements Searcher against the Google Custom Search API.
type CustomSearch struct {
	svc      *customsearch.Service
	engineID string
}

// NewCustomSearch builds a CustomSearch client. The engine must be
// configured for news-oriented results.
func NewCustomSearch(ctx context.Context, apiKey, engineID string) (*CustomSearch, error) {
	svc, err := customsearch.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create search service: %w", err)
	}
	return &CustomSearch{svc: svc, engineID: engineID}, nil
}

// TopResult returns the first hit for the topic, or nil if the search
// came back empty.
func (c *CustomSearch) TopResult(ctx context.Context, topic string) (*Article, error) {
	resp, err := c.svc.Cse.List().
		Q(topic + " latest news").
		Cx(c.engineID).
		Num(3).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("search for %q failed: %w", topic, err)
	}
	if len(resp.Items) == 0 {
		return nil, nil
	}

	item := resp.Items[0]
	return &Article{
		Title:   item.Title,
		URL:     item.Link,
		Snippet: item.Snippet,
	}, nil
}

// Runner executes one news sweep across all configured topics.
type Runner struct {
	search Searcher
	queue  *queue.Writer
	Topics []string
	now    func() time.Time
}

// NewRunner wires a Runner from its collaborators.
func NewRunner(search Searcher, q *queue.Writer, topics []string) *Runner {
	return &Runner{
		search: search,
		queue:  q,
		Topics: topics,
		now:    time.Now,
	}
}

// RunOnce sweeps every topic. Topics are independent: a failed search or
// write is logged and the sweep moves on. The returned error reports only
// a sweep where every topic failed.
func (r *Runner) RunOnce(ctx context.Context) error {
	if len(r.Topics) == 0 {
		return fmt.Errorf("no topics configured")
	}

	failed := 0
	for _, topic := range r.Topics {
		if err := r.runTopic(ctx, topic); err != nil {
			log.Printf("News sweep for %q failed: %v", topic, err)
			failed++
		}
	}
	if failed == len(r.Topics) {
		return fmt.Errorf("all %d topics failed", failed)
	}
	return nil
}

func (r *Runner) runTopic(ctx context.Context, topic string) error {
	article, err := r.search.TopResult(ctx, topic)
	if err != nil {
		return err
	}
	if article == nil {
		log.Printf("No results for topic %q, skipping", topic)
		return nil
	}

	doc, err := action.BuildNews(action.NewsItem{
		Topic:     topic,
		Title:     article.Title,
		URL:       article.URL,
		Published: article.Published,
		Snippet:   article.Snippet,
	}, r.now().UTC())
	if err != nil {
		return err
	}
	if _, err := r.queue.Write(doc); err != nil {
		return err
	}

	log.Printf("Queued news draft for %q: %s", topic, article.Title)
	return nil
}

// Package action builds normalized action documents from raw source items.
// Builders are pure functions of (item, now); writing the result to the
// queue is the caller's job.
package action

import (
	"regexp"
	"strings"
	"time"
)

// Document is one unit of queued work: a generated filename and the full
// file content (front-matter plus markdown body).
type Document struct {
	Filename string
	Content  string
}

const (
	timestampISO   = "2006-01-02T15:04:05Z"
	timestampShort = "20060102_1504"
	timestampDate  = "20060102"
)

var slugRun = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases s, collapses every non-alphanumeric run to a single
// dash, trims leading and trailing dashes and caps the result at max
// characters. max <= 0 means no cap.
func Slug(s string, max int) string {
	slug := slugRun.ReplaceAllString(strings.ToLower(s), "-")
	slug = strings.Trim(slug, "-")
	if max > 0 && len(slug) > max {
		slug = strings.Trim(slug[:max], "-")
	}
	return slug
}

func iso(now time.Time) string {
	return now.UTC().Format(timestampISO)
}

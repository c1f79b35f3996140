// Package dashboard patches Dashboard.md after a completed action. The
// dashboard is a human-edited markdown file, so every change is a targeted
// textual substitution; zones the patcher does not own stay byte-identical.
package dashboard

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"
)

// Update describes one completed action to reflect on the dashboard.
type Update struct {
	Filename string
	Action   string
	Topic    string
	Now      time.Time
}

// Patcher applies the fixed transformation sequence to the dashboard file.
type Patcher struct {
	Path string
}

// NewPatcher returns a Patcher for the dashboard at path.
func NewPatcher(path string) *Patcher {
	return &Patcher{Path: path}
}

// Apply runs all transformations in order and rewrites the file. A missing
// dashboard is a silent no-op.
func (p *Patcher) Apply(u Update) error {
	data, err := os.ReadFile(p.Path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read dashboard: %w", err)
	}

	tsISO := u.Now.UTC().Format("2006-01-02T15:04:05Z")
	tsHM := u.Now.UTC().Format("15:04")

	doc := string(data)
	doc = StampLastUpdated(doc, tsISO)
	doc = IncrementCompletedToday(doc)
	doc = PrependActivity(doc, fmt.Sprintf("- %s Approved & completed: %s — %s", tsHM, u.Action, u.Topic))
	if u.Action == "linkedin_post" {
		doc = MarkTopicPosted(doc, u.Topic)
	}
	doc = RemovePendingEntry(doc, u.Filename)
	doc = IncrementActionsApproved(doc)
	doc = StampFooter(doc, tsISO)

	if err := os.WriteFile(p.Path, []byte(doc), 0644); err != nil {
		return fmt.Errorf("failed to write dashboard: %w", err)
	}
	return nil
}

var (
	lastUpdatedRe   = regexp.MustCompile(`(?m)^(last_updated: )[0-9TZ:\-]+`)
	completedRe     = regexp.MustCompile(`(\| Completed Today \| )(\d+)( \|)`)
	activityHeadRe  = regexp.MustCompile(`(## Today's Activity\n\n)`)
	approvedRe      = regexp.MustCompile(`(- Actions Approved: )(\d+)`)
	footerRe        = regexp.MustCompile(`\*Dashboard auto-updated by vaultwatch at [0-9TZ:\-]+\*`)
	pendingSectRe   = regexp.MustCompile(`(?s)(## Pending Reviews\n\n).*?(\n## |\z)`)
	pendingCheckRe  = regexp.MustCompile(`(?s)## Pending Reviews\n\n(.*?)(\n## |\z)`)
	pendingBulletRe = regexp.MustCompile(`(?m)^- 📝 `)
)

const (
	noActivitySentinel = "## Today's Activity\n\n_No activity yet today._"
	allClearSentinel   = "_Nothing awaiting review. All clear!_"
)

// StampLastUpdated replaces the front-matter last_updated value.
func StampLastUpdated(doc, tsISO string) string {
	return lastUpdatedRe.ReplaceAllString(doc, "${1}"+tsISO)
}

// IncrementCompletedToday bumps the integer in the Completed Today table
// cell.
func IncrementCompletedToday(doc string) string {
	return completedRe.ReplaceAllStringFunc(doc, func(match string) string {
		parts := completedRe.FindStringSubmatch(match)
		n, err := strconv.Atoi(parts[2])
		if err != nil {
			return match
		}
		return parts[1] + strconv.Itoa(n+1) + parts[3]
	})
}

// PrependActivity inserts line at the top of the Today's Activity section,
// replacing the no-activity sentinel on first use.
func PrependActivity(doc, line string) string {
	if regexp.MustCompile(regexp.QuoteMeta(noActivitySentinel)).MatchString(doc) {
		return regexp.MustCompile(regexp.QuoteMeta(noActivitySentinel)).
			ReplaceAllString(doc, "## Today's Activity\n\n"+line)
	}
	return activityHeadRe.ReplaceAllString(doc, "${1}"+line+"\n")
}

// MarkTopicPosted flips the weekly-table status cell for topic from
// Pending to Posted.
func MarkTopicPosted(doc, topic string) string {
	re := regexp.MustCompile(`(\| [^|]+ \| ` + regexp.QuoteMeta(topic) + ` \| )Pending( \|)`)
	return re.ReplaceAllString(doc, "${1}Posted${2}")
}

// RemovePendingEntry deletes the pending-review bullet referencing
// filename and, if no bullets remain, collapses the section body to the
// all-clear sentinel.
func RemovePendingEntry(doc, filename string) string {
	bulletRe := regexp.MustCompile(`- 📝 ` + regexp.QuoteMeta(filename) + `[^\n]*\n?`)
	doc = bulletRe.ReplaceAllString(doc, "")

	m := pendingCheckRe.FindStringSubmatch(doc)
	if m == nil {
		return doc
	}
	body := m[1]
	if pendingBulletRe.MatchString(body) {
		return doc
	}
	if regexp.MustCompile(regexp.QuoteMeta(allClearSentinel)).MatchString(body) {
		return doc
	}
	return pendingSectRe.ReplaceAllString(doc, "${1}"+allClearSentinel+"\n${2}")
}

// IncrementActionsApproved bumps the weekly Actions Approved counter.
func IncrementActionsApproved(doc string) string {
	return approvedRe.ReplaceAllStringFunc(doc, func(match string) string {
		parts := approvedRe.FindStringSubmatch(match)
		n, err := strconv.Atoi(parts[2])
		if err != nil {
			return match
		}
		return parts[1] + strconv.Itoa(n+1)
	})
}

// StampFooter replaces the footer's auto-update stamp.
func StampFooter(doc, tsISO string) string {
	return footerRe.ReplaceAllString(doc,
		"*Dashboard auto-updated by vaultwatch at "+tsISO+"*")
}

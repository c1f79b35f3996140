// Package journal appends structured audit entries to per-day JSON files.
package journal

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Entry is one completed (or would-be, in dry-run) action.
type Entry struct {
	Timestamp  string `json:"timestamp"`
	Component  string `json:"component"`
	Level      string `json:"level"`
	Action     string `json:"action"`
	Topic      string `json:"topic"`
	SourceFile string `json:"source_file"`
	DryRun     bool   `json:"dry_run"`
	Result     string `json:"result"`
}

type dayLog struct {
	Date    string  `json:"date"`
	Entries []Entry `json:"entries"`
}

// Appender writes entries into <Dir>/<YYYY-MM-DD>.json, one file per UTC
// day.
type Appender struct {
	Dir string
}

// NewAppender returns an Appender for the given logs directory.
func NewAppender(dir string) *Appender {
	return &Appender{Dir: dir}
}

// Append adds e to the journal for now's UTC date. The file is read,
// extended and rewritten; a corrupt or unreadable journal is reinitialized
// empty with a logged warning so previously healthy behavior is never
// blocked by a bad file.
func (a *Appender) Append(e Entry, now time.Time) error {
	date := now.UTC().Format("2006-01-02")
	path := filepath.Join(a.Dir, date+".json")

	day := dayLog{Date: date}
	data, err := os.ReadFile(path)
	if err == nil {
		if jerr := json.Unmarshal(data, &day); jerr != nil {
			log.Printf("Journal %s is corrupt (%v), reinitializing", path, jerr)
			day = dayLog{Date: date}
		}
	} else if !os.IsNotExist(err) {
		log.Printf("Journal %s is unreadable (%v), reinitializing", path, err)
	}
	if day.Date == "" {
		day.Date = date
	}

	day.Entries = append(day.Entries, e)

	if err := os.MkdirAll(a.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create logs dir: %w", err)
	}
	out, err := json.MarshalIndent(day, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal journal: %w", err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to write journal: %w", err)
	}
	return nil
}

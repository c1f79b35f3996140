package journal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var testNow = time.Date(2026, 1, 1, 10, 30, 0, 0, time.UTC)

func readDay(t *testing.T, dir string, date string) dayLog {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, date+".json"))
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	var day dayLog
	if err := json.Unmarshal(data, &day); err != nil {
		t.Fatalf("parse journal: %v", err)
	}
	return day
}

func TestAppend(t *testing.T) {
	dir := t.TempDir()
	a := NewAppender(dir)

	e1 := Entry{
		Timestamp: "2026-01-01T10:30:00Z", Component: "orchestrator", Level: "info",
		Action: "email_reply", Topic: "Q1 numbers", SourceFile: "EMAIL_abc123de_20260101.md",
		Result: "completed",
	}
	if err := a.Append(e1, testNow); err != nil {
		t.Fatalf("first append: %v", err)
	}

	e2 := e1
	e2.Action = "linkedin_post"
	if err := a.Append(e2, testNow.Add(time.Hour)); err != nil {
		t.Fatalf("second append: %v", err)
	}

	day := readDay(t, dir, "2026-01-01")
	if day.Date != "2026-01-01" {
		t.Errorf("date = %q", day.Date)
	}
	if len(day.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(day.Entries))
	}
	if day.Entries[0].Action != "email_reply" || day.Entries[1].Action != "linkedin_post" {
		t.Errorf("entries out of order: %+v", day.Entries)
	}
}

func TestAppendSplitsByDay(t *testing.T) {
	dir := t.TempDir()
	a := NewAppender(dir)

	if err := a.Append(Entry{Action: "a"}, testNow); err != nil {
		t.Fatal(err)
	}
	if err := a.Append(Entry{Action: "b"}, testNow.Add(24*time.Hour)); err != nil {
		t.Fatal(err)
	}

	if len(readDay(t, dir, "2026-01-01").Entries) != 1 {
		t.Error("first day should have one entry")
	}
	if len(readDay(t, dir, "2026-01-02").Entries) != 1 {
		t.Error("second day should have one entry")
	}
}

func TestAppendRecoversCorruptJournal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "2026-01-01.json")
	if err := os.WriteFile(path, []byte("{{{ not json"), 0644); err != nil {
		t.Fatal(err)
	}

	a := NewAppender(dir)
	if err := a.Append(Entry{Action: "after_corruption", Result: "completed"}, testNow); err != nil {
		t.Fatalf("append over corrupt journal: %v", err)
	}

	day := readDay(t, dir, "2026-01-01")
	if len(day.Entries) != 1 || day.Entries[0].Action != "after_corruption" {
		t.Errorf("recovered journal = %+v", day)
	}
}

func TestAppendCreatesLogsDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Logs")
	a := NewAppender(dir)
	if err := a.Append(Entry{Action: "x"}, testNow); err != nil {
		t.Fatalf("append into missing dir: %v", err)
	}
}

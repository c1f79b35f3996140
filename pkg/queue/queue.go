// Package queue places action documents into the shared queue directory
// and performs no-clobber archival moves.
package queue

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tkhan-dev/vaultwatch/pkg/action"
)

// Writer emits action documents into a queue directory. Documents are
// written to a temporary file first and renamed into place, so a consumer
// never observes a partially written document.
type Writer struct {
	Dir string
}

// NewWriter returns a Writer for the given queue directory.
func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir}
}

// Write places doc into the queue under its generated filename and returns
// the final path. Queue filenames already embed the source identifier and
// a timestamp, so a collision means the same item was emitted twice; that
// is an error here, not something to paper over.
func (w *Writer) Write(doc action.Document) (string, error) {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create queue dir: %w", err)
	}

	dest := filepath.Join(w.Dir, doc.Filename)
	if _, err := os.Stat(dest); err == nil {
		return "", fmt.Errorf("queue entry already exists: %s", doc.Filename)
	}

	tmp, err := os.CreateTemp(w.Dir, ".queue-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(doc.Content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write %s: %w", doc.Filename, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to place %s in queue: %w", doc.Filename, err)
	}
	return dest, nil
}

// MoveNoClobber moves src into destDir. If the destination name is taken,
// a fine-grained timestamp suffix is appended before the extension; if
// that name is taken too, the move fails. An existing file is never
// overwritten.
func MoveNoClobber(src, destDir string, now time.Time) (string, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", destDir, err)
	}

	base := filepath.Base(src)
	dest := filepath.Join(destDir, base)

	if _, err := os.Stat(dest); err == nil {
		ext := filepath.Ext(base)
		stem := strings.TrimSuffix(base, ext)
		suffixed := fmt.Sprintf("%s_%s%s", stem, now.UTC().Format("20060102_150405"), ext)
		dest = filepath.Join(destDir, suffixed)
		if _, err := os.Stat(dest); err == nil {
			return "", fmt.Errorf("archival target already exists: %s", suffixed)
		}
	}

	if err := os.Rename(src, dest); err != nil {
		return "", fmt.Errorf("failed to move %s: %w", base, err)
	}
	return dest, nil
}

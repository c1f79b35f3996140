package dedup

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps identifiers in a SQLite table. Useful when one
// database should track several sources, or when the flat list grows
// large enough that rewriting it per item hurts.
type SQLiteStore struct {
	db     *sql.DB
	source string
}

// OpenSQLiteStore opens (creating if needed) the database at dbPath and
// scopes the store to the given source name.
func OpenSQLiteStore(dbPath, source string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS processed_items (
		source TEXT NOT NULL,
		item_id TEXT NOT NULL,
		seen_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (source, item_id)
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return &SQLiteStore{db: db, source: source}, nil
}

func (s *SQLiteStore) Contains(id string) (bool, error) {
	var one int
	err := s.db.QueryRow(
		`SELECT 1 FROM processed_items WHERE source = ? AND item_id = ?`,
		s.source, id,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query processed item: %w", err)
	}
	return true, nil
}

func (s *SQLiteStore) Add(id string) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO processed_items (source, item_id) VALUES (?, ?)`,
		s.source, id,
	)
	if err != nil {
		return fmt.Errorf("failed to record processed item: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Package sqlite implements the RunStore port on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Run store tuning. Each run writes one record; reads come from the history
// API and the runs command. A CLI run and a serving process may share the
// file, so writers wait on each other instead of failing.
const (
	busyTimeout    = 15 * time.Second
	readerConns    = 2
	readerIdleTime = 5 * time.Minute
)

// pragmas applied to every connection, in order.
var pragmas = []string{
	fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds()),
	"synchronous(NORMAL)",
	"cache_size(-8000)",
}

// DB holds a single-connection writer and a small reader pool over one
// SQLite file in WAL mode.
type DB struct {
	Writer *sql.DB
	Reader *sql.DB
	path   string
}

// NewDB opens the run store at dbPath, creating its directory if needed.
func NewDB(ctx context.Context, dbPath string) (*DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	writer, err := sql.Open("sqlite", dsn("file:"+dbPath, true, "journal_mode(WAL)"))
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}
	writer.SetMaxOpenConns(1)

	if err := writer.PingContext(ctx); err != nil {
		writer.Close()
		return nil, fmt.Errorf("ping writer: %w", err)
	}

	reader, err := sql.Open("sqlite", dsn("file:"+dbPath, false, "journal_mode(WAL)"))
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}
	reader.SetMaxOpenConns(readerConns)
	reader.SetConnMaxIdleTime(readerIdleTime)

	if err := reader.PingContext(ctx); err != nil {
		reader.Close()
		writer.Close()
		return nil, fmt.Errorf("ping reader: %w", err)
	}

	return &DB{
		Writer: writer,
		Reader: reader,
		path:   dbPath,
	}, nil
}

// dsn appends the shared pragmas to base. Writer transactions take the write
// lock up front so an upsert never fails upgrading from a read lock.
func dsn(base string, writer bool, extra ...string) string {
	q := url.Values{}
	for _, p := range append(extra, pragmas...) {
		q.Add("_pragma", p)
	}
	if writer {
		q.Set("_txlock", "immediate")
	}
	sep := "?"
	if u, err := url.Parse(base); err == nil && u.RawQuery != "" {
		sep = "&"
	}
	return base + sep + q.Encode()
}

// Close closes both reader and writer connections. Returns the first error encountered.
func (db *DB) Close() error {
	var firstErr error

	if err := db.Reader.Close(); err != nil {
		firstErr = fmt.Errorf("close reader: %w", err)
	}

	if err := db.Writer.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close writer: %w", err)
	}

	return firstErr
}

// Package journal keeps a local record of job progress in SQLite.
package journal

import (
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/everydev1618/govisor/monitor"
)

// Entry is one recorded progress update.
type Entry struct {
	ID        int64
	Session   string
	Type      string
	Event     string
	Name      string
	Progress  float64
	Buffer    []byte
	CreatedAt time.Time
}

// Journal records every envelope it is sent. It implements monitor.Sender
// and is safe for concurrent use.
type Journal struct {
	mu      sync.Mutex
	db      *sql.DB
	session string
	logger  *slog.Logger
}

var _ monitor.Sender = (*Journal)(nil)

// Open opens or creates a journal database at the given path.
// Each Journal gets its own session id so entries from different
// processes can be told apart.
func Open(path string, logger *slog.Logger) (*Journal, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer at a time; concurrent INSERTs would fail with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for concurrent reads.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	j := &Journal{
		db:      db,
		session: uuid.NewString(),
		logger:  logger.With("component", "journal"),
	}
	if err := j.init(); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS progress (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		session    TEXT NOT NULL,
		type       TEXT NOT NULL,
		event      TEXT NOT NULL,
		name       TEXT NOT NULL,
		progress   REAL NOT NULL DEFAULT 0,
		buffer     BLOB,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_progress_name ON progress(name);
	`
	_, err := j.db.Exec(schema)
	return err
}

// Session returns the id tagged onto entries written by this journal.
func (j *Journal) Session() string {
	return j.session
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Send records the envelope. Failures are logged, not returned.
func (j *Journal) Send(env monitor.Envelope) {
	// A nil buffer is stored as NULL, not as an empty blob.
	var buffer any
	if env.Data.State.Buffer != nil {
		buffer = env.Data.State.Buffer
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.Exec(
		`INSERT INTO progress (session, type, event, name, progress, buffer, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		j.session, env.Type, env.Data.Event, env.Data.Name,
		env.Data.State.Progress, buffer, time.Now().UTC(),
	)
	if err != nil {
		j.logger.Warn("can't record progress", "name", env.Data.Name, "error", err)
	}
}

// Recent returns the most recent entries, newest first.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	rows, err := j.db.Query(
		`SELECT id, session, type, event, name, progress, buffer, created_at
		 FROM progress ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Session, &e.Type, &e.Event, &e.Name, &e.Progress, &e.Buffer, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Latest returns the newest entry for a job name, or nil if there is none.
func (j *Journal) Latest(name string) (*Entry, error) {
	var e Entry
	err := j.db.QueryRow(
		`SELECT id, session, type, event, name, progress, buffer, created_at
		 FROM progress WHERE name = ? ORDER BY id DESC LIMIT 1`, name,
	).Scan(&e.ID, &e.Session, &e.Type, &e.Event, &e.Name, &e.Progress, &e.Buffer, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

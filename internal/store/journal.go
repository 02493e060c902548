// Package store provides a SQLite-backed journal of settled navigation
// transitions.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/pagesync/internal/nav"

	_ "modernc.org/sqlite" // register sqlite driver
)

// timeLayout is fixed width so stored timestamps compare lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// ErrNoSession is returned by Record before Begin.
var ErrNoSession = errors.New("journal: no session started")

// Entry is one journaled settle.
type Entry struct {
	SessionID    string    `json:"session_id"`
	Seq          int64     `json:"seq"`
	TransitionID uint64    `json:"transition_id"`
	Source       string    `json:"source"`
	From         int       `json:"from"`
	To           int       `json:"to"`
	Route        string    `json:"route"`
	RouteWritten bool      `json:"route_written"`
	At           time.Time `json:"at"`
}

// Journal records settle events for one engine session.
type Journal struct {
	db      *sql.DB
	session string
	seq     int64
	now     func() time.Time
}

// Open opens or creates the journal database at the given path.
func Open(dbPath string) (*Journal, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating journal dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening journal db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Journal{db: db, now: time.Now}, nil
}

// Close closes the journal database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Begin starts a new session and returns its id. Records are attached to
// the most recent session.
func (j *Journal) Begin(host string, pageCount int) (string, error) {
	id := uuid.NewString()
	_, err := j.db.Exec(`INSERT INTO sessions (session_id, started_at, host, page_count)
		VALUES (?, ?, ?, ?)`,
		id, j.now().UTC().Format(timeLayout), host, pageCount,
	)
	if err != nil {
		return "", fmt.Errorf("starting journal session: %w", err)
	}
	j.session = id
	j.seq = 0
	return id, nil
}

// Session returns the current session id, or "" before Begin.
func (j *Journal) Session() string { return j.session }

// Record appends a settle to the current session.
func (j *Journal) Record(ev nav.SettleEvent) error {
	if j.session == "" {
		return ErrNoSession
	}
	j.seq++
	written := 0
	if ev.RouteWritten {
		written = 1
	}
	_, err := j.db.Exec(`INSERT INTO settles
		(session_id, seq, transition_id, source, from_index, to_index, route, route_written, settled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.session, j.seq, int64(ev.Transition.ID), ev.Transition.Source.String(),
		ev.Previous, ev.Index, ev.Route, written,
		j.now().UTC().Format(timeLayout),
	)
	if err != nil {
		j.seq--
		return fmt.Errorf("recording settle: %w", err)
	}
	return nil
}

// Recent returns up to limit entries across all sessions, newest first.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.Query(`SELECT
		session_id, seq, transition_id, source, from_index, to_index, route, route_written, settled_at
		FROM settles
		ORDER BY rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			tid     int64
			written int
			at      string
		)
		if err := rows.Scan(&e.SessionID, &e.Seq, &tid, &e.Source, &e.From, &e.To, &e.Route, &written, &at); err != nil {
			return nil, err
		}
		e.TransitionID = uint64(tid)
		e.RouteWritten = written != 0
		if t, err := time.Parse(timeLayout, at); err == nil {
			e.At = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Count returns the number of journaled settles, optionally limited to one source.
func (j *Journal) Count(source string) (int, error) {
	var n int
	var err error
	if source == "" {
		err = j.db.QueryRow("SELECT COUNT(*) FROM settles").Scan(&n)
	} else {
		err = j.db.QueryRow("SELECT COUNT(*) FROM settles WHERE source = ?", source).Scan(&n)
	}
	return n, err
}

// Prune deletes settles older than cutoff and sessions left without any.
func (j *Journal) Prune(cutoff time.Time) (int64, error) {
	tx, err := j.db.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec("DELETE FROM settles WHERE settled_at < ?", cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()

	_, err = tx.Exec(`DELETE FROM sessions
		WHERE session_id != ?
		AND session_id NOT IN (SELECT DISTINCT session_id FROM settles)`, j.session)
	if err != nil {
		return 0, err
	}
	return n, tx.Commit()
}

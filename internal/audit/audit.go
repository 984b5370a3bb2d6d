package audit

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/chronicle/internal/store"
)

//go:embed schema.sql
var schemaSQL string

// Log is a SQLite-backed audit log of committed mutations.
type Log struct {
	db *sql.DB
}

// Entry is one recorded mutation.
type Entry struct {
	Seq       int64
	Op        store.Op
	Table     string
	Record    string
	Revision  string
	Message   string
	ValueHash string
	Time      time.Time
}

// Open creates or opens an audit database at the given path.
// Applies required pragmas and the schema automatically; safe to call
// on an existing database.
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to audit database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Log{db: db}, nil
}

// Close closes the database connection.
func (l *Log) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Record inserts one mutation. Idempotent on revision ID: recording
// the same revision twice is a no-op.
func (l *Log) Record(ctx context.Context, m store.Mutation) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO mutations
		(op, table_name, record_id, revision, message, value_hash, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(revision) DO NOTHING
	`,
		string(m.Op),
		m.Table,
		m.Record,
		m.Revision,
		m.Message,
		m.ValueHash,
		m.Time.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record mutation: %w", err)
	}
	return nil
}

// List returns a table's mutations, newest first. limit <= 0 returns
// all entries.
func (l *Log) List(ctx context.Context, table string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1 // SQLite: LIMIT -1 means unlimited
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT seq, op, table_name, record_id, revision, message, value_hash, recorded_at
		FROM mutations
		WHERE table_name = ?
		ORDER BY seq DESC
		LIMIT ?
	`, table, limit)
	if err != nil {
		return nil, fmt.Errorf("query mutations: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan mutations: %w", err)
	}
	return entries, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var e Entry
	var op, recordedAt string
	if err := rows.Scan(&e.Seq, &op, &e.Table, &e.Record, &e.Revision, &e.Message, &e.ValueHash, &recordedAt); err != nil {
		return Entry{}, fmt.Errorf("scan mutation: %w", err)
	}
	e.Op = store.Op(op)

	t, err := time.Parse(time.RFC3339Nano, recordedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("parse recorded_at %q: %w", recordedAt, err)
	}
	e.Time = t
	return e, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Recorder adapts a Log to the store.Observer interface.
type Recorder struct {
	log *Log
}

// NewRecorder wraps a Log for use with store.WithObserver.
func NewRecorder(l *Log) *Recorder {
	return &Recorder{log: l}
}

// ObserveMutation implements store.Observer.
func (r *Recorder) ObserveMutation(m store.Mutation) error {
	return r.log.Record(context.Background(), m)
}

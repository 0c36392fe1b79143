// Package transcript persists turn events in SQLite so conversations can be
// inspected and replayed.
package transcript

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/go-go-golems/fulfillment/pkg/events"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteTranscriptSchemaV1 = `
CREATE TABLE IF NOT EXISTS turn_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    turn_id TEXT NOT NULL,
    conversation_id TEXT NOT NULL DEFAULT '',
    type TEXT NOT NULL,
    family TEXT NOT NULL DEFAULT '',
    version TEXT NOT NULL DEFAULT '',
    action TEXT NOT NULL DEFAULT '',
    status INTEGER NOT NULL DEFAULT 0,
    error TEXT NOT NULL DEFAULT '',
    duration_ms INTEGER NOT NULL DEFAULT 0,
    request_json TEXT NOT NULL DEFAULT '',
    response_json TEXT NOT NULL DEFAULT '',
    created_at_ms INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS turn_events_conversation ON turn_events (conversation_id, id);
CREATE INDEX IF NOT EXISTS turn_events_turn ON turn_events (turn_id, id);
`

// Entry is one stored turn event.
type Entry struct {
	ID             int64
	TurnID         string
	ConversationID string
	Type           events.EventType
	Family         string
	Version        string
	Action         string
	Status         int
	Error          string
	Duration       time.Duration
	Request        string
	Response       string
	CreatedAt      time.Time
}

// SQLiteStore appends turn events to a SQLite database.
type SQLiteStore struct {
	mu     sync.Mutex
	db     *sql.DB
	closed bool
}

func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("sqlite transcript store: empty dsn")
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// in-memory databases are per connection
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// DSNForFile returns a DSN for a database file.
func DSNForFile(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("sqlite transcript store: empty path")
	}
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path), nil
}

func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(sqliteTranscriptSchemaV1); err != nil {
		return err
	}
	return nil
}

func (s *SQLiteStore) ensureOpen() error {
	if s.closed {
		return fmt.Errorf("sqlite transcript store closed")
	}
	return nil
}

// Record appends an event.
func (s *SQLiteStore) Record(ctx context.Context, e *events.TurnEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureOpen(); err != nil {
		return err
	}
	created := e.Time
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO turn_events (turn_id, conversation_id, type, family, version, action, status, error,
    duration_ms, request_json, response_json, created_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.TurnID,
		e.ConversationID,
		string(e.Type),
		e.Family,
		e.Version,
		e.Action,
		e.Status,
		e.Error,
		e.Duration.Milliseconds(),
		string(e.Request),
		string(e.Response),
		created.UnixMilli(),
	)
	return err
}

// Conversation returns the events of a conversation in insertion order.
// limit <= 0 returns all of them.
func (s *SQLiteStore) Conversation(ctx context.Context, conversationID string, limit int) ([]Entry, error) {
	q := `SELECT id, turn_id, conversation_id, type, family, version, action, status, error,
    duration_ms, request_json, response_json, created_at_ms
FROM turn_events WHERE conversation_id = ? ORDER BY id ASC`
	args := []any{conversationID}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.query(ctx, q, args...)
}

// Turn returns the events of one turn.
func (s *SQLiteStore) Turn(ctx context.Context, turnID string) ([]Entry, error) {
	return s.query(ctx, `SELECT id, turn_id, conversation_id, type, family, version, action, status, error,
    duration_ms, request_json, response_json, created_at_ms
FROM turn_events WHERE turn_id = ? ORDER BY id ASC`, turnID)
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var ret []Entry
	for rows.Next() {
		var e Entry
		var typ string
		var durationMS, createdMS int64
		if err := rows.Scan(&e.ID, &e.TurnID, &e.ConversationID, &typ, &e.Family, &e.Version, &e.Action,
			&e.Status, &e.Error, &durationMS, &e.Request, &e.Response, &createdMS); err != nil {
			return nil, err
		}
		e.Type = events.EventType(typ)
		e.Duration = time.Duration(durationMS) * time.Millisecond
		e.CreatedAt = time.UnixMilli(createdMS)
		ret = append(ret, e)
	}
	return ret, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

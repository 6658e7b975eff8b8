// Package store persists chat sessions in SQLite.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Timestamps are stored as fixed-width UTC text so they order
// lexicographically and survive aggregate queries unchanged.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Turn is one persisted chat turn.
type Turn struct {
	ID        string
	SessionID string
	Role      string
	View      string
	Content   string
	CreatedAt time.Time
}

// SessionInfo summarizes a stored session for listing.
type SessionInfo struct {
	ID        string
	Turns     int
	StartedAt time.Time
	LastAt    time.Time
}

// SessionStore holds chat history in a local SQLite database.
type SessionStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// NewSessionStore initializes the SQLite database at the given path.
func NewSessionStore(path string) (*SessionStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SessionStore{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SessionStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS turns (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		role TEXT NOT NULL,
		view TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id, created_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveTurn appends a turn to its session.
func (s *SessionStore) SaveTurn(t Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" || t.SessionID == "" {
		return fmt.Errorf("turn needs id and session id")
	}
	_, err := s.db.Exec(
		`INSERT INTO turns (id, session_id, role, view, content, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.SessionID, t.Role, t.View, t.Content, t.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save turn: %w", err)
	}
	return nil
}

// History returns a session's turns in chronological order.
func (s *SessionStore) History(sessionID string) ([]Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT id, session_id, role, view, content, created_at FROM turns
		 WHERE session_id = ? ORDER BY created_at ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		var created string
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Role, &t.View, &t.Content, &created); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		t.CreatedAt, err = time.Parse(timeLayout, created)
		if err != nil {
			return nil, fmt.Errorf("failed to parse turn timestamp: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// Sessions lists stored sessions, most recently active first.
func (s *SessionStore) Sessions() ([]SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT session_id, COUNT(*), MIN(created_at), MAX(created_at) FROM turns
		 GROUP BY session_id ORDER BY MAX(created_at) DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var infos []SessionInfo
	for rows.Next() {
		var info SessionInfo
		var started, last string
		if err := rows.Scan(&info.ID, &info.Turns, &started, &last); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if info.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("failed to parse session start: %w", err)
		}
		if info.LastAt, err = time.Parse(timeLayout, last); err != nil {
			return nil, fmt.Errorf("failed to parse session activity: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// DeleteSession removes a session and its turns.
func (s *SessionStore) DeleteSession(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM turns WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SessionStore) Close() error {
	return s.db.Close()
}

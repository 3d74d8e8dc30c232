// Package storage provides SQLite session storage.
//
// Information Hiding:
// - SQLite connection management hidden behind interface
// - Schema details encapsulated (compatible with existing chat_sessions.db files)
// - Thread-safe via sql.DB's built-in connection pooling

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/richinex/parley/model"
)

// SqliteStorage implements SessionStore using SQLite.
// One row per session: id, session_name and the JSON transcript in history.
type SqliteStorage struct {
	db *sql.DB
}

// OpenSqlite opens or creates a SQLite database at the given path.
// Creates parent directories if they don't exist.
func OpenSqlite(path string) (*SqliteStorage, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	storage := &SqliteStorage{db: db}
	if err := storage.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// NewSqliteInMemory creates an in-memory database (useful for testing).
func NewSqliteInMemory() (*SqliteStorage, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}
	// Each pooled connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	storage := &SqliteStorage{db: db}
	if err := storage.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// Close closes the database connection.
func (s *SqliteStorage) Close() error {
	return s.db.Close()
}

func (s *SqliteStorage) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS chat_sessions (
			id INTEGER PRIMARY KEY,
			session_name TEXT,
			history TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_chat_sessions_name
		ON chat_sessions(session_name);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Create inserts a new session and returns its id.
func (s *SqliteStorage) Create(ctx context.Context, name string, transcript model.Transcript) (int64, error) {
	history, err := model.MarshalTranscript(transcript)
	if err != nil {
		return 0, storeErr("create", err)
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO chat_sessions (session_name, history) VALUES (?, ?)",
		name, history)
	if err != nil {
		return 0, storeErr("create", fmt.Errorf("failed to insert session: %w", err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, storeErr("create", fmt.Errorf("failed to read session id: %w", err))
	}
	return id, nil
}

// Update overwrites the transcript of an existing session.
func (s *SqliteStorage) Update(ctx context.Context, id int64, transcript model.Transcript) error {
	history, err := model.MarshalTranscript(transcript)
	if err != nil {
		return storeErr("update", err)
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE chat_sessions SET history = ? WHERE id = ?",
		history, id)
	if err != nil {
		return storeErr("update", fmt.Errorf("failed to update session: %w", err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("update", fmt.Errorf("failed to read affected rows: %w", err))
	}
	if n == 0 {
		return storeErr("update", fmt.Errorf("id %d: %w", id, model.ErrSessionNotFound))
	}
	return nil
}

// Rename overwrites the name of a session. Unknown ids are ignored.
func (s *SqliteStorage) Rename(ctx context.Context, id int64, name string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE chat_sessions SET session_name = ? WHERE id = ?",
		name, id)
	if err != nil {
		return storeErr("rename", fmt.Errorf("failed to rename session: %w", err))
	}
	return nil
}

// Delete removes a session.
func (s *SqliteStorage) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM chat_sessions WHERE id = ?", id)
	if err != nil {
		return storeErr("delete", fmt.Errorf("failed to delete session: %w", err))
	}
	return nil
}

// FindIDByName returns the lowest id whose name matches.
func (s *SqliteStorage) FindIDByName(ctx context.Context, name string) (int64, bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM chat_sessions WHERE session_name = ? ORDER BY id ASC LIMIT 1",
		name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, storeErr("find", fmt.Errorf("failed to look up session: %w", err))
	}
	return id, true, nil
}

// FindByName returns the lowest-id session with the given name.
// Returns nil, nil if not found.
func (s *SqliteStorage) FindByName(ctx context.Context, name string) (*model.Session, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, session_name, history FROM chat_sessions WHERE session_name = ? ORDER BY id ASC LIMIT 1",
		name)
	return scanSession(row, "find")
}

// Get returns the session with the given id.
// Returns nil, nil if not found.
func (s *SqliteStorage) Get(ctx context.Context, id int64) (*model.Session, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, session_name, history FROM chat_sessions WHERE id = ?",
		id)
	return scanSession(row, "get")
}

// scanSession scans a single session row.
func scanSession(row *sql.Row, op string) (*model.Session, error) {
	var session model.Session
	var name, history sql.NullString

	err := row.Scan(&session.ID, &name, &history)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr(op, fmt.Errorf("failed to scan session: %w", err))
	}

	session.Name = name.String
	// NULL history (rows written by other tools) loads as an empty transcript.
	session.Transcript, err = model.UnmarshalTranscript(history.String)
	if err != nil {
		return nil, storeErr(op, fmt.Errorf("corrupt history for session %d: %w", session.ID, err))
	}
	return &session, nil
}

// CountByName returns how many sessions share a name.
func (s *SqliteStorage) CountByName(ctx context.Context, name string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chat_sessions WHERE session_name = ?",
		name).Scan(&count)
	if err != nil {
		return 0, storeErr("find", fmt.Errorf("failed to count sessions: %w", err))
	}
	return count, nil
}

// ListNames lists session names in table order.
func (s *SqliteStorage) ListNames(ctx context.Context) ([]string, error) {
	infos, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	return names, nil
}

// List lists sessions in table order.
func (s *SqliteStorage) List(ctx context.Context) ([]model.SessionInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, session_name FROM chat_sessions ORDER BY id ASC")
	if err != nil {
		return nil, storeErr("list", fmt.Errorf("failed to query sessions: %w", err))
	}
	defer rows.Close()

	sessions := []model.SessionInfo{} // Start with empty slice, not nil
	for rows.Next() {
		var info model.SessionInfo
		var name sql.NullString
		if err := rows.Scan(&info.ID, &name); err != nil {
			return nil, storeErr("list", fmt.Errorf("failed to scan session: %w", err))
		}
		info.Name = name.String
		sessions = append(sessions, info)
	}

	if err := rows.Err(); err != nil {
		return nil, storeErr("list", fmt.Errorf("error iterating sessions: %w", err))
	}

	return sessions, nil
}

// Verify SqliteStorage implements SessionStore
var _ SessionStore = (*SqliteStorage)(nil)

package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinex/parley/model"
)

func TestSqliteStoragePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "chat_sessions.db")
	ctx := context.Background()

	store, err := OpenSqlite(path)
	require.NoError(t, err)
	id, err := store.Create(ctx, "Persistent", sampleTranscript())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := OpenSqlite(path)
	require.NoError(t, err)
	defer reopened.Close()

	session, err := reopened.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "Persistent", session.Name)
	assert.Len(t, session.Transcript, 2)
}

func TestSqliteStorageStoredHistoryFormat(t *testing.T) {
	store, err := NewSqliteInMemory()
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	id, err := store.Create(ctx, "Arithmetic Question", sampleTranscript())
	require.NoError(t, err)

	var name, history string
	err = store.db.QueryRowContext(ctx,
		"SELECT session_name, history FROM chat_sessions WHERE id = ?", id).Scan(&name, &history)
	require.NoError(t, err)

	assert.Equal(t, `[{"role":"user","parts":["What is 2+2?"]},{"role":"model","parts":["4"]}]`, history)
	assert.Equal(t, "Arithmetic Question", name)
}

// Rows written by other tools may carry NULL columns.
func TestSqliteStorageNullHistoryLoadsEmpty(t *testing.T) {
	store, err := NewSqliteInMemory()
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	res, err := store.db.ExecContext(ctx,
		"INSERT INTO chat_sessions (session_name, history) VALUES (?, NULL)", "legacy")
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)

	session, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.NotNil(t, session.Transcript)
	assert.Empty(t, session.Transcript)
}

func TestSqliteStorageCorruptHistory(t *testing.T) {
	store, err := NewSqliteInMemory()
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	_, err = store.db.ExecContext(ctx,
		"INSERT INTO chat_sessions (session_name, history) VALUES (?, ?)", "broken", "{oops")
	require.NoError(t, err)

	_, err = store.FindByName(ctx, "broken")
	var storeErr *model.StoreError
	assert.ErrorAs(t, err, &storeErr)
}

func TestSqliteStorageOpensExistingTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_sessions.db")

	// Table created the way older versions of the app did it.
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS chat_sessions
		(id INTEGER PRIMARY KEY, session_name TEXT, history TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO chat_sessions (session_name, history) VALUES (?, ?)`,
		"Old Chat", `[{"role": "user", "parts": ["hi"]}, {"role": "model", "parts": ["hello"]}]`)
	require.NoError(t, err)
	db.Close()

	store, err := OpenSqlite(path)
	require.NoError(t, err)
	defer store.Close()

	session, err := store.FindByName(context.Background(), "Old Chat")
	require.NoError(t, err)
	require.NotNil(t, session)
	require.Len(t, session.Transcript, 2)
	assert.Equal(t, "hello", session.Transcript[1].Text())
}

func TestSqliteStorageClosedDatabaseReturnsStoreError(t *testing.T) {
	store, err := NewSqliteInMemory()
	require.NoError(t, err)
	store.Close()

	_, err = store.Create(context.Background(), "x", nil)
	var storeErr *model.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "create", storeErr.Op)
}

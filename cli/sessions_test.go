package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinex/parley/chat"
	"github.com/richinex/parley/model"
	"github.com/richinex/parley/storage"
)

func seededController(t *testing.T) (*chat.Controller, *storage.InMemoryStorage) {
	t.Helper()
	store := storage.NewInMemoryStorage()
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	_, err := store.Create(ctx, "Arithmetic Question", model.Transcript{model.UserTurn("What is 2+2?"), model.ModelTurn("4")})
	require.NoError(t, err)
	_, err = store.Create(ctx, "Greeting", model.Transcript{model.UserTurn("hi"), model.ModelTurn("hello")})
	require.NoError(t, err)

	return chat.NewController(store, nil), store
}

func TestListSessionsCommand(t *testing.T) {
	ctrl, _ := seededController(t)

	var out bytes.Buffer
	require.NoError(t, listSessions(context.Background(), ctrl, &out))
	assert.Contains(t, out.String(), "Sessions (2)")
	assert.Contains(t, out.String(), "#1 Arithmetic Question")
	assert.Contains(t, out.String(), "#2 Greeting")
}

func TestShowSessionByIDAndName(t *testing.T) {
	ctrl, _ := seededController(t)
	ctx := context.Background()

	var byID bytes.Buffer
	require.NoError(t, showSession(ctx, ctrl, "2", &byID))
	assert.Contains(t, byID.String(), "You: hi")

	var byName bytes.Buffer
	require.NoError(t, showSession(ctx, ctrl, "Arithmetic Question", &byName))
	assert.Contains(t, byName.String(), "Model: 4")

	err := showSession(ctx, ctrl, "nope", &bytes.Buffer{})
	assert.ErrorIs(t, err, model.ErrSessionNotFound)
}

func TestResolveNumericNameFallsBackToName(t *testing.T) {
	ctrl, store := seededController(t)
	ctx := context.Background()

	id, err := store.Create(ctx, "2024", model.Transcript{})
	require.NoError(t, err)

	st, err := resolve(ctx, ctrl, "2024")
	require.NoError(t, err)
	assert.Equal(t, id, st.SessionID)
}

func TestRenameSessionCommand(t *testing.T) {
	ctrl, store := seededController(t)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, renameSession(ctx, ctrl, "Greeting", "Hello There", &out))
	assert.Contains(t, out.String(), "Renamed #2 to Hello There")

	names, err := store.ListNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Arithmetic Question", "Hello There"}, names)

	err = renameSession(ctx, ctrl, "1", " ", &out)
	assert.ErrorIs(t, err, model.ErrEmptyInput)
}

func TestDeleteSessionCommand(t *testing.T) {
	ctrl, store := seededController(t)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, deleteSession(ctx, ctrl, "1", &out))
	assert.Contains(t, out.String(), "Deleted #1 Arithmetic Question")

	session, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, session)

	err = deleteSession(ctx, ctrl, "1", &out)
	assert.ErrorIs(t, err, model.ErrSessionNotFound)
}

func TestExportSessionToWriter(t *testing.T) {
	ctrl, _ := seededController(t)

	var out bytes.Buffer
	require.NoError(t, exportSession(context.Background(), ctrl, "1", "json", "-", &out))

	var doc struct {
		ID      int64  `json:"id"`
		Name    string `json:"name"`
		History []struct {
			Role  string   `json:"role"`
			Parts []string `json:"parts"`
		} `json:"history"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, int64(1), doc.ID)
	assert.Equal(t, "Arithmetic Question", doc.Name)
	require.Len(t, doc.History, 2)
	assert.Equal(t, []string{"4"}, doc.History[1].Parts)
}

func TestExportSessionToFile(t *testing.T) {
	ctrl, _ := seededController(t)
	path := filepath.Join(t.TempDir(), "greeting.md")

	var out bytes.Buffer
	require.NoError(t, exportSession(context.Background(), ctrl, "Greeting", "md", path, &out))
	assert.Contains(t, out.String(), "Exported #2 to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Greeting")
	assert.Contains(t, string(data), "### Model\n\nhello")
}

func TestExportSessionUnknownFormat(t *testing.T) {
	ctrl, _ := seededController(t)

	err := exportSession(context.Background(), ctrl, "1", "pdf", "-", &bytes.Buffer{})
	assert.ErrorContains(t, err, "unknown export format")
}

func TestListSessionsOpensDatabase(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PARLEY_DB_PATH", "")
	t.Setenv("LLM_PROVIDER", "")

	dbPath := filepath.Join(t.TempDir(), "sessions.db")
	opts := Options{DBPath: dbPath}

	var out bytes.Buffer
	require.NoError(t, ListSessions(context.Background(), opts, &out))
	assert.Contains(t, out.String(), "No saved sessions")

	_, err := os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{model.EmptyInput("message"), "invalid message: must not be empty"},
		{&model.StoreError{Op: "select", Err: model.ErrSessionNotFound}, "session not found"},
		{&model.StoreError{Op: "create", Err: errors.New("disk full")}, "could not create session: disk full"},
		{&model.ModelError{Op: "reply", Err: errors.New("timeout")}, "model request failed: timeout"},
		{&model.ModelError{Op: "title", Err: errors.New("quota")}, "could not name the session: quota"},
		{errors.New("plain"), "plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, describeError(tt.err))
	}
}

func TestNewLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.LevelWarn, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "session_id", 3)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "session_id=3")
}

func TestLoadSettingsOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PARLEY_DB_PATH", "")
	t.Setenv("PARLEY_LOG_LEVEL", "")
	t.Setenv("LLM_PROVIDER", "")

	settings, err := loadSettings(Options{Provider: "claude", DBPath: "custom.db", Verbose: true})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", settings.LLM.Provider)
	assert.Equal(t, "custom.db", settings.Store.Path)
	assert.Equal(t, slog.LevelDebug, settings.Log.Level)
}

func TestSearchSessionsCommand(t *testing.T) {
	ctrl, _ := seededController(t)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, searchSessions(ctx, ctrl, "HELLO", 0, &out))
	assert.Contains(t, out.String(), "Matches (1)")
	assert.Contains(t, out.String(), "#2 Greeting Model: hello")

	err := searchSessions(ctx, ctrl, "", 0, &out)
	assert.ErrorIs(t, err, model.ErrEmptyInput)
}

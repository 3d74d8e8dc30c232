// Package storage provides session storage abstraction.
//
// Information Hiding:
// - Storage backend implementation details hidden behind interface
// - Allows swapping between memory and SQLite without API changes
// - Transcript serialization happens inside each backend

package storage

import (
	"context"

	"github.com/richinex/parley/model"
)

// SessionStore defines the interface for persisting named chat sessions.
// Every mutating call commits on its own; related calls are not grouped
// into a transaction. All failures are returned as *model.StoreError.
type SessionStore interface {
	// Create inserts a new session and returns its assigned id.
	Create(ctx context.Context, name string, transcript model.Transcript) (int64, error)

	// Update overwrites the transcript of an existing session.
	// Returns a StoreError wrapping model.ErrSessionNotFound if id is unknown.
	Update(ctx context.Context, id int64, transcript model.Transcript) error

	// Rename overwrites the name of a session.
	// Renaming an unknown id does nothing and returns nil.
	Rename(ctx context.Context, id int64, name string) error

	// Delete removes a session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id int64) error

	// FindIDByName returns the lowest id whose name matches.
	FindIDByName(ctx context.Context, name string) (int64, bool, error)

	// FindByName returns the lowest-id session whose name matches, or nil.
	FindByName(ctx context.Context, name string) (*model.Session, error)

	// Get returns the session with the given id, or nil.
	Get(ctx context.Context, id int64) (*model.Session, error)

	// CountByName returns how many sessions share a name.
	CountByName(ctx context.Context, name string) (int, error)

	// ListNames lists session names in insertion order.
	ListNames(ctx context.Context) ([]string, error)

	// List lists sessions (id and name) in insertion order.
	List(ctx context.Context) ([]model.SessionInfo, error)

	// Close releases the backend.
	Close() error
}

func storeErr(op string, err error) error {
	return &model.StoreError{Op: op, Err: err}
}

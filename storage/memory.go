// Package storage provides in-memory session storage.
//
// Information Hiding:
// - Map storage structure hidden from users
// - Thread-safe access via RWMutex hidden behind interface
// - Suitable for testing and ephemeral sessions

package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/richinex/parley/model"
)

// InMemoryStorage implements SessionStore using an in-memory map.
// Data is lost when process terminates.
type InMemoryStorage struct {
	mu       sync.RWMutex
	nextID   int64
	order    []int64
	sessions map[int64]*model.Session
}

// NewInMemoryStorage creates a new in-memory storage.
func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{
		nextID:   1,
		sessions: make(map[int64]*model.Session),
	}
}

// Create inserts a new session and returns its id.
func (s *InMemoryStorage) Create(ctx context.Context, name string, transcript model.Transcript) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	// Make a copy to avoid external mutations
	s.sessions[id] = &model.Session{ID: id, Name: name, Transcript: transcript.Clone()}
	s.order = append(s.order, id)
	return id, nil
}

// Update overwrites the transcript of an existing session.
func (s *InMemoryStorage) Update(ctx context.Context, id int64, transcript model.Transcript) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return storeErr("update", fmt.Errorf("id %d: %w", id, model.ErrSessionNotFound))
	}
	session.Transcript = transcript.Clone()
	return nil
}

// Rename overwrites the name of a session. Unknown ids are ignored.
func (s *InMemoryStorage) Rename(ctx context.Context, id int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[id]; ok {
		session.Name = name
	}
	return nil
}

// Delete removes a session.
func (s *InMemoryStorage) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return nil
	}
	delete(s.sessions, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// FindIDByName returns the lowest id whose name matches.
func (s *InMemoryStorage) FindIDByName(ctx context.Context, name string) (int64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if session := s.firstByName(name); session != nil {
		return session.ID, true, nil
	}
	return 0, false, nil
}

// FindByName returns the lowest-id session with the given name.
func (s *InMemoryStorage) FindByName(ctx context.Context, name string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return copySession(s.firstByName(name)), nil
}

// Get returns the session with the given id.
func (s *InMemoryStorage) Get(ctx context.Context, id int64) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return copySession(s.sessions[id]), nil
}

// CountByName returns how many sessions share a name.
func (s *InMemoryStorage) CountByName(ctx context.Context, name string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, id := range s.order {
		if s.sessions[id].Name == name {
			count++
		}
	}
	return count, nil
}

// ListNames lists session names in insertion order.
func (s *InMemoryStorage) ListNames(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.order))
	for _, id := range s.order {
		names = append(names, s.sessions[id].Name)
	}
	return names, nil
}

// List lists sessions in insertion order.
func (s *InMemoryStorage) List(ctx context.Context) ([]model.SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]model.SessionInfo, 0, len(s.order))
	for _, id := range s.order {
		infos = append(infos, model.SessionInfo{ID: id, Name: s.sessions[id].Name})
	}
	return infos, nil
}

// Close is a no-op for in-memory storage.
func (s *InMemoryStorage) Close() error {
	return nil
}

// firstByName relies on order being ascending by id. Caller holds the lock.
func (s *InMemoryStorage) firstByName(name string) *model.Session {
	for _, id := range s.order {
		if session := s.sessions[id]; session.Name == name {
			return session
		}
	}
	return nil
}

func copySession(session *model.Session) *model.Session {
	if session == nil {
		return nil
	}
	return &model.Session{ID: session.ID, Name: session.Name, Transcript: session.Transcript.Clone()}
}

// Verify InMemoryStorage implements SessionStore
var _ SessionStore = (*InMemoryStorage)(nil)

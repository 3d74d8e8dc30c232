// Package chat implements the conversation controller: the state machine
// that appends turns, asks the model for replies and keeps the session
// store in sync.
//
// Information Hiding:
// - Save policy (create with generated title vs update) hidden inside Send
// - Rollback of the optimistic append on failure hidden
// - Exchange correlation ids hidden in log records

package chat

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/richinex/parley/llm"
	"github.com/richinex/parley/model"
	"github.com/richinex/parley/storage"
)

// fallbackTitleRunes bounds the session name used when the model
// returns an unusable title.
const fallbackTitleRunes = 40

// ModelClient is the model collaborator the controller depends on.
// *llm.Client satisfies it.
type ModelClient interface {
	// GenerateReply streams the reply to a transcript ending in a user turn.
	GenerateReply(ctx context.Context, transcript model.Transcript) iter.Seq2[string, error]

	// GenerateShortTitle returns a short session name describing seed.
	GenerateShortTitle(ctx context.Context, seed string) (string, error)
}

var _ ModelClient = (*llm.Client)(nil)

// Controller drives a single conversation. Calls are sequential; the
// controller holds no conversation state of its own.
type Controller struct {
	store  storage.SessionStore
	client ModelClient
	logger *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. The default discards all records.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewController creates a controller over a store and a model client.
func NewController(store storage.SessionStore, client ModelClient, opts ...Option) *Controller {
	c := &Controller{
		store:  store,
		client: client,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StartNew returns an empty, unsaved conversation.
func (c *Controller) StartNew() State {
	return State{History: model.Transcript{}}
}

// Select loads the first session (lowest id) with the given name.
func (c *Controller) Select(ctx context.Context, name string) (State, error) {
	if strings.TrimSpace(name) == "" {
		return State{}, model.EmptyInput("name")
	}

	count, err := c.store.CountByName(ctx, name)
	if err != nil {
		return State{}, err
	}
	if count == 0 {
		return State{}, &model.StoreError{Op: "select", Err: model.ErrSessionNotFound}
	}
	if count > 1 {
		c.logger.Warn("session name is shared, loading lowest id", "name", name, "count", count)
	}

	session, err := c.store.FindByName(ctx, name)
	if err != nil {
		return State{}, err
	}
	if session == nil {
		return State{}, &model.StoreError{Op: "select", Err: model.ErrSessionNotFound}
	}

	c.logger.Debug("session selected", "session_id", session.ID, "turns", len(session.Transcript))
	return stateOf(session), nil
}

// SelectID loads a session by id.
func (c *Controller) SelectID(ctx context.Context, id int64) (State, error) {
	session, err := c.store.Get(ctx, id)
	if err != nil {
		return State{}, err
	}
	if session == nil {
		return State{}, &model.StoreError{Op: "select", Err: model.ErrSessionNotFound}
	}

	c.logger.Debug("session selected", "session_id", session.ID, "turns", len(session.Transcript))
	return stateOf(session), nil
}

// Send appends text as a user turn, streams the model's reply and saves
// the exchange. onFragment, if non-nil, receives each reply fragment in
// arrival order.
//
// The exchange is append-or-nothing: on any error the returned state is
// st unchanged and nothing was written.
func (c *Controller) Send(ctx context.Context, st State, text string, onFragment func(string)) (State, error) {
	if strings.TrimSpace(text) == "" {
		return st, model.EmptyInput("message")
	}

	log := c.logger.With("exchange_id", uuid.NewString())
	if !st.IsNew() {
		log = log.With("session_id", st.SessionID)
	}

	// PhaseDirty from here until the save is confirmed.
	next := st.clone()
	next.History = append(next.History, model.UserTurn(text))

	reply, err := c.collectReply(ctx, next.History, onFragment)
	if err != nil {
		log.Error("reply failed", "error", err)
		return st, err
	}
	next.History = append(next.History, model.ModelTurn(reply))
	log.Debug("reply received", "runes", len([]rune(reply)))

	if !next.IsNew() {
		if err := c.store.Update(ctx, next.SessionID, next.History); err != nil {
			log.Error("update failed", "error", err)
			return st, err
		}
		log.Info("session updated", "turns", len(next.History))
		return next, nil
	}

	title, err := c.client.GenerateShortTitle(ctx, text)
	if err != nil {
		log.Error("title failed", "error", err)
		return st, asModelError("title", err)
	}
	if title == "" {
		title = llm.ClipRunes(strings.TrimSpace(text), fallbackTitleRunes)
		log.Warn("empty title, using message text", "title", title)
	}

	id, err := c.store.Create(ctx, title, next.History)
	if err != nil {
		log.Error("create failed", "error", err)
		return st, err
	}
	next.SessionID = id
	next.SessionName = title
	log.Info("session created", "session_id", id, "name", title)
	return next, nil
}

func (c *Controller) collectReply(ctx context.Context, history model.Transcript, onFragment func(string)) (string, error) {
	var b strings.Builder
	for fragment, err := range c.client.GenerateReply(ctx, history) {
		if err != nil {
			return "", asModelError("reply", err)
		}
		if onFragment != nil {
			onFragment(fragment)
		}
		b.WriteString(fragment)
	}
	return b.String(), nil
}

// Rename changes the name of the active session.
func (c *Controller) Rename(ctx context.Context, st State, name string) (State, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return st, model.EmptyInput("name")
	}
	if st.IsNew() {
		return st, model.NoActiveSession("rename")
	}

	// An id deleted behind our back is silently ignored by the store.
	if err := c.store.Rename(ctx, st.SessionID, name); err != nil {
		return st, err
	}

	next := st.clone()
	next.SessionName = name
	c.logger.Info("session renamed", "session_id", st.SessionID, "name", name)
	return next, nil
}

// Delete removes the active session and returns a new conversation.
func (c *Controller) Delete(ctx context.Context, st State) (State, error) {
	if st.IsNew() {
		return st, model.NoActiveSession("delete")
	}
	if err := c.store.Delete(ctx, st.SessionID); err != nil {
		return st, err
	}
	c.logger.Info("session deleted", "session_id", st.SessionID)
	return c.StartNew(), nil
}

// Sessions lists saved sessions in insertion order.
func (c *Controller) Sessions(ctx context.Context) ([]model.SessionInfo, error) {
	return c.store.List(ctx)
}

// Search finds saved turns containing query, ignoring case.
// limit <= 0 returns every match.
func (c *Controller) Search(ctx context.Context, query string, limit int) ([]storage.SearchMatch, error) {
	if strings.TrimSpace(query) == "" {
		return nil, model.EmptyInput("query")
	}
	idx, err := storage.BuildSearchIndex(ctx, c.store)
	if err != nil {
		return nil, err
	}
	matches := idx.Search(query, limit)
	c.logger.Debug("search", "query", query, "sessions", idx.Size(), "matches", len(matches))
	return matches, nil
}

// Suggest lists sessions whose names start with prefix, ignoring case.
func (c *Controller) Suggest(ctx context.Context, prefix string) ([]model.SessionInfo, error) {
	idx, err := storage.BuildSearchIndex(ctx, c.store)
	if err != nil {
		return nil, err
	}
	return idx.Suggest(prefix), nil
}

func stateOf(session *model.Session) State {
	return State{
		SessionID:   session.ID,
		SessionName: session.Name,
		History:     session.Transcript.Clone(),
	}
}

// asModelError keeps an existing *model.ModelError and wraps anything else.
func asModelError(op string, err error) error {
	var modelErr *model.ModelError
	if errors.As(err, &modelErr) {
		return err
	}
	return &model.ModelError{Op: op, Err: err}
}

// Conversation state value object.
//
// Information Hiding:
// - Callers never mutate State in place; every controller operation
//   returns a fresh snapshot

package chat

import "github.com/richinex/parley/model"

// Phase is the lifecycle position of a conversation.
type Phase int

const (
	// PhaseNew means no saved session is associated with the history.
	PhaseNew Phase = iota
	// PhaseLoaded means the history mirrors the stored transcript.
	PhaseLoaded
	// PhaseDirty means turns were appended since the last save.
	// Send passes through it internally and never returns it.
	PhaseDirty
)

func (p Phase) String() string {
	switch p {
	case PhaseNew:
		return "new"
	case PhaseLoaded:
		return "loaded"
	case PhaseDirty:
		return "dirty"
	default:
		return "unknown"
	}
}

// State is a snapshot of the active conversation.
// SessionID 0 means the conversation has not been saved yet.
type State struct {
	SessionID   int64
	SessionName string
	History     model.Transcript
}

// Phase reports whether the state is new or loaded.
func (s State) Phase() Phase {
	if s.SessionID == 0 {
		return PhaseNew
	}
	return PhaseLoaded
}

// IsNew returns true if no session has been saved for this conversation.
func (s State) IsNew() bool {
	return s.SessionID == 0
}

func (s State) clone() State {
	s.History = s.History.Clone()
	return s
}

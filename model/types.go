// Package model provides domain types shared across packages.
package model

import (
	"fmt"
	"strings"
)

// Role identifies who authored a turn.
type Role string

const (
	// RoleUser marks text typed by the person at the keyboard.
	RoleUser Role = "user"
	// RoleModel marks text produced by the language model.
	RoleModel Role = "model"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// ParseRole parses a stored role name.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser:
		return RoleUser, nil
	case RoleModel:
		return RoleModel, nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}

// Turn is one message of a transcript.
// Parts holds the text fragments of the message; current writers always
// produce a single part but readers must accept several.
type Turn struct {
	Role  Role     `json:"role" yaml:"role"`
	Parts []string `json:"parts" yaml:"parts"`
}

// UserTurn creates a single-part user turn.
func UserTurn(text string) Turn {
	return Turn{Role: RoleUser, Parts: []string{text}}
}

// ModelTurn creates a single-part model turn.
func ModelTurn(text string) Turn {
	return Turn{Role: RoleModel, Parts: []string{text}}
}

// Text returns the parts joined in order.
func (t Turn) Text() string {
	return strings.Join(t.Parts, "")
}

// Transcript is the chronological sequence of turns of a session.
type Transcript []Turn

// Clone returns a deep copy so the result shares no backing arrays with t.
func (t Transcript) Clone() Transcript {
	if t == nil {
		return Transcript{}
	}
	out := make(Transcript, len(t))
	for i, turn := range t {
		parts := make([]string, len(turn.Parts))
		copy(parts, turn.Parts)
		out[i] = Turn{Role: turn.Role, Parts: parts}
	}
	return out
}

// Alternates reports whether turns strictly alternate user/model,
// starting with a user turn.
func (t Transcript) Alternates() bool {
	for i, turn := range t {
		want := RoleUser
		if i%2 == 1 {
			want = RoleModel
		}
		if turn.Role != want {
			return false
		}
	}
	return true
}

// Session is a named, persisted conversation.
type Session struct {
	ID         int64      `json:"id" yaml:"id"`
	Name       string     `json:"name" yaml:"name"`
	Transcript Transcript `json:"history" yaml:"history"`
}

// SessionInfo is the listing view of a session.
type SessionInfo struct {
	ID   int64
	Name string
}

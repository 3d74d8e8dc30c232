package model

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned when no stored session matches a lookup.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNoActiveSession is matched by ValidationErrors raised for actions
	// that need a saved session while the conversation is still new.
	ErrNoActiveSession = errors.New("no active session")
	// ErrEmptyInput is matched by ValidationErrors raised for blank text.
	ErrEmptyInput = errors.New("empty input")
)

// StoreError represents a failure of the session store.
type StoreError struct {
	Op  string // "create", "update", "rename", "delete", "find", "list", "select"
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// ModelError represents a failed call to the language model.
type ModelError struct {
	Op  string // "reply", "title"
	Err error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model error: %s: %v", e.Op, e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// ValidationError represents input rejected before any side effect.
type ValidationError struct {
	Field  string
	Reason string
	Kind   error // ErrEmptyInput, ErrNoActiveSession or nil
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// EmptyInput builds the ValidationError for a blank field.
func EmptyInput(field string) *ValidationError {
	return &ValidationError{Field: field, Reason: "must not be empty", Kind: ErrEmptyInput}
}

// NoActiveSession builds the ValidationError for an action that needs a saved session.
func NoActiveSession(action string) *ValidationError {
	return &ValidationError{Field: "session", Reason: action + " requires a saved session", Kind: ErrNoActiveSession}
}

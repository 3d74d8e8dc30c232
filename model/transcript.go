package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MarshalTranscript serializes a transcript to the stored JSON form:
// an array of {"role": ..., "parts": [...]} objects.
// A nil transcript is written as "[]", never "null".
func MarshalTranscript(t Transcript) (string, error) {
	if t == nil {
		t = Transcript{}
	}
	for i := range t {
		if t[i].Parts == nil {
			t = t.Clone()
			break
		}
	}
	data, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("failed to marshal transcript: %w", err)
	}
	return string(data), nil
}

// UnmarshalTranscript parses the stored JSON form.
// Empty input and "null" yield an empty, non-nil transcript.
func UnmarshalTranscript(s string) (Transcript, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return Transcript{}, nil
	}

	var raw []struct {
		Role  string   `json:"role"`
		Parts []string `json:"parts"`
	}
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transcript: %w", err)
	}

	t := make(Transcript, 0, len(raw))
	for i, r := range raw {
		role, err := ParseRole(r.Role)
		if err != nil {
			return nil, fmt.Errorf("turn %d: %w", i, err)
		}
		parts := r.Parts
		if parts == nil {
			parts = []string{}
		}
		t = append(t, Turn{Role: role, Parts: parts})
	}
	return t, nil
}

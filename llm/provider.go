// Package llm provides LLM provider abstractions.
//
// LLM Provider interface - the abstract interface for LLM providers.
// Each provider implementation hides:
// - API client initialization and authentication
// - Request/response format conversion
// - Provider-specific streaming protocol

package llm

import (
	"context"
	"iter"
)

// Provider defines the abstract interface for LLM providers.
// Implementations hide provider-specific details while exposing
// a consistent interface for chat completions.
type Provider interface {
	// Name returns the provider name (for logging/debugging).
	Name() string

	// Model returns the current model being used.
	Model() string

	// Chat sends a chat completion request and blocks for the full reply.
	Chat(ctx context.Context, messages []ChatMessage) (LLMResponse, error)

	// Stream sends a chat completion request and yields text fragments in
	// arrival order. The sequence ends after the last fragment or after the
	// first error. Stopping iteration early, or cancelling ctx, aborts the
	// underlying request.
	Stream(ctx context.Context, messages []ChatMessage) iter.Seq2[string, error]
}

// LLMClient - wraps a Provider with the transcript-level operations the
// conversation controller needs.

package llm

import (
	"context"
	"errors"
	"iter"
	"strings"

	"github.com/richinex/parley/model"
)

// errStreamConsumed is yielded when a reply sequence is iterated twice.
var errStreamConsumed = errors.New("reply stream already consumed")

// Client wraps a Provider with a simple interface.
type Client struct {
	provider Provider
}

// NewClient creates a new LLM client from a provider.
func NewClient(provider Provider) *Client {
	return &Client{provider: provider}
}

// Chat sends a chat completion request and returns just the content.
func (c *Client) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	response, err := c.provider.Chat(ctx, messages)
	if err != nil {
		return "", err
	}
	return response.Content, nil
}

// GenerateReply streams the model's reply to a transcript whose last turn
// is the user's new message. The returned sequence can be ranged over once;
// errors are *model.ModelError.
func (c *Client) GenerateReply(ctx context.Context, transcript model.Transcript) iter.Seq2[string, error] {
	stream := c.provider.Stream(ctx, TranscriptMessages(transcript))

	consumed := false
	return func(yield func(string, error) bool) {
		if consumed {
			yield("", &model.ModelError{Op: "reply", Err: errStreamConsumed})
			return
		}
		consumed = true

		for fragment, err := range stream {
			if err != nil {
				yield("", &model.ModelError{Op: "reply", Err: err})
				return
			}
			if !yield(fragment, nil) {
				return
			}
		}
	}
}

// GenerateShortTitle asks the model for a short session name describing seed.
// The result is cleaned with CleanTitle and may be empty.
func (c *Client) GenerateShortTitle(ctx context.Context, seed string) (string, error) {
	raw, err := c.Chat(ctx, []ChatMessage{UserMessage(TitlePrompt(seed))})
	if err != nil {
		return "", &model.ModelError{Op: "title", Err: err}
	}
	return CleanTitle(raw), nil
}

// TranscriptMessages converts stored turns into provider chat messages.
// Turns with no text are dropped; neighbours left sharing a role are merged.
func TranscriptMessages(transcript model.Transcript) []ChatMessage {
	messages := make([]ChatMessage, 0, len(transcript))
	for _, turn := range transcript {
		text := turn.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}

		var msg ChatMessage
		switch turn.Role {
		case model.RoleUser:
			msg = UserMessage(text)
		case model.RoleModel:
			msg = AssistantMessage(text)
		default:
			continue
		}

		if n := len(messages); n > 0 && messages[n-1].Role == msg.Role {
			messages[n-1].Content += "\n\n" + msg.Content
			continue
		}
		messages = append(messages, msg)
	}
	return messages
}

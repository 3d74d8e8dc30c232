package llm

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinex/parley/model"
)

// fakeProvider returns canned replies and records what it was sent.
type fakeProvider struct {
	chatReply string
	chatErr   error
	fragments []string
	streamErr error // yielded after fragments
	calls     [][]ChatMessage
}

func (f *fakeProvider) Name() string  { return "fake" }
func (f *fakeProvider) Model() string { return "fake-1" }

func (f *fakeProvider) Chat(ctx context.Context, messages []ChatMessage) (LLMResponse, error) {
	f.calls = append(f.calls, messages)
	if f.chatErr != nil {
		return LLMResponse{}, f.chatErr
	}
	return LLMResponse{Content: f.chatReply}, nil
}

func (f *fakeProvider) Stream(ctx context.Context, messages []ChatMessage) iter.Seq2[string, error] {
	f.calls = append(f.calls, messages)
	return func(yield func(string, error) bool) {
		for _, fragment := range f.fragments {
			if !yield(fragment, nil) {
				return
			}
		}
		if f.streamErr != nil {
			yield("", f.streamErr)
		}
	}
}

func TestTranscriptMessagesMapsRoles(t *testing.T) {
	messages := TranscriptMessages(model.Transcript{
		model.UserTurn("hi"),
		model.ModelTurn("hello"),
		{Role: model.RoleUser, Parts: []string{"a", "b"}},
	})

	assert.Equal(t, []ChatMessage{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
		{Role: RoleUser, Content: "ab"},
	}, messages)
}

func TestTranscriptMessagesSkipsEmptyTurns(t *testing.T) {
	messages := TranscriptMessages(model.Transcript{
		model.UserTurn("hi"),
		model.ModelTurn(""),
		model.UserTurn("again"),
		model.ModelTurn("  "),
	})

	for _, m := range messages {
		assert.NotEmpty(t, m.Content)
	}
	assert.Equal(t, []ChatMessage{{Role: RoleUser, Content: "hi\n\nagain"}}, messages)
}

func TestGenerateReplyAfterEmptyReply(t *testing.T) {
	provider := &fakeProvider{fragments: []string{"ok"}}
	client := NewClient(provider)

	history := model.Transcript{model.UserTurn("hi"), model.ModelTurn(""), model.UserTurn("again")}
	for _, err := range client.GenerateReply(context.Background(), history) {
		require.NoError(t, err)
	}

	require.Len(t, provider.calls, 1)
	assert.Equal(t, []ChatMessage{UserMessage("hi\n\nagain")}, provider.calls[0])
}

func TestGenerateReplyYieldsFragmentsInOrder(t *testing.T) {
	provider := &fakeProvider{fragments: []string{"4", "2"}}
	client := NewClient(provider)

	var got []string
	for fragment, err := range client.GenerateReply(context.Background(), model.Transcript{model.UserTurn("?")}) {
		require.NoError(t, err)
		got = append(got, fragment)
	}

	assert.Equal(t, []string{"4", "2"}, got)
	require.Len(t, provider.calls, 1)
	assert.Equal(t, "?", provider.calls[0][0].Content)
}

func TestGenerateReplyWrapsErrors(t *testing.T) {
	provider := &fakeProvider{fragments: []string{"par"}, streamErr: errors.New("quota exceeded")}
	client := NewClient(provider)

	var gotErr error
	for _, err := range client.GenerateReply(context.Background(), nil) {
		if err != nil {
			gotErr = err
		}
	}

	var modelErr *model.ModelError
	require.ErrorAs(t, gotErr, &modelErr)
	assert.Equal(t, "reply", modelErr.Op)
}

func TestGenerateReplyIsSingleUse(t *testing.T) {
	client := NewClient(&fakeProvider{fragments: []string{"x"}})
	stream := client.GenerateReply(context.Background(), nil)

	for range stream {
	}

	var gotErr error
	for _, err := range stream {
		gotErr = err
	}
	assert.ErrorIs(t, gotErr, errStreamConsumed)
}

func TestGenerateShortTitle(t *testing.T) {
	provider := &fakeProvider{chatReply: "  \"Arithmetic Question\"\n"}
	client := NewClient(provider)

	title, err := client.GenerateShortTitle(context.Background(), "What is 2+2?")
	require.NoError(t, err)
	assert.Equal(t, "Arithmetic Question", title)

	want := `Provide a short and descriptive session name for this chat about "What is 2+2?". Return just one name only and nothing else.`
	assert.Equal(t, want, provider.calls[0][0].Content)
}

func TestGenerateShortTitleError(t *testing.T) {
	client := NewClient(&fakeProvider{chatErr: errors.New("unauthorized")})

	_, err := client.GenerateShortTitle(context.Background(), "x")
	var modelErr *model.ModelError
	require.ErrorAs(t, err, &modelErr)
	assert.Equal(t, "title", modelErr.Op)
}

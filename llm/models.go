package llm

// Roles used in provider requests. Transcripts use "model" for replies;
// Client maps it to RoleAssistant.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one message in a provider request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UserMessage creates a user message.
func UserMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleUser, Content: content}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleAssistant, Content: content}
}

// LLMResponse is a complete, non-streamed reply.
type LLMResponse struct {
	Content string
	Usage   *TokenUsage
}

// TokenUsage contains token counts reported by the vendor, when available.
type TokenUsage struct {
	PromptTokens     uint32
	CompletionTokens uint32
	TotalTokens      uint32
}

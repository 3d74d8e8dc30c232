// Provider construction for the chat front-end.
//
// A ProviderType names a vendor; the builder fills in the vendor's
// default model, token limit and temperature:
//
//	p, err := llm.ProviderGemini.FromEnv()
//	p, err := llm.ProviderAnthropic.Model(llm.ModelAnthropicClaudeSonnet4).MaxTokens(2048).APIKey(key)

package llm

import (
	"fmt"
	"os"
	"strings"
)

// ProviderType represents supported LLM providers.
type ProviderType int

const (
	// ProviderGemini is the Google Gemini provider. It is the default.
	ProviderGemini ProviderType = iota
	// ProviderOpenAI is the OpenAI provider (GPT models).
	ProviderOpenAI
	// ProviderAnthropic is the Anthropic provider (Claude models).
	ProviderAnthropic
	// ProviderDeepSeek is the DeepSeek provider.
	ProviderDeepSeek
)

// Builder defaults shared by every vendor.
const (
	DefaultMaxTokens   uint32  = 4096
	DefaultTemperature float32 = 0.7
)

type vendor struct {
	name         string
	aliases      []string
	keyEnv       []string
	defaultModel string
	construct    func(apiKey, model string, maxTokens uint32, temperature float32) Provider
}

var vendors = map[ProviderType]vendor{
	ProviderGemini: {
		name:         "gemini",
		aliases:      []string{"google"},
		keyEnv:       []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"},
		defaultModel: ModelGeminiFlash25,
		construct: func(k, m string, n uint32, t float32) Provider {
			return NewGeminiProvider(k, m, n, t)
		},
	},
	ProviderOpenAI: {
		name:         "openai",
		aliases:      []string{"gpt"},
		keyEnv:       []string{"OPENAI_API_KEY"},
		defaultModel: ModelOpenAIGPT4o,
		construct: func(k, m string, n uint32, t float32) Provider {
			return NewOpenAIProvider(k, m, n, t)
		},
	},
	ProviderAnthropic: {
		name:         "anthropic",
		aliases:      []string{"claude"},
		keyEnv:       []string{"ANTHROPIC_API_KEY"},
		defaultModel: ModelAnthropicClaudeSonnet4,
		construct: func(k, m string, n uint32, t float32) Provider {
			return NewAnthropicProvider(k, m, n, t)
		},
	},
	ProviderDeepSeek: {
		name:         "deepseek",
		keyEnv:       []string{"DEEPSEEK_API_KEY"},
		defaultModel: ModelDeepSeekChat,
		construct: func(k, m string, n uint32, t float32) Provider {
			return NewDeepSeekProvider(k, m, n, t)
		},
	},
}

// String returns the canonical provider name.
func (p ProviderType) String() string {
	if v, ok := vendors[p]; ok {
		return v.name
	}
	return "unknown"
}

// EnvVar returns the primary environment variable holding this provider's API key.
func (p ProviderType) EnvVar() string {
	if v, ok := vendors[p]; ok {
		return v.keyEnv[0]
	}
	return ""
}

// DefaultModel returns the model used when none is configured.
func (p ProviderType) DefaultModel() string {
	return vendors[p].defaultModel
}

// ParseProviderType parses a provider name or alias (case-insensitive).
func ParseProviderType(s string) (ProviderType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for p, v := range vendors {
		if v.name == name {
			return p, nil
		}
		for _, alias := range v.aliases {
			if alias == name {
				return p, nil
			}
		}
	}
	return 0, fmt.Errorf("unknown provider: %s", s)
}

// FromEnv creates a provider with defaults, reading the API key from the environment.
func (p ProviderType) FromEnv() (Provider, error) {
	return NewProviderBuilder(p).FromEnv()
}

// Model starts configuring this provider with a specific model.
func (p ProviderType) Model(model string) *ProviderBuilder {
	return NewProviderBuilder(p).Model(model)
}

// APIKey creates a provider with an explicit API key and default settings.
func (p ProviderType) APIKey(key string) (Provider, error) {
	return NewProviderBuilder(p).APIKey(key)
}

// ProviderBuilder configures a Provider before it is built.
type ProviderBuilder struct {
	providerType ProviderType
	model        string
	maxTokens    uint32
	temperature  *float32
}

// NewProviderBuilder creates a new builder for the given provider.
func NewProviderBuilder(providerType ProviderType) *ProviderBuilder {
	return &ProviderBuilder{providerType: providerType}
}

// Model sets the model to use. Empty keeps the vendor default.
func (b *ProviderBuilder) Model(model string) *ProviderBuilder {
	b.model = model
	return b
}

// MaxTokens caps reply length. Zero keeps DefaultMaxTokens.
func (b *ProviderBuilder) MaxTokens(tokens uint32) *ProviderBuilder {
	b.maxTokens = tokens
	return b
}

// Temperature sets sampling temperature.
func (b *ProviderBuilder) Temperature(temp float32) *ProviderBuilder {
	b.temperature = &temp
	return b
}

// FromEnv builds the provider using the first non-empty key variable.
func (b *ProviderBuilder) FromEnv() (Provider, error) {
	v, ok := vendors[b.providerType]
	if !ok {
		return nil, fmt.Errorf("unknown provider type: %v", b.providerType)
	}
	for _, name := range v.keyEnv {
		if key := os.Getenv(name); key != "" {
			return b.build(key)
		}
	}
	return nil, fmt.Errorf("%s: %s environment variable not set", v.name, v.keyEnv[0])
}

// APIKey builds the provider with an explicit API key.
func (b *ProviderBuilder) APIKey(key string) (Provider, error) {
	return b.build(key)
}

func (b *ProviderBuilder) build(apiKey string) (Provider, error) {
	v, ok := vendors[b.providerType]
	if !ok {
		return nil, fmt.Errorf("unknown provider type: %v", b.providerType)
	}

	model := b.model
	if model == "" {
		model = v.defaultModel
	}
	maxTokens := b.maxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}
	temperature := DefaultTemperature
	if b.temperature != nil {
		temperature = *b.temperature
	}

	return v.construct(apiKey, model, maxTokens, temperature), nil
}

// Default models per vendor.
const (
	ModelGeminiFlash25          = "gemini-2.5-flash"
	ModelOpenAIGPT4o            = "gpt-4o"
	ModelAnthropicClaudeSonnet4 = "claude-sonnet-4-20250514"
	ModelDeepSeekChat           = "deepseek-chat"
)

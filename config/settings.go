// Package config provides application settings.
//
// Settings are created via Load() which layers, lowest to highest:
// - Built-in defaults
// - An optional YAML config file
// - Environment variables (a .env file is loaded by the entry point)
// API keys are only ever read from the environment.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// DefaultDBPath is the session database used when none is configured.
const DefaultDBPath = "chat_sessions.db"

// Settings holds all application configuration.
type Settings struct {
	LLM   LLMConfig
	Store StoreConfig
	Log   LogConfig
}

// LLMConfig holds LLM provider configuration.
type LLMConfig struct {
	Provider    string
	Model       string
	MaxTokens   uint32
	Temperature float64
}

// StoreConfig holds session store configuration.
type StoreConfig struct {
	Path string
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level slog.Level
}

// providerInfo holds configuration for a specific LLM provider.
type providerInfo struct {
	modelEnv     string
	defaultModel string
	apiKeyEnv    string
	fallbackEnv  string // consulted when apiKeyEnv is unset
}

// Supported providers and their configuration.
var providers = map[string]providerInfo{
	"gemini":    {"GEMINI_MODEL", "gemini-2.5-flash", "GEMINI_API_KEY", "GOOGLE_API_KEY"},
	"openai":    {"OPENAI_MODEL", "gpt-4o", "OPENAI_API_KEY", ""},
	"anthropic": {"ANTHROPIC_MODEL", "claude-sonnet-4-20250514", "ANTHROPIC_API_KEY", ""},
	"deepseek":  {"DEEPSEEK_MODEL", "deepseek-chat", "DEEPSEEK_API_KEY", ""},
}

// Provider aliases map to canonical names.
var providerAliases = map[string]string{
	"claude": "anthropic",
	"google": "gemini",
	"gpt":    "openai",
}

// DefaultConfigPath returns ~/.parley/config.yaml, or "" if the home
// directory cannot be determined.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".parley", "config.yaml")
}

// Load creates settings, additionally reading configPath when it exists.
// An empty configPath means DefaultConfigPath(). A missing default file is
// not an error; a missing explicit file is.
func Load(provider, configPath string) (Settings, error) {
	explicit := configPath != ""
	if !explicit {
		configPath = DefaultConfigPath()
	}
	return load(provider, configPath, explicit)
}

func load(provider, configPath string, explicit bool) (Settings, error) {
	v := viper.New()

	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.max_tokens", 4096)
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("store.path", DefaultDBPath)
	v.SetDefault("log.level", "warn")

	bindings := map[string]string{
		"llm.provider":    "LLM_PROVIDER",
		"llm.max_tokens":  "LLM_MAX_TOKENS",
		"llm.temperature": "LLM_TEMPERATURE",
		"store.path":      "PARLEY_DB_PATH",
		"log.level":       "PARLEY_LOG_LEVEL",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return Settings{}, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}
	for name, info := range providers {
		v.SetDefault("models."+name, info.defaultModel)
		if err := v.BindEnv("models."+name, info.modelEnv); err != nil {
			return Settings{}, fmt.Errorf("failed to bind %s: %w", info.modelEnv, err)
		}
	}

	if configPath != "" {
		if err := readConfigFile(v, configPath, explicit); err != nil {
			return Settings{}, err
		}
	}

	if provider == "" {
		provider = v.GetString("llm.provider")
	}
	provider = normalizeProvider(provider)
	if _, err := getProviderInfo(provider); err != nil {
		return Settings{}, err
	}

	maxTokens, err := parseUint32("llm.max_tokens", v.GetString("llm.max_tokens"))
	if err != nil {
		return Settings{}, err
	}

	temperature, err := parseFloat64("llm.temperature", v.GetString("llm.temperature"))
	if err != nil {
		return Settings{}, err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString("log.level"))); err != nil {
		return Settings{}, fmt.Errorf("invalid value for log.level: %q: %w", v.GetString("log.level"), err)
	}

	path := v.GetString("store.path")
	if path == "" {
		path = DefaultDBPath
	}

	return Settings{
		LLM: LLMConfig{
			Provider:    provider,
			Model:       v.GetString("models." + provider),
			MaxTokens:   maxTokens,
			Temperature: temperature,
		},
		Store: StoreConfig{Path: path},
		Log:   LogConfig{Level: level},
	}, nil
}

func readConfigFile(v *viper.Viper, path string, explicit bool) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// normalizeProvider converts provider aliases to canonical names.
func normalizeProvider(provider string) string {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if canonical, ok := providerAliases[provider]; ok {
		return canonical
	}
	return provider
}

// getProviderInfo returns configuration for a provider.
func getProviderInfo(provider string) (providerInfo, error) {
	info, ok := providers[provider]
	if !ok {
		return providerInfo{}, fmt.Errorf("unknown provider: %q", provider)
	}
	return info, nil
}

// APIKeyFor returns the API key for a provider from environment variables.
func APIKeyFor(provider string) (string, error) {
	provider = normalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return "", err
	}

	if key := os.Getenv(info.apiKeyEnv); key != "" {
		return key, nil
	}
	if info.fallbackEnv != "" {
		if key := os.Getenv(info.fallbackEnv); key != "" {
			return key, nil
		}
	}
	return "", fmt.Errorf("%s environment variable not set", info.apiKeyEnv)
}

// ModelFor returns the model for a provider, checking environment first.
func ModelFor(provider string) (string, error) {
	provider = normalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return "", err
	}

	if val := os.Getenv(info.modelEnv); val != "" {
		return val, nil
	}
	return info.defaultModel, nil
}

// SupportedProviders returns the supported provider names, sorted.
func SupportedProviders() []string {
	result := make([]string, 0, len(providers))
	for name := range providers {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// Value parsing helpers with proper error handling

func parseUint32(key, val string) (uint32, error) {
	i, err := strconv.ParseUint(strings.TrimSpace(val), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return uint32(i), nil
}

func parseFloat64(key, val string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return f, nil
}

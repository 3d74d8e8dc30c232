// Command execution for CLI commands.
//
// Information Hiding:
// - Settings, store and provider setup hidden
// - Command-line overrides applied on top of configuration

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/richinex/parley/chat"
	"github.com/richinex/parley/config"
	"github.com/richinex/parley/llm"
	"github.com/richinex/parley/storage"
)

// Options holds CLI execution options.
type Options struct {
	Provider   string
	DBPath     string
	ConfigPath string
	Verbose    bool
}

// Chat runs the interactive chat loop, reading lines from in.
func Chat(ctx context.Context, opts Options, in io.Reader, out io.Writer) error {
	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}

	provider, err := createProvider(settings)
	if err != nil {
		return err
	}

	store, err := openStore(settings)
	if err != nil {
		return err
	}
	defer store.Close()

	logger := NewLogger(settings.Log.Level, os.Stderr)
	logger.Debug("chat starting", "provider", provider.Name(), "model", provider.Model(), "db", settings.Store.Path)

	ctrl := chat.NewController(store, llm.NewClient(provider), chat.WithLogger(logger))

	fmt.Fprintf(out, "Chatting with %s (%s). Type /help for commands.\n\n", provider.Name(), provider.Model())
	return NewREPL(ctrl, out).Run(ctx, in)
}

// loadSettings applies command-line overrides on top of configuration.
func loadSettings(opts Options) (config.Settings, error) {
	settings, err := config.Load(opts.Provider, opts.ConfigPath)
	if err != nil {
		return config.Settings{}, err
	}
	if opts.DBPath != "" {
		settings.Store.Path = opts.DBPath
	}
	if opts.Verbose {
		settings.Log.Level = slog.LevelDebug
	}
	return settings, nil
}

func openStore(settings config.Settings) (*storage.SqliteStorage, error) {
	store, err := storage.OpenSqlite(settings.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}

// openController builds a controller for commands that never call the model.
func openController(opts Options) (*chat.Controller, func(), error) {
	settings, err := loadSettings(opts)
	if err != nil {
		return nil, nil, err
	}
	store, err := openStore(settings)
	if err != nil {
		return nil, nil, err
	}
	logger := NewLogger(settings.Log.Level, os.Stderr)
	ctrl := chat.NewController(store, nil, chat.WithLogger(logger))
	return ctrl, func() { store.Close() }, nil
}

func createProvider(settings config.Settings) (llm.Provider, error) {
	providerType, err := llm.ParseProviderType(settings.LLM.Provider)
	if err != nil {
		return nil, err
	}

	apiKey, err := config.APIKeyFor(settings.LLM.Provider)
	if err != nil {
		return nil, err
	}

	return providerType.
		Model(settings.LLM.Model).
		MaxTokens(settings.LLM.MaxTokens).
		Temperature(float32(settings.LLM.Temperature)).
		APIKey(apiKey)
}

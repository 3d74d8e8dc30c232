// Package main provides the parley CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/richinex/parley/cli"
	"github.com/richinex/parley/config"
	"github.com/richinex/parley/export"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	provider   string
	dbPath     string
	configPath string
	verbose    bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := &cobra.Command{
		Use:   "parley",
		Short: "Chat with an LLM and keep every conversation",
		Long: `A terminal chat front-end for hosted language models.

Each conversation is saved as a named session in a local SQLite database
and can be resumed, renamed, exported or deleted later. New sessions are
named by the model from your first message.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "LLM provider ("+strings.Join(config.SupportedProviders(), ", ")+")")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Session database path (default "+config.DefaultDBPath+")")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.parley/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug logs")

	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(sessionsCmd())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func options() cli.Options {
	return cli.Options{
		Provider:   provider,
		DBPath:     dbPath,
		ConfigPath: configPath,
		Verbose:    verbose,
	}
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat",
		Long: `Start an interactive chat. Plain lines are sent to the model and the
reply is streamed as it arrives. Type /help for session commands.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Chat(cmd.Context(), options(), os.Stdin, os.Stdout)
		},
	}
}

func sessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage saved sessions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.ListSessions(cmd.Context(), options(), os.Stdout)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id|name>",
		Short: "Print a session's transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.ShowSession(cmd.Context(), options(), args[0], os.Stdout)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename <id|name> <new-name>",
		Short: "Rename a session",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RenameSession(cmd.Context(), options(), args[0], strings.Join(args[1:], " "), os.Stdout)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id|name>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.DeleteSession(cmd.Context(), options(), args[0], os.Stdout)
		},
	})

	cmd.AddCommand(searchCmd())
	cmd.AddCommand(exportCmd())
	return cmd
}

func searchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Find saved turns containing text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.SearchSessions(cmd.Context(), options(), strings.Join(args, " "), limit, os.Stdout)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum matches to show (0 for all)")
	return cmd
}

func exportCmd() *cobra.Command {
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "export <id|name>",
		Short: "Export a session to a file",
		Long: `Export a session as JSON, YAML or Markdown.

Without --output the file is named after the session in the current
directory. Use --output - to write to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.ExportSession(cmd.Context(), options(), args[0], format, output, os.Stdout)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Export format ("+strings.Join(export.Formats(), ", ")+")")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path, or - for stdout")

	return cmd
}

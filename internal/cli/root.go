// Package cli provides the command-line interface for docchat.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/docchat-go/internal/backend"
	"github.com/raphaelgruber/docchat-go/internal/config"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose    bool
	backendURL string
	timeout    time.Duration

	// Global config and logger, set up before every command
	cfg         config.Config
	logger      *slog.Logger
	closeLogger func() error
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Chat with a document question-answering service",
	Long: `docchat is a terminal client for a document question-answering backend.

Ask questions directly to the language model, or upload a PDF and ask
questions answered from its content with page citations.

Run without a subcommand to open the interactive chat.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip setup for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		if cmd.Flags().Changed("backend") {
			cfg.BackendURL = backendURL
		}
		if cmd.Flags().Changed("timeout") {
			cfg.RequestTimeout = timeout
		}

		level := logLevel(cfg, verbose)
		if ownsTerminal(cmd) {
			// The chat UI owns the terminal; logs go to the file only.
			logger, closeLogger = config.SetupFileLogger(cfg.LogFile, level)
		} else {
			logger, closeLogger = config.SetupLogger(cfg.LogFile, level)
		}
		slog.SetDefault(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if closeLogger != nil {
			if err := closeLogger(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
			closeLogger = nil
		}
	},
	RunE: runChat,
}

// logLevel is the configured level, lowered to debug by --verbose.
func logLevel(c config.Config, verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return c.LogLevel
}

// ownsTerminal reports whether cmd runs the interactive chat UI.
func ownsTerminal(cmd *cobra.Command) bool {
	return !cmd.HasParent() || cmd.Name() == "chat"
}

// newBackend creates a backend client from the loaded configuration.
func newBackend() *backend.Client {
	return backend.New(cfg.BackendURL,
		backend.WithTimeout(cfg.RequestTimeout),
		backend.WithLogger(logger),
	)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", config.DefaultBackendURL, "question-answering backend URL (env DOCCHAT_BACKEND_URL)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "per-request timeout, 0 for none (env DOCCHAT_REQUEST_TIMEOUT)")

	// Add subcommands
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}

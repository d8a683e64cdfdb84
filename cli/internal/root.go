package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/eventdesk/internal/api"
	"github.com/devilmonastery/eventdesk/internal/client"
	"github.com/devilmonastery/eventdesk/internal/pkg/logger"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const cliContextKey contextKey = "cliContext"

// CliContext holds shared CLI context
type CliContext struct {
	Config *Config
	API    *api.Service
	Logger *slog.Logger

	closeStore func() error
}

// Global logging flags
var (
	logLevel      string
	logFile       string
	logToStderr   bool
	alsoLogStderr bool
	logFormat     string
)

// NewRootCommand creates the root cobra command
func NewRootCommand() *cobra.Command {
	var ctx CliContext

	rootCmd := &cobra.Command{
		Use:           "eventdesk",
		Short:         "CLI for the EventDesk back office",
		Long:          `A command line interface for managing bookings, clients and messages via the EventDesk API.`,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors (main.go handles it)
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Setup logging first
			if err := setupLogging(); err != nil {
				return fmt.Errorf("failed to setup logging: %w", err)
			}

			ctx.Logger = slog.Default().With("component", "cli")
			ctx.Logger.Debug("CLI started", "command", cmd.CommandPath())

			config, err := LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			ctx.Config = config
			base := logger.WithContext(slog.Default(), config.CurrentContext)
			ctx.Logger = base.With("component", "cli")

			// Config and version commands never talk to the server
			if inGroup(cmd, "config") || inGroup(cmd, "version") {
				cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey, &ctx))
				return nil
			}

			service, closeStore, err := newAPIService(config, base, cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}
			ctx.API = service
			ctx.closeStore = closeStore

			if !inGroup(cmd, "auth") && !service.Client.HasSession() {
				return fmt.Errorf("not logged in\nPlease run 'eventdesk auth login' first")
			}

			cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey, &ctx))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if ctx.closeStore != nil {
				return ctx.closeStore()
			}
			return nil
		},
	}

	// Add subcommands
	rootCmd.AddCommand(newAuthCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newBookingsCommand())
	rootCmd.AddCommand(newClientsCommand())
	rootCmd.AddCommand(newCalendarCommand())
	rootCmd.AddCommand(newMessagesCommand())
	rootCmd.AddCommand(newReportsCommand())
	rootCmd.AddCommand(newUploadCommand())
	rootCmd.AddCommand(newVersionCommand())

	// Add logging flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn",
		"Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"Log file path (if specified, logs to file instead of stderr)")
	rootCmd.PersistentFlags().BoolVar(&logToStderr, "logtostderr", false,
		"Log to stderr (default behavior unless --log-file specified)")
	rootCmd.PersistentFlags().BoolVar(&alsoLogStderr, "alsologtostderr", false,
		"Log to both file and stderr")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"Log format (text, json)")

	return rootCmd
}

// setupLogging configures the global logger based on CLI flags
func setupLogging() error {
	// Default to stderr logging unless file is specified
	if logFile == "" {
		logToStderr = true
	}

	cfg := logger.Config{
		Level:         logger.ParseLevel(logLevel),
		LogFile:       logFile,
		LogToStderr:   logToStderr,
		AlsoLogStderr: alsoLogStderr,
		Format:        logFormat,
	}

	globalLogger, err := logger.SetupLogger(cfg)
	if err != nil {
		return err
	}

	// Set as default logger
	slog.SetDefault(globalLogger)
	return nil
}

// inGroup reports whether cmd is the named top-level command or one of its children
func inGroup(cmd *cobra.Command, name string) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == name && c.HasParent() && !c.Parent().HasParent() {
			return true
		}
	}
	return false
}

// getCliContext extracts the CLI context from the command context
func getCliContext(cmd *cobra.Command) *CliContext {
	return cmd.Context().Value(cliContextKey).(*CliContext)
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "eventdesk %s\n", client.Version)
			return nil
		},
	}
}

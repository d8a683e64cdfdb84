package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/devilmonastery/eventdesk/internal/config"
	"github.com/devilmonastery/eventdesk/internal/devserver"
	"github.com/devilmonastery/eventdesk/internal/pkg/logger"
)

func main() {
	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configPath    string
		logLevel      string
		logFile       string
		logToStderr   bool
		alsoLogStderr bool
		logFormat     string
		seedDemo      bool
	)

	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "EventDesk development server",
		Long: `An in-memory EventDesk backend for local CLI development.

All data lives in memory and is lost on exit. The admin account comes from the
config file or EVENTDESK_ADMIN_PASSWORD; the signing key from the config file
or EVENTDESK_JWT_SIGNING_KEY.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupServerLogging(logLevel, logFile, logToStderr, alsoLogStderr, logFormat)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), configPath, seedDemo)
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (optional)")
	cmd.Flags().BoolVar(&seedDemo, "seed-demo", false, "Load sample clients, bookings and messages")

	// Add logging flags
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file path (if specified, logs to file instead of stderr)")
	cmd.PersistentFlags().BoolVar(&logToStderr, "logtostderr", false, "Log to stderr (default behavior unless --log-file specified)")
	cmd.PersistentFlags().BoolVar(&alsoLogStderr, "alsologtostderr", false, "Log to both file and stderr")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")

	cmd.AddCommand(newPrintConfigCommand(&configPath))

	return cmd
}

// setupServerLogging configures the global logger for the server
func setupServerLogging(logLevel, logFile string, logToStderr, alsoLogStderr bool, logFormat string) error {
	// Default to stderr logging unless file is specified
	if logFile == "" {
		logToStderr = true
	}

	globalLogger, err := logger.SetupLogger(logger.Config{
		Level:         logger.ParseLevel(logLevel),
		LogFile:       logFile,
		LogToStderr:   logToStderr,
		AlsoLogStderr: alsoLogStderr,
		Format:        logFormat,
		AddSource:     true,
	})
	if err != nil {
		return err
	}

	slog.SetDefault(globalLogger)
	return nil
}

func runServer(ctx context.Context, configPath string, seedDemo bool) error {
	log := slog.Default().With("component", "devserver")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if seedDemo {
		cfg.SeedDemo = true
	}

	srv, err := devserver.New(cfg, devserver.WithLogger(log))
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("dev server ready",
		"address", cfg.Server.Address(),
		"environment", cfg.Environment,
		"admin", cfg.Auth.Admin.Email,
		"seed_demo", cfg.SeedDemo)
	return srv.ListenAndServe(ctx)
}

func newPrintConfigCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "print-config",
		Short: "Print the effective configuration with secrets redacted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			cfg.Auth.JWT.SigningKey = "<redacted>"
			cfg.Auth.Admin.Password = "<redacted>"

			out, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

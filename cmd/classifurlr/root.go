package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/classifurlr/internal/config"
	"github.com/nao1215/classifurlr/internal/log"
)

// NewRootCmd creates the root command for classifurlr.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classifurlr",
		Short: "Classify captured browsing sessions as up, down or blocked",
		Long: `classifurlr reads a captured browsing session (HAR plus page metadata)
and decides whether the target URL was reachable, unreachable or blocked
by a censor.

Every page runs through a battery of weighted classifiers (status codes,
block page signatures, baseline similarity, throttling and more). Page
verdicts are rolled up into one verdict for the session.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json-log", false, "Write logs as JSON lines")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .classifurlr in current or home directory)")
	cmd.PersistentFlags().String("db-dir", "",
		"Verdict history directory (default: XDG data directory)")

	cmd.AddCommand(NewClassifyCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// globalBool retrieves a persistent flag from the command or its root.
func globalBool(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

func globalString(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetString(name)
		if err != nil {
			return ""
		}
	}
	return v
}

// loadConfig builds the configuration from defaults, the config file and
// the global flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(globalString(cmd, "config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.Verbose = globalBool(cmd, "verbose")
	cfg.JSONLog = globalBool(cmd, "json-log")
	if dir := globalString(cmd, "db-dir"); dir != "" {
		cfg.DBDir = dir
	}
	return cfg, nil
}

// setupLogger creates the structured logger for cfg and makes it the default.
func setupLogger(cfg *config.Config) *slog.Logger {
	logger := log.NewLogger(os.Stderr, cfg.Verbose, cfg.JSONLog)
	slog.SetDefault(logger)
	return logger
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

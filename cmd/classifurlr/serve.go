package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/nao1215/classifurlr/internal/config"
	"github.com/nao1215/classifurlr/internal/database"
	"github.com/nao1215/classifurlr/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve classification over HTTP",
		Long: `Serve starts an HTTP endpoint that classifies sessions.

Endpoints:
  POST /url      classify the session in the request body (201 + verdict)
  GET  /healthz  liveness probe
  GET  /metrics  Prometheus metrics

Examples:
  # Listen on the default address
  classifurlr serve

  # Listen on all interfaces and keep a verdict history
  classifurlr serve -l :8080 --db

  # Classify a session
  curl -X POST --data @session.json http://127.0.0.1:8080/url`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	addPipelineFlags(cmd)
	cmd.Flags().StringP("listen", "l", config.DefaultListenAddress, "Address to listen on")
	cmd.Flags().Int64("max-body-size", server.DefaultMaxBodySize, "Largest accepted request body in bytes")
	cmd.Flags().Bool("db", false, "Save every verdict to the history database")

	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyPipelineFlags(cmd, cfg); err != nil {
		return err
	}
	if cfg.ListenAddress, err = cmd.Flags().GetString("listen"); err != nil {
		return err
	}
	if cfg.SaveToDB, err = cmd.Flags().GetBool("db"); err != nil {
		return err
	}
	maxBody, err := cmd.Flags().GetInt64("max-body-size")
	if err != nil {
		return err
	}

	logger := setupLogger(cfg)
	p, err := cfg.NewPipeline(logger)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	if !cfg.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithMaxBodySize(maxBody),
	}
	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "path", db.Path())
		opts = append(opts, server.WithStore(db))
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", cfg.ListenAddress)
	return server.New(p, opts...).Run(ctx, cfg.ListenAddress)
}

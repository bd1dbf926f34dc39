package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/classifurlr/internal/config"
	"github.com/nao1215/classifurlr/internal/database"
	"github.com/nao1215/classifurlr/internal/model"
	"github.com/nao1215/classifurlr/internal/report"
)

// stdinArg reads the session from standard input.
const stdinArg = "-"

// errMissingURL is returned for a session without a url field.
var errMissingURL = errors.New("session has no url")

// NewClassifyCmd creates the classify command.
func NewClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [session.json...]",
		Short: "Classify captured sessions",
		Long: `Classify reads one or more capture sessions and prints a verdict for each.

A session is a JSON document holding the target URL, an optional baseline
page reference, per-page capture details and the HAR log:

  {
    "url": "http://example.com/",
    "baseline": "page_0",
    "pageDetail": {"page_1": {"errors": [], "countryCode": "tr"}},
    "har": {"log": {"pages": [...], "entries": [...]}}
  }

Several sessions are classified concurrently (see --batch).

Examples:
  # Classify one session
  classifurlr classify session.json

  # Read the session from standard input
  cat session.json | classifurlr classify -

  # Classify several sessions and write a Markdown report
  classifurlr classify -m -o report.md a.json b.json c.json

  # Save the verdicts to the history database
  classifurlr classify --db session.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: runClassifyCmd,
	}

	addPipelineFlags(cmd)

	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of sessions classified concurrently")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	cmd.Flags().Bool("db", false, "Save every verdict to the history database")

	return cmd
}

// addPipelineFlags registers the flags that tune the pipeline.
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("parallel", false, "Classify the pages of a session concurrently")
	cmd.Flags().IntP("workers", "w", 0, "Goroutines used with --parallel (default: number of CPUs)")
	cmd.Flags().Int("cache-size", config.DefaultCacheSize, "Number of decoded response bodies kept in memory")
}

// applyPipelineFlags overrides cfg with the pipeline flags the user set.
// Unset flags leave the configuration file values in place.
func applyPipelineFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error
	flags := cmd.Flags()
	if flags.Changed("parallel") {
		if cfg.Parallel, err = flags.GetBool("parallel"); err != nil {
			return err
		}
	}
	if flags.Changed("workers") {
		if cfg.Workers, err = flags.GetInt("workers"); err != nil {
			return err
		}
	}
	if flags.Changed("cache-size") {
		if cfg.CacheSize, err = flags.GetInt("cache-size"); err != nil {
			return err
		}
	}
	return nil
}

// buildClassifyConfig creates a Config from the config file and flags.
func buildClassifyConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := applyPipelineFlags(cmd, cfg); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.SaveToDB, err = flags.GetBool("db"); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runClassifyCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildClassifyConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg)
	ctx, cancel := signalContext(logger)
	defer cancel()

	inputs, err := readInputs(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	sessions := make([]model.SessionData, len(inputs))
	for i, in := range inputs {
		if sessions[i], err = parseSession(in.data); err != nil {
			return fmt.Errorf("invalid session %s: %w", in.name, err)
		}
	}

	bp, err := cfg.NewBatchProcessor(logger)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger.Info("starting classification",
		"sessions", len(sessions),
		"batchSize", cfg.BatchSize,
		"parallel", cfg.Parallel,
		"saveToDB", cfg.SaveToDB,
	)
	start := time.Now()
	verdicts, err := bp.ProcessBatch(ctx, sessions)
	if err != nil {
		return fmt.Errorf("classification interrupted: %w", err)
	}
	logger.Info("classification complete", "elapsed", time.Since(start).Round(time.Millisecond))

	records := make([]*model.Record, len(verdicts))
	for i, v := range verdicts {
		r := v.AsRecord()
		records[i] = &r
	}

	if cfg.SaveToDB {
		saveVerdicts(cfg, records, inputs, logger)
	}
	return outputReport(cmd, cfg, records)
}

// input is one raw session document.
type input struct {
	name string
	data []byte
}

// readInputs reads every named file, or stdin for "-".
func readInputs(paths []string, stdin io.Reader) ([]input, error) {
	inputs := make([]input, 0, len(paths))
	for _, path := range paths {
		var (
			data []byte
			err  error
		)
		if path == stdinArg {
			data, err = io.ReadAll(stdin)
			path = "<stdin>"
		} else {
			data, err = os.ReadFile(path) //nolint:gosec // User-provided input path is intentional
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		inputs = append(inputs, input{name: path, data: data})
	}
	return inputs, nil
}

// parseSession decodes a session document.
func parseSession(data []byte) (model.SessionData, error) {
	var sd model.SessionData
	if err := json.Unmarshal(data, &sd); err != nil {
		return model.SessionData{}, err
	}
	if strings.TrimSpace(sd.URL) == "" {
		return model.SessionData{}, errMissingURL
	}
	return sd, nil
}

// saveVerdicts stores every record with the input it was classified from.
// Failures are logged; the report is still written.
func saveVerdicts(cfg *config.Config, records []*model.Record, inputs []input, logger *slog.Logger) {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		logger.Error("failed to open database", "dir", cfg.DBDir, "error", err)
		return
	}
	defer db.Close()

	// Verdicts already computed are saved even after an interrupt.
	ctx := context.Background()
	for i, r := range records {
		if _, err := db.Save(ctx, *r, inputs[i].data); err != nil {
			logger.Error("failed to save verdict", "url", r.Subject, "error", err)
		}
	}
	logger.Debug("verdicts saved", "count", len(records), "db", db.Path())
}

// newReportWriter selects the writer for the configured format.
func newReportWriter(cfg *config.Config, out io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.New(report.FormatJSON, out)
	case cfg.MarkdownReport:
		return report.New(report.FormatMarkdown, out)
	default:
		return report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose))
	}
}

// outputReport writes records to the report file, or stdout when none is set.
func outputReport(cmd *cobra.Command, cfg *config.Config, records []*model.Record) error {
	out := cmd.OutOrStdout()
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	w := newReportWriter(cfg, out)
	var err error
	if len(records) == 1 {
		_, err = w.Write(records[0])
	} else {
		_, err = w.WriteBatch(records)
	}
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

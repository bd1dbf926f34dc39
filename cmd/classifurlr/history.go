package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nao1215/classifurlr/internal/config"
	"github.com/nao1215/classifurlr/internal/database"
	"github.com/nao1215/classifurlr/internal/model"
)

// NewHistoryCmd creates the history command.
// This command lists verdicts stored by classify --db and serve --db.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [url]",
		Short: "Show stored verdicts",
		Long: `History lists verdicts saved in the history database, newest first.

With a URL, only verdicts for that URL are listed. Without one, the latest
verdicts across all URLs are listed.

Examples:
  # Recent verdicts for one URL
  classifurlr history http://example.com/

  # The 5 latest verdicts as JSON
  classifurlr history -n 5 --json

  # Every URL with stored verdicts
  classifurlr history --list-urls`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", config.DefaultHistoryLimit,
		"Maximum number of verdicts to list")
	cmd.Flags().BoolP("list-urls", "L", false,
		"List every URL with stored verdicts")
	cmd.Flags().BoolP("json", "j", false,
		"Output stored records as JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output stored records as Markdown (mutually exclusive with --json)")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if cfg.HistoryLimit, err = flags.GetInt("limit"); err != nil {
		return err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return err
	}
	listURLs, err := flags.GetBool("list-urls")
	if err != nil {
		return err
	}
	if cfg.HistoryLimit <= 0 {
		return fmt.Errorf("configuration error: %w", config.ErrInvalidHistoryLimit)
	}
	if cfg.JSONReport && cfg.MarkdownReport {
		return fmt.Errorf("configuration error: %w", config.ErrConflictingReportFormats)
	}

	setupLogger(cfg)

	db, err := database.Open(cfg.DBDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no verdict history in %s (run 'classifurlr classify --db' first): %w", cfg.DBDir, err)
	}
	defer db.Close()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	if listURLs {
		urls, err := db.ListURLs(ctx)
		if err != nil {
			return fmt.Errorf("failed to list urls: %w", err)
		}
		if len(urls) == 0 {
			fmt.Fprintln(out, "No verdicts stored.")
		}
		for _, u := range urls {
			fmt.Fprintln(out, u)
		}
		return nil
	}

	var verdicts []database.Verdict
	if len(args) == 1 {
		verdicts, err = db.Recent(ctx, args[0], cfg.HistoryLimit)
	} else {
		verdicts, err = db.Latest(ctx, cfg.HistoryLimit)
	}
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if cfg.JSONReport || cfg.MarkdownReport {
		records := make([]*model.Record, len(verdicts))
		for i := range verdicts {
			records[i] = &verdicts[i].Record
		}
		_, err := newReportWriter(cfg, out).WriteBatch(records)
		return err
	}

	if len(verdicts) == 0 {
		if len(args) == 1 {
			fmt.Fprintf(out, "No verdicts stored for %s.\n", args[0])
		} else {
			fmt.Fprintln(out, "No verdicts stored.")
		}
		return nil
	}
	printHistory(out, verdicts)
	return nil
}

// printHistory writes verdicts as a fixed-width table.
func printHistory(w io.Writer, verdicts []database.Verdict) {
	const row = "%-6s %-25s %-13s %-8s %-10s %s\n"
	fmt.Fprintf(w, row, "ID", "CLASSIFIED AT", "STATUS", "BLOCKED", "CONFIDENCE", "URL")
	for _, v := range verdicts {
		confidence := "-"
		if v.Confidence != nil {
			confidence = strconv.FormatFloat(*v.Confidence, 'f', 2, 64)
		}
		fmt.Fprintf(w, row,
			strconv.FormatInt(v.ID, 10),
			v.ClassifiedAt.Local().Format("2006-01-02 15:04:05"),
			v.Status,
			v.Blocked,
			confidence,
			v.URL,
		)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/pagescore/internal/config"
	"github.com/nao1215/pagescore/internal/database"
	"github.com/nao1215/pagescore/internal/report"
)

// defaultHistoryLimit is the number of runs shown unless --limit is given.
const defaultHistoryLimit = 10

// NewCompareCmd creates the compare command.
// This command shows how a page's score changed across stored runs.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [page]",
		Short: "Show how page scores changed across runs",
		Long: `Compare reads the score history written by 'pagescore scan' and shows
the score trend of one page: score, tier and change per run, plus the
issues found in the latest run.

Pages are addressed by their report identifier (the slug, the numeric ID,
or page-N for pages without either).

Examples:
  # Show the score trend of a page
  pagescore compare about-us

  # Show every stored run of a page
  pagescore compare --limit 0 about-us

  # List stored runs with their fleet statistics
  pagescore compare --list

  # List all pages in the history
  pagescore compare --list-pages

  # Output the trend as JSON
  pagescore compare --json about-us`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	cmd.Flags().BoolP("list", "l", false,
		"List stored runs with their fleet statistics")
	cmd.Flags().BoolP("list-pages", "L", false,
		"List all pages in the score history")
	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of runs to show (0 shows all)")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory holding the score history database")

	cmd.Flags().BoolP("json", "j", false,
		"Output the trend in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output the trend in Markdown format")

	return cmd
}

// compareOptions holds the parsed compare flags.
type compareOptions struct {
	identifier string
	listRuns   bool
	listPages  bool
	limit      int
	dbDir      string
	json       bool
	markdown   bool
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	opts, err := buildCompareOptions(cmd, args)
	if err != nil {
		return err
	}

	// Open read-only style: never create an empty history here.
	db, err := database.Open(opts.dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("no score history found in %s (run 'pagescore scan' first)", opts.dbDir)
		}
		return err
	}
	defer db.Close()

	return runCompare(cmd.Context(), db, opts, cmd.OutOrStdout())
}

// buildCompareOptions parses and validates the compare flags before the
// database is opened.
func buildCompareOptions(cmd *cobra.Command, args []string) (compareOptions, error) {
	var opts compareOptions
	var err error

	if opts.listRuns, err = cmd.Flags().GetBool("list"); err != nil {
		return opts, err
	}
	if opts.listPages, err = cmd.Flags().GetBool("list-pages"); err != nil {
		return opts, err
	}
	if opts.limit, err = cmd.Flags().GetInt("limit"); err != nil {
		return opts, err
	}
	if opts.dbDir, err = cmd.Flags().GetString("db-dir"); err != nil {
		return opts, err
	}
	if opts.json, err = cmd.Flags().GetBool("json"); err != nil {
		return opts, err
	}
	if opts.markdown, err = cmd.Flags().GetBool("markdown"); err != nil {
		return opts, err
	}

	if opts.json && opts.markdown {
		return opts, config.ErrConflictingReportFormats
	}
	if opts.limit < 0 {
		return opts, fmt.Errorf("limit must be 0 or greater, got %d", opts.limit)
	}
	if len(args) == 1 {
		opts.identifier = args[0]
	}
	if opts.identifier == "" && !opts.listRuns && !opts.listPages {
		return opts, errors.New("page identifier is required (use --list-pages to see stored pages)")
	}
	return opts, nil
}

// runCompare dispatches to the listing or trend output.
func runCompare(ctx context.Context, db *database.HistoryDB, opts compareOptions, out io.Writer) error {
	switch {
	case opts.listPages:
		return listPages(ctx, db, out)
	case opts.listRuns:
		return listRuns(ctx, db, opts.limit, out)
	default:
		return writeTrend(ctx, db, opts, out)
	}
}

// listPages lists every page identifier in the history.
func listPages(ctx context.Context, db *database.HistoryDB, out io.Writer) error {
	ids, err := db.ListIdentifiers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pages: %w", err)
	}

	if len(ids) == 0 {
		fmt.Fprintln(out, "No pages found in the score history.")
		fmt.Fprintln(out, "\nUse 'pagescore scan <pages-file>' to score pages.")
		return nil
	}

	fmt.Fprintf(out, "Pages in the score history (%d):\n\n", len(ids))
	for _, id := range ids {
		fmt.Fprintf(out, "  • %s\n", id)
	}
	fmt.Fprintln(out, "\nUse 'pagescore compare <page>' to see the score trend of a page.")
	return nil
}

// listRuns lists stored runs with their fleet statistics.
func listRuns(ctx context.Context, db *database.HistoryDB, limit int, out io.Writer) error {
	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs found in the score history.")
		return nil
	}

	fmt.Fprintf(out, "Stored runs (%d):\n\n", len(runs))
	fmt.Fprintf(out, "  %-36s  %-19s  %5s  %7s  %s\n", "Run ID", "Date", "Pages", "Average", "Tiers")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 90))
	for _, run := range runs {
		fmt.Fprintf(out, "  %-36s  %-19s  %5d  %7d  %s\n",
			run.RunID,
			run.GeneratedAt.Format("2006-01-02 15:04:05"),
			run.Stats.TotalPages,
			run.Stats.AverageScore,
			formatTierSummary(run.Stats.OptimizedPageCount, run.Stats.NeedsWorkCount, run.Stats.CriticalPageCount),
		)
	}
	return nil
}

// formatTierSummary renders tier counts as "O:3 N:1 C:0".
func formatTierSummary(optimised, needsWork, critical int) string {
	return fmt.Sprintf("O:%d N:%d C:%d", optimised, needsWork, critical)
}

// writeTrend writes the score trend of one page.
func writeTrend(ctx context.Context, db *database.HistoryDB, opts compareOptions, out io.Writer) error {
	records, err := db.History(ctx, opts.identifier, opts.limit)
	if err != nil {
		return fmt.Errorf("failed to get score history: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("no score history found for %s", opts.identifier)
	}

	trend := &report.Trend{
		Identifier: opts.identifier,
		Points:     make([]report.TrendPoint, len(records)),
	}
	for i, rec := range records {
		trend.Points[i] = report.TrendPoint{
			RunID:     rec.RunID,
			ScannedAt: rec.ScannedAt,
			Title:     rec.Title,
			Score:     rec.Score,
			Tier:      rec.Tier,
			Tally:     rec.Tally,
			Issues:    rec.Issues,
		}
	}

	var w report.Writer
	switch {
	case opts.json:
		w = report.NewJSONWriter(out, report.WithPrettyPrint())
	case opts.markdown:
		w = report.NewMarkdownWriter(out)
	default:
		w = report.NewSimpleWriter(out, report.WithVerbose(true))
	}
	_, err = w.WriteTrend(trend)
	return err
}

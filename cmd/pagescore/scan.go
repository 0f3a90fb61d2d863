package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/nao1215/pagescore/internal/config"
	"github.com/nao1215/pagescore/internal/metrics"
	"github.com/nao1215/pagescore/internal/model"
	"github.com/nao1215/pagescore/internal/pipeline"
	"github.com/nao1215/pagescore/internal/report"
)

// scanOptions holds scan flags that are not part of config.Config.
type scanOptions struct {
	// metricsFile receives the run metrics in Prometheus text format.
	metricsFile string

	// failUnder fails the command when the average score is lower.
	failUnder int

	// showEmpty lists pages without issues in the text report.
	showEmpty bool
}

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <pages-file>",
		Short: "Analyse pages and print a quality report",
		Long: `Scan renders every page in a YAML or JSON export, extracts structural
and metadata signals, and scores each page from 0 to 100.

Each page is checked for:
- title and meta description presence and length
- H1 structure, word count and internal links
- image alt text, canonical URL, Open Graph tags and structured data
- noindex directives

Scores are stored in the score history so the next run can report how each
page moved. Use --no-save for a dry run.

Examples:
  # Scan a page export and print a text report
  pagescore scan pages.yaml

  # Write the dashboard JSON to a file
  pagescore scan --json -o public/report.json pages.json

  # Output a Markdown report
  pagescore scan --markdown pages.yaml

  # Fail a CI job when the average score drops below 80
  pagescore scan --fail-under 80 pages.yaml

  # Share cached previous scores through Redis
  pagescore scan --redis-url redis://localhost:6379/0 pages.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: runScanCmd,
	}

	addAnalysisFlags(cmd)

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("show-empty", false,
		"List pages without issues in the text report")
	cmd.Flags().String("metrics-file", "",
		"Write run metrics in Prometheus text format to this file")
	cmd.Flags().Int("fail-under", 0,
		"Exit with an error when the average score is below this value")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, opts, err := buildScanConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runScan(ctx, cfg, opts, logger, cmd.OutOrStdout())
}

// buildScanConfig creates a Config and scan options from cobra command flags.
func buildScanConfig(cmd *cobra.Command, args []string) (*config.Config, scanOptions, error) {
	var opts scanOptions

	cfg, err := buildAnalysisConfig(cmd, args[0])
	if err != nil {
		return nil, opts, err
	}

	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, opts, err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, opts, err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return nil, opts, err
	}
	if opts.showEmpty, err = cmd.Flags().GetBool("show-empty"); err != nil {
		return nil, opts, err
	}
	if opts.metricsFile, err = cmd.Flags().GetString("metrics-file"); err != nil {
		return nil, opts, err
	}
	if opts.failUnder, err = cmd.Flags().GetInt("fail-under"); err != nil {
		return nil, opts, err
	}

	return cfg, opts, nil
}

// runScan compiles one report and writes it to out or cfg.ReportFile.
func runScan(ctx context.Context, cfg *config.Config, opts scanOptions, logger *slog.Logger, out io.Writer) error {
	var (
		registry *prometheus.Registry
		recorder pipeline.Recorder
	)
	if opts.metricsFile != "" {
		registry = prometheus.NewRegistry()
		recorder = metrics.New(registry)
	}

	e, err := newEngine(ctx, cfg, logger, recorder)
	if err != nil {
		return err
	}
	defer func() {
		if err := e.Close(); err != nil {
			logger.Error("failed to close engine", "error", err)
		}
	}()

	start := time.Now()
	result, err := e.run(ctx)
	if err != nil {
		return err
	}
	logger.Info("scan completed",
		"run_id", result.RunID,
		"pages", result.Stats.TotalPages,
		"average", result.Stats.AverageScore,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	if err := outputReport(cfg, opts, result, out); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if registry != nil {
		if err := prometheus.WriteToTextfile(opts.metricsFile, registry); err != nil {
			return fmt.Errorf("failed to write metrics file: %w", err)
		}
	}

	if opts.failUnder > 0 && result.Stats.TotalPages > 0 && result.Stats.AverageScore < opts.failUnder {
		return fmt.Errorf("average score %d is below %d", result.Stats.AverageScore, opts.failUnder)
	}
	return nil
}

// outputReport writes the report in the requested format.
func outputReport(cfg *config.Config, opts scanOptions, r *model.Report, stdout io.Writer) error {
	output := stdout
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
		output = f
	}

	_, err := newReportWriter(cfg, opts, output).Write(r)
	return err
}

// newReportWriter selects the writer for the configured format.
func newReportWriter(cfg *config.Config, opts scanOptions, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output,
			report.WithVerbose(cfg.Verbose),
			report.WithShowEmpty(opts.showEmpty),
		)
	}
}

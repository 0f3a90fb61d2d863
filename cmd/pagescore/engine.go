package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/pagescore/internal/cache"
	"github.com/nao1215/pagescore/internal/config"
	"github.com/nao1215/pagescore/internal/database"
	"github.com/nao1215/pagescore/internal/log"
	"github.com/nao1215/pagescore/internal/model"
	"github.com/nao1215/pagescore/internal/pipeline"
	"github.com/nao1215/pagescore/internal/render"
)

// engine runs analysis passes over the configured pages file.
// scan runs it once; serve runs it at startup and on every rescan.
type engine struct {
	cfg      *config.Config
	logger   *slog.Logger
	compiler *pipeline.Compiler

	// history is nil when no score history exists and SaveToDB is off.
	history *database.HistoryDB

	// resolver memoizes previous scores from history. Nil without history
	// or when CacheTTL is zero.
	resolver *cache.Resolver
	backend  cache.Backend
}

// newEngine opens the score history and cache backend and builds the compiler.
// recorder may be nil.
func newEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger, recorder pipeline.Recorder) (*engine, error) {
	e := &engine{cfg: cfg, logger: logger}

	history, err := openHistory(cfg)
	if err != nil {
		return nil, err
	}
	e.history = history

	opts := []pipeline.CompilerOption{
		pipeline.WithRenderer(render.New()),
		pipeline.WithSite(cfg.File.SiteSettings(), cfg.File.MenuList()),
		pipeline.WithWeights(cfg.File.ScoreWeights()),
		pipeline.WithThresholds(cfg.File.AuditThresholds()),
		pipeline.WithCompilerConcurrency(cfg.Concurrency),
		pipeline.WithCompilerRenderTimeout(cfg.RenderTimeout),
		pipeline.WithCompilerLogger(logger),
	}
	if recorder != nil {
		opts = append(opts, pipeline.WithRecorder(recorder))
	}

	if history != nil {
		var resolver pipeline.ScoreResolver = history
		if cfg.CacheTTL > 0 {
			backend, err := openCacheBackend(ctx, cfg)
			if err != nil {
				_ = history.Close()
				return nil, err
			}
			e.backend = backend
			e.resolver = cache.NewResolver(history, backend, cfg.CacheTTL, cache.WithLogger(logger))
			resolver = e.resolver
		}
		opts = append(opts, pipeline.WithResolver(resolver))
	}

	e.compiler = pipeline.NewCompiler(opts...)
	return e, nil
}

// openHistory creates the history when SaveToDB is set, and otherwise opens
// it only if it already exists.
func openHistory(cfg *config.Config) (*database.HistoryDB, error) {
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = cfg.SaveToDB

	db, err := database.Open(cfg.DBDir, opts)
	if errors.Is(err, os.ErrNotExist) && !cfg.SaveToDB {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open score history: %w", err)
	}
	return db, nil
}

// openCacheBackend returns a Redis backend when RedisURL is set, and an
// in-process backend otherwise.
func openCacheBackend(ctx context.Context, cfg *config.Config) (cache.Backend, error) {
	if cfg.RedisURL == "" {
		return cache.NewMemoryBackend(), nil
	}
	backend, err := cache.NewRedisBackend(ctx, cfg.RedisURL, cache.DefaultKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return backend, nil
}

// run loads the pages file, compiles a report and stores it in the history.
// A history write failure is logged; the report is still returned.
func (e *engine) run(ctx context.Context) (*model.Report, error) {
	pages, err := config.LoadPages(e.cfg.PagesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pages: %w", err)
	}
	e.logger.Info("analysing pages", "file", e.cfg.PagesFile, "pages", len(pages))

	report, err := e.compiler.Compile(ctx, pages)
	if err != nil {
		return nil, err
	}

	if e.cfg.SaveToDB && e.history != nil {
		if err := e.save(ctx, report); err != nil {
			e.logger.Error("failed to save report", "run_id", report.RunID, "error", err)
		}
	}
	return report, nil
}

// save stores the report and drops the cached previous scores it replaced.
func (e *engine) save(ctx context.Context, report *model.Report) error {
	if err := e.history.SaveReport(ctx, report); err != nil {
		return err
	}
	e.logger.Info("report saved to history", "run_id", report.RunID, "path", e.history.Path())

	if e.resolver == nil {
		return nil
	}
	ids := make([]string, len(report.Pages))
	for i := range report.Pages {
		ids[i] = report.Pages[i].Identifier
	}
	return e.resolver.Forget(ctx, ids...)
}

// Close releases the history and cache backend.
func (e *engine) Close() error {
	var errs []error
	if e.backend != nil {
		errs = append(errs, e.backend.Close())
	}
	if e.history != nil {
		errs = append(errs, e.history.Close())
	}
	return errors.Join(errs...)
}

// loadConfigFile loads the configuration file into cfg.File.
// An explicitly named file must exist; otherwise a missing file leaves
// cfg.File nil and defaults apply.
func loadConfigFile(cfg *config.Config) error {
	path := config.FindConfigFile(cfg.ConfigFilePath)
	if path == "" {
		if cfg.ConfigFilePath != "" {
			return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
		}
		return nil
	}

	file, err := config.LoadConfigFile(path)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	cfg.File = file
	return nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getLogFormatFlag retrieves the log format from the command or its parent.
func getLogFormatFlag(cmd *cobra.Command) string {
	format, err := cmd.Flags().GetString("log-format")
	if err != nil {
		format, err = cmd.Root().PersistentFlags().GetString("log-format")
		if err != nil {
			return log.FormatText
		}
	}
	return format
}

// setupLogger creates the redacting logger for a command.
func setupLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	return log.NewLogger(w, log.Options{
		Verbose: cfg.Verbose,
		Format:  cfg.LogFormat,
	})
}

// addAnalysisFlags registers the flags shared by scan and serve.
func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Number of pages analysed in parallel")
	cmd.Flags().Duration("render-timeout", config.DefaultRenderTimeout,
		"Timeout for rendering a single page (0 disables)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .pagescore in current or home directory)")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory holding the score history database")
	cmd.Flags().Bool("no-save", false,
		"Do not store this run in the score history")
	cmd.Flags().String("redis-url", "",
		"Redis URL for the previous-score cache (default: in-process cache)")
	cmd.Flags().Duration("cache-ttl", config.DefaultCacheTTL,
		"How long resolved previous scores are cached (0 disables)")
}

// buildAnalysisConfig creates a Config from the shared analysis flags.
func buildAnalysisConfig(cmd *cobra.Command, pagesFile string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.PagesFile = pagesFile
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.LogFormat = getLogFormatFlag(cmd)

	var err error
	if cfg.Concurrency, err = cmd.Flags().GetInt("concurrency"); err != nil {
		return nil, err
	}
	if cfg.RenderTimeout, err = cmd.Flags().GetDuration("render-timeout"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = cmd.Flags().GetString("config"); err != nil {
		return nil, err
	}
	if cfg.DBDir, err = cmd.Flags().GetString("db-dir"); err != nil {
		return nil, err
	}
	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	if cfg.RedisURL, err = cmd.Flags().GetString("redis-url"); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = cmd.Flags().GetDuration("cache-ttl"); err != nil {
		return nil, err
	}

	if err := loadConfigFile(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

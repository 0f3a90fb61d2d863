package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/pagescore/internal/audit"
	"github.com/nao1215/pagescore/internal/model"
)

// DBFileName is the name of the history file inside the database directory.
const DBFileName = "pagescore.db"

// ErrNotFound is returned when a requested run or page has no history.
var ErrNotFound = errors.New("not found in history")

// HistoryDB provides SQLite-based storage for report runs and page scores.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so the serve command can read
	// while a scan writes.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error
// wrapping os.ErrNotExist is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); err != nil {
			return nil, fmt.Errorf("failed to open history at %s: %w", dbPath, err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// modernc.org/sqlite: mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	h := &HistoryDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := h.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return h, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables() error {
	schema := `
	-- One row per compiled report
	CREATE TABLE IF NOT EXISTS report_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		generated_at TEXT NOT NULL,
		total_pages INTEGER NOT NULL,
		average_score INTEGER NOT NULL,
		total_issues INTEGER NOT NULL,
		critical_issues INTEGER NOT NULL,
		stats_json TEXT NOT NULL
	);

	-- One row per page per run
	CREATE TABLE IF NOT EXISTS page_scores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES report_runs(run_id),
		identifier TEXT NOT NULL,
		title TEXT NOT NULL,
		score INTEGER NOT NULL,
		tier TEXT NOT NULL,
		critical INTEGER NOT NULL,
		serious INTEGER NOT NULL,
		moderate INTEGER NOT NULL,
		minor INTEGER NOT NULL,
		issues_json TEXT NOT NULL,
		scanned_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scores_identifier ON page_scores(identifier);
	CREATE INDEX IF NOT EXISTS idx_scores_run ON page_scores(run_id);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// SaveReport stores a report run and every page entry in one transaction.
func (h *HistoryDB) SaveReport(ctx context.Context, report *model.Report) (err error) {
	statsJSON, err := json.Marshal(report.Stats)
	if err != nil {
		return fmt.Errorf("failed to serialize stats: %w", err)
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO report_runs (run_id, generated_at, total_pages, average_score, total_issues, critical_issues, stats_json)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.RunID,
		formatTimestamp(report.GeneratedAt),
		report.Stats.TotalPages,
		report.Stats.AverageScore,
		report.Stats.TotalIssueCount,
		report.Stats.CriticalIssueCount,
		string(statsJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save report run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO page_scores (run_id, identifier, title, score, tier, critical, serious, moderate, minor, issues_json, scanned_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare page insert: %w", err)
	}
	defer stmt.Close()

	for _, entry := range report.Pages {
		messages := make([]string, 0, len(entry.Issues))
		for _, issue := range entry.Issues {
			messages = append(messages, issue.Message)
		}
		issuesJSON, mErr := json.Marshal(messages)
		if mErr != nil {
			return fmt.Errorf("failed to serialize issues of %s: %w", entry.Identifier, mErr)
		}

		_, err = stmt.ExecContext(ctx,
			report.RunID,
			entry.Identifier,
			entry.Title,
			entry.Score,
			entry.Tier.String(),
			entry.Tally.Critical,
			entry.Tally.Serious,
			entry.Tally.Moderate,
			entry.Tally.Minor,
			string(issuesJSON),
			formatTimestamp(entry.LastScanned),
		)
		if err != nil {
			return fmt.Errorf("failed to save score of %s: %w", entry.Identifier, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit report: %w", err)
	}
	return nil
}

// ScoreRecord is one stored page score.
type ScoreRecord struct {
	RunID      string
	Identifier string
	Title      string
	Score      int
	Tier       model.OptimizationTier
	Tally      model.ViolationTally
	Issues     []model.Issue
	ScannedAt  time.Time
}

// LatestScore returns the most recent stored score of a page.
// It returns ErrNotFound when the page has no history.
func (h *HistoryDB) LatestScore(ctx context.Context, identifier string) (int, error) {
	var score int
	err := h.db.QueryRowContext(ctx, `
	SELECT score FROM page_scores
	WHERE identifier = ?
	ORDER BY id DESC
	LIMIT 1`, identifier).Scan(&score)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query latest score: %w", err)
	}
	return score, nil
}

// PreviousScore returns the latest stored score of a page, or current when
// the page has never been stored.
func (h *HistoryDB) PreviousScore(ctx context.Context, identifier string, current int) (int, error) {
	score, err := h.LatestScore(ctx, identifier)
	if errors.Is(err, ErrNotFound) {
		return current, nil
	}
	if err != nil {
		return current, err
	}
	return score, nil
}

// History returns the stored scores of a page, newest first.
// A limit <= 0 returns every record.
func (h *HistoryDB) History(ctx context.Context, identifier string, limit int) ([]ScoreRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := h.db.QueryContext(ctx, `
	SELECT run_id, identifier, title, score, tier, critical, serious, moderate, minor, issues_json, scanned_at
	FROM page_scores
	WHERE identifier = ?
	ORDER BY id DESC
	LIMIT ?`, identifier, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []ScoreRecord
	for rows.Next() {
		var (
			rec        ScoreRecord
			tier       string
			issuesJSON string
			scannedAt  string
		)
		if err := rows.Scan(
			&rec.RunID, &rec.Identifier, &rec.Title, &rec.Score, &tier,
			&rec.Tally.Critical, &rec.Tally.Serious, &rec.Tally.Moderate, &rec.Tally.Minor,
			&issuesJSON, &scannedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}

		rec.Tally.Total = rec.Tally.Critical + rec.Tally.Serious + rec.Tally.Moderate + rec.Tally.Minor
		rec.ScannedAt = parseTimestamp(scannedAt)
		if parsed, err := model.ParseOptimizationTier(tier); err == nil {
			rec.Tier = parsed
		}

		var messages []string
		if err := json.Unmarshal([]byte(issuesJSON), &messages); err != nil {
			return nil, fmt.Errorf("failed to parse issues of %s: %w", rec.Identifier, err)
		}
		rec.Issues = audit.Annotate(messages)

		records = append(records, rec)
	}
	return records, rows.Err()
}

// RunSummary is one stored report run.
type RunSummary struct {
	RunID       string
	GeneratedAt time.Time
	Stats       model.ReportAggregate
}

// ListRuns returns stored runs, newest first.
// A limit <= 0 returns every run.
func (h *HistoryDB) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := h.db.QueryContext(ctx, `
	SELECT run_id, generated_at, stats_json
	FROM report_runs
	ORDER BY id DESC
	LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var (
			run         RunSummary
			generatedAt string
			statsJSON   string
		)
		if err := rows.Scan(&run.RunID, &generatedAt, &statsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		run.GeneratedAt = parseTimestamp(generatedAt)
		if err := json.Unmarshal([]byte(statsJSON), &run.Stats); err != nil {
			return nil, fmt.Errorf("failed to parse stats of run %s: %w", run.RunID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListIdentifiers returns every page identifier with history, sorted.
func (h *HistoryDB) ListIdentifiers(ctx context.Context) ([]string, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT DISTINCT identifier FROM page_scores ORDER BY identifier`)
	if err != nil {
		return nil, fmt.Errorf("failed to query identifiers: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// formatTimestamp stores times in UTC with a fixed layout.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",     // SQLite CURRENT_TIMESTAMP
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

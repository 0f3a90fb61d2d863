package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/pagescore/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// testReport builds a report with the given page scores.
func testReport(runID string, at time.Time, scores map[string]int) *model.Report {
	r := model.NewReport(runID, at)
	for _, id := range []string{"about", "blog", "home"} {
		s, ok := scores[id]
		if !ok {
			continue
		}
		entry := model.PageReportEntry{
			Identifier:  id,
			Title:       id + " page",
			Score:       s,
			Tier:        model.TierNeedsImprovement,
			LastScanned: at,
			Tally:       model.ViolationTally{Serious: 1, Minor: 1, Total: 2},
			Issues: []model.IssueDetail{
				model.NewIssueDetail(model.NewIssue(model.IssueDescriptionMissing, "Meta description is missing")),
				model.NewIssueDetail(model.NewIssue(model.IssueStructuredDataMissing, "Missing structured data (JSON-LD)")),
			},
		}
		r.Pages = append(r.Pages, entry)
	}
	r.Stats.TotalPages = len(r.Pages)
	r.Stats.AverageScore = 70
	r.Stats.FilterCounts = model.FilterCounts{All: len(r.Pages), NeedsWork: len(r.Pages)}
	r.IndexPages()
	return r
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, DBFileName)); err != nil {
			t.Errorf("database file was not created: %v", err)
		}
		if db.Path() != filepath.Join(dbDir, DBFileName) {
			t.Errorf("unexpected path %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false fails for missing database", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing"), Options{})
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected os.ErrNotExist, got %v", err)
		}
	})

	t.Run("reopening keeps data", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		if err := db.SaveReport(context.Background(), testReport("run-1", time.Now(), map[string]int{"home": 80})); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}
		_ = db.Close()

		db, err = Open(dir, Options{EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db.Close()

		score, err := db.LatestScore(context.Background(), "home")
		if err != nil || score != 80 {
			t.Errorf("got %d, %v; expected 80", score, err)
		}
	})
}

// TestSaveReportAndHistory tests storing runs and reading a page's trend.
func TestSaveReportAndHistory(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	first := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	second := first.Add(24 * time.Hour)

	if err := db.SaveReport(ctx, testReport("run-1", first, map[string]int{"home": 62, "about": 75})); err != nil {
		t.Fatalf("failed to save first report: %v", err)
	}
	if err := db.SaveReport(ctx, testReport("run-2", second, map[string]int{"home": 81})); err != nil {
		t.Fatalf("failed to save second report: %v", err)
	}

	t.Run("latest score is from the newest run", func(t *testing.T) {
		t.Parallel()

		score, err := db.LatestScore(ctx, "home")
		if err != nil || score != 81 {
			t.Errorf("got %d, %v; expected 81", score, err)
		}
	})

	t.Run("unknown page is not found", func(t *testing.T) {
		t.Parallel()

		if _, err := db.LatestScore(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("history is newest first with annotated issues", func(t *testing.T) {
		t.Parallel()

		records, err := db.History(ctx, "home", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
		if records[0].RunID != "run-2" || records[0].Score != 81 || records[1].Score != 62 {
			t.Errorf("unexpected order %+v", records)
		}
		if !records[0].ScannedAt.Equal(second) {
			t.Errorf("unexpected scan time %v", records[0].ScannedAt)
		}
		if records[0].Tier != model.TierNeedsImprovement || records[0].Tally.Total != 2 {
			t.Errorf("unexpected tier/tally %+v", records[0])
		}

		issues := records[0].Issues
		if len(issues) != 2 {
			t.Fatalf("expected 2 issues, got %d", len(issues))
		}
		if issues[0].Kind != model.IssueDescriptionMissing || issues[0].Severity != model.SeveritySerious {
			t.Errorf("unexpected annotation %+v", issues[0])
		}
		if issues[1].Kind != model.IssueStructuredDataMissing {
			t.Errorf("unexpected annotation %+v", issues[1])
		}
	})

	t.Run("history limit", func(t *testing.T) {
		t.Parallel()

		records, err := db.History(ctx, "home", 1)
		if err != nil || len(records) != 1 || records[0].RunID != "run-2" {
			t.Errorf("unexpected limited history %+v, %v", records, err)
		}
	})

	t.Run("runs are listed newest first", func(t *testing.T) {
		t.Parallel()

		runs, err := db.ListRuns(ctx, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(runs) != 2 || runs[0].RunID != "run-2" || runs[1].RunID != "run-1" {
			t.Fatalf("unexpected runs %+v", runs)
		}
		if runs[1].Stats.TotalPages != 2 || runs[0].Stats.TotalPages != 1 {
			t.Errorf("unexpected stats %+v", runs)
		}
		if !runs[1].GeneratedAt.Equal(first) {
			t.Errorf("unexpected generated time %v", runs[1].GeneratedAt)
		}
	})

	t.Run("identifiers are distinct and sorted", func(t *testing.T) {
		t.Parallel()

		ids, err := db.ListIdentifiers(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(ids) != 2 || ids[0] != "about" || ids[1] != "home" {
			t.Errorf("unexpected identifiers %v", ids)
		}
	})
}

// TestSaveReportDuplicateRun tests that a run id can only be stored once.
func TestSaveReportDuplicateRun(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	report := testReport("run-1", time.Now(), map[string]int{"home": 50})

	if err := db.SaveReport(ctx, report); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}
	if err := db.SaveReport(ctx, report); err == nil {
		t.Fatal("expected error for duplicate run id")
	}

	records, err := db.History(ctx, "home", 0)
	if err != nil || len(records) != 1 {
		t.Errorf("failed save must not leave rows behind: %d records, %v", len(records), err)
	}
}

// TestPreviousScore tests the resolver adapter.
func TestPreviousScore(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	if err := db.SaveReport(ctx, testReport("run-1", time.Now(), map[string]int{"blog": 44})); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}

	if got, err := db.PreviousScore(ctx, "blog", 90); err != nil || got != 44 {
		t.Errorf("got %d, %v; expected stored score 44", got, err)
	}
	if got, err := db.PreviousScore(ctx, "new-page", 90); err != nil || got != 90 {
		t.Errorf("got %d, %v; expected current score 90", got, err)
	}
}

// TestParseTimestamp tests timestamp parsing with various formats.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		wantZero bool
	}{
		{"2026-01-10T09:00:00Z", false},
		{"2026-01-10T09:00:00.123456789Z", false},
		{"2026-01-10 09:00:00", false},
		{"not a time", true},
		{"", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := parseTimestamp(tt.input); got.IsZero() != tt.wantZero {
				t.Errorf("parseTimestamp(%q) = %v", tt.input, got)
			}
		})
	}
}

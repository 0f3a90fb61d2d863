// Package database provides SQLite-based score history for pagescore.
//
// HistoryDB stores one row per report run and one row per page per run
// (score, tier, severity tally and the issue messages). It is used to:
//   - resolve the previous score of a page for the next run (PreviousScore)
//   - list the score trend of a page for the compare command
//   - list past runs with their fleet statistics
//
// Stored issue messages are re-annotated with the text classifier when read
// back, since only the display text is persisted.
//
// The driver is modernc.org/sqlite, so the binary stays CGO-free and the
// history is a single file in the XDG data directory.
package database

// Package log builds the application's slog loggers.
//
// Every logger returned by NewLogger is wrapped in a SecureHandler, which
// masks values that look like credentials (passwords, tokens, connection
// URLs with a password such as a Redis URL) and truncates oversized string
// attributes such as rendered page markup.
//
// Text output is written through charmbracelet/log, JSON output through
// slog's JSON handler. The level is Warn unless verbose mode is enabled.
//
//	logger := log.NewLogger(os.Stderr, log.Options{Verbose: true})
//	logger.Debug("rendered page", "slug", page.Slug, "markup", markup)
package log

package log

import (
	"io"
	"log/slog"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// Output formats accepted by NewLogger.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options configures NewLogger.
type Options struct {
	// Verbose lowers the level from Warn to Debug.
	Verbose bool

	// Format is FormatText (default) or FormatJSON.
	Format string

	// MaxValueLength overrides DefaultMaxValueLength. Negative disables truncation.
	MaxValueLength int
}

// NewLogger creates a logger whose output is sanitized by SecureHandler.
// Text output goes through charmbracelet/log for readable terminal logs;
// JSON output uses slog's JSON handler for log aggregation.
func NewLogger(w io.Writer, opts Options) *slog.Logger {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}

	var inner slog.Handler
	switch opts.Format {
	case FormatJSON:
		inner = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	default:
		charmLevel := charmlog.WarnLevel
		if opts.Verbose {
			charmLevel = charmlog.DebugLevel
		}
		inner = charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmLevel,
			ReportTimestamp: true,
			TimeFormat:      time.TimeOnly,
			Prefix:          "pagescore",
		})
	}

	maxLength := opts.MaxValueLength
	if maxLength == 0 {
		maxLength = DefaultMaxValueLength
	}
	return slog.New(NewSecureHandler(inner, maxLength))
}

// NewSecureLogger creates a text logger with default options.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	return NewLogger(w, Options{Verbose: verbose})
}

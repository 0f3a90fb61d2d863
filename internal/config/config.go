package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "pagescore"

	// DefaultConcurrency is the number of pages analysed at the same time.
	// Rendering and parsing are CPU bound, so this stays close to a typical
	// core count.
	DefaultConcurrency = 8

	// DefaultRenderTimeout bounds a single page render.
	// Templates that take longer than this are almost always stuck.
	DefaultRenderTimeout = 10 * time.Second

	// DefaultCacheTTL is how long a resolved previous score is reused.
	DefaultCacheTTL = 10 * time.Minute

	// DefaultListenAddr is the address the serve command binds to.
	// Loopback only; exposing the dashboard API is an explicit choice.
	DefaultListenAddr = "127.0.0.1:8080"
)

// Config holds all configuration options for pagescore.
// It is populated from CLI flags and passed down explicitly.
type Config struct {
	// PagesFile is the YAML or JSON page export to analyse.
	PagesFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .pagescore in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// File is the loaded configuration file. Nil when none was found.
	File *File

	// Concurrency is the number of pages analysed in parallel.
	Concurrency int

	// RenderTimeout bounds each page render. Zero disables the timeout.
	RenderTimeout time.Duration

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// DBDir is the directory holding the SQLite score history.
	// Defaults to the XDG data directory (~/.local/share/pagescore on Linux).
	DBDir string

	// SaveToDB stores each run in the score history.
	// Previous scores are read from the history whenever it exists.
	SaveToDB bool

	// RedisURL selects the Redis backend for the previous-score cache.
	// When empty an in-process cache is used.
	RedisURL string

	// CacheTTL is how long a resolved previous score is cached.
	// Zero disables caching.
	CacheTTL time.Duration

	// ListenAddr is the address of the HTTP API started by the serve command.
	ListenAddr string

	// Verbose enables debug logging.
	// When false, only warnings and errors are logged.
	Verbose bool

	// LogFormat is "text" or "json".
	LogFormat string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Concurrency:   DefaultConcurrency,
		RenderTimeout: DefaultRenderTimeout,
		CacheTTL:      DefaultCacheTTL,
		ListenAddr:    DefaultListenAddr,
		DBDir:         XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for pagescore.
// On Linux: ~/.local/share/pagescore
// On macOS: ~/Library/Application Support/pagescore
// On Windows: %LOCALAPPDATA%\pagescore
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for pagescore.
// On Linux: ~/.config/pagescore
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as one of the package's sentinel errors.
func (c *Config) Validate() error {
	if c.PagesFile == "" {
		return ErrNoPagesFile
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.RenderTimeout < 0 {
		return ErrInvalidRenderTimeout
	}

	if c.CacheTTL < 0 {
		return ErrInvalidCacheTTL
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.File != nil {
		return c.File.Validate()
	}

	return nil
}

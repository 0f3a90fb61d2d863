package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and File.Validate() so
// callers can use errors.Is() to react to a specific problem.
var (
	// ErrNoPagesFile is returned when no page export file is specified.
	ErrNoPagesFile = errors.New("no pages file specified: use --pages")

	// ErrInvalidConcurrency is returned when the concurrency limit is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidRenderTimeout is returned when the render timeout is negative.
	// Use 0 to disable the per-page timeout.
	ErrInvalidRenderTimeout = errors.New("invalid render timeout: must be non-negative")

	// ErrInvalidCacheTTL is returned when the cache TTL is negative.
	ErrInvalidCacheTTL = errors.New("invalid cache ttl: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidWeights is returned when a severity weight in the config file
	// is negative or not a finite number.
	ErrInvalidWeights = errors.New("invalid weights: must be finite and non-negative")

	// ErrInvalidThresholds is returned when a threshold in the config file is
	// negative or a minimum exceeds its maximum.
	ErrInvalidThresholds = errors.New("invalid thresholds: must be non-negative with min <= max")

	// ErrUnsupportedPagesFormat is returned when the pages file extension is
	// neither YAML nor JSON.
	ErrUnsupportedPagesFormat = errors.New("unsupported pages file format: use .yaml, .yml or .json")
)

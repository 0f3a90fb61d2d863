package cache

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"time"
)

// ScoreResolver looks up the previous score of a page.
type ScoreResolver interface {
	PreviousScore(ctx context.Context, identifier string, current int) (int, error)
}

// Resolver memoizes a ScoreResolver in a Backend.
// Backend failures are logged and the wrapped resolver is used instead.
type Resolver struct {
	next    ScoreResolver
	backend Backend
	ttl     time.Duration
	logger  *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the logger for backend failures.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver. A nil next resolves every page to its
// current score.
func NewResolver(next ScoreResolver, backend Backend, ttl time.Duration, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		next:    next,
		backend: backend,
		ttl:     ttl,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func scoreKey(identifier string) string {
	return "prev:" + identifier
}

// PreviousScore returns the cached previous score of identifier, resolving
// and caching it on a miss. Errors from the wrapped resolver are not cached.
func (r *Resolver) PreviousScore(ctx context.Context, identifier string, current int) (int, error) {
	key := scoreKey(identifier)

	data, found, err := r.backend.Get(ctx, key)
	if err != nil {
		r.logger.Warn("score cache read failed", "identifier", identifier, "error", err)
	} else if found {
		if score, convErr := strconv.Atoi(string(data)); convErr == nil {
			return score, nil
		}
		r.logger.Warn("discarding corrupt cached score", "identifier", identifier)
	}

	if r.next == nil {
		return current, nil
	}

	score, err := r.next.PreviousScore(ctx, identifier, current)
	if err != nil {
		return current, err
	}

	if err := r.backend.Set(ctx, key, []byte(strconv.Itoa(score)), r.ttl); err != nil {
		r.logger.Warn("score cache write failed", "identifier", identifier, "error", err)
	}
	return score, nil
}

// Forget drops the cached scores of the given pages, typically after a new
// run was stored.
func (r *Resolver) Forget(ctx context.Context, identifiers ...string) error {
	for _, id := range identifiers {
		if err := r.backend.Delete(ctx, scoreKey(id)); err != nil {
			return err
		}
	}
	return nil
}

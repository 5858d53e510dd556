// Package query answers questions about a project's issue-tracking data.
// It resolves projects to their issue systems, builds filtered issue queries
// and scores developer expertise on top of a docstore.Store.
package query

import (
	"context"
	"log/slog"
	"time"

	"sebot/internal/docstore"
	"sebot/internal/errors"
)

const (
	// DefaultPageSize is used when a caller gives no page size.
	DefaultPageSize = 50
	// DefaultMaxPageSize caps caller-supplied page sizes.
	DefaultMaxPageSize = 500
)

// Options tunes the engine.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
	// ResolverTTL enables caching of project resolutions. Zero disables it.
	ResolverTTL time.Duration
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		DefaultPageSize: DefaultPageSize,
		MaxPageSize:     DefaultMaxPageSize,
	}
}

// Engine runs read-only queries against a document store.
type Engine struct {
	store    docstore.Store
	logger   *slog.Logger
	opts     Options
	projects *projectCache
}

// NewEngine creates a query engine over store.
func NewEngine(store docstore.Store, logger *slog.Logger, opts Options) *Engine {
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = DefaultPageSize
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = DefaultMaxPageSize
	}
	return &Engine{
		store:    store,
		logger:   logger,
		opts:     opts,
		projects: newProjectCache(opts.ResolverTTL, time.Now),
	}
}

// Store returns the engine's document store.
func (e *Engine) Store() docstore.Store {
	return e.store
}

// Close releases the document store.
func (e *Engine) Close(ctx context.Context) error {
	return e.store.Close(ctx)
}

func storageErr(operation string, err error) error {
	return errors.NewStorageError(operation, err)
}

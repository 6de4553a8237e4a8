// Package storage persists record collections as flat JSON files.
//
// Each collection is one JSON array in its own file, loaded once and kept in
// memory. Every mutation rewrites the whole file before it becomes visible.
//
// Concurrency: a collection serializes its read-modify-write cycles behind a
// mutex. That covers one process only. Processes sharing a data directory must
// be given a shared lock.Locker; mutations then reload the file from disk
// inside the lock and reads reload it before answering. Without one, the last
// writer to a file wins and reads see only this process's writes.
package storage

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"

	"rpscreen/internal/platform/lock"
)

// Collection is an in-memory list of T mirrored to a JSON file.
type Collection[T any] struct {
	name   string
	path   string
	locker lock.Locker
	logger *slog.Logger

	mu    sync.Mutex
	items []T
}

// Option configures a Collection or Sequences.
type Option func(*options)

type options struct {
	locker lock.Locker
	logger *slog.Logger
}

// WithLocker guards mutations with l in addition to the in-process mutex.
func WithLocker(l lock.Locker) Option {
	return func(o *options) {
		o.locker = l
	}
}

// WithLogger sets the logger used to report unreadable files.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func buildOptions(opts []Option) options {
	o := options{locker: lock.Nop{}, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// OpenCollection loads dir/name.json. A missing or corrupt file yields an
// empty collection.
func OpenCollection[T any](dir, name string, opts ...Option) *Collection[T] {
	o := buildOptions(opts)
	c := &Collection[T]{
		name:   name,
		path:   filepath.Join(dir, name+".json"),
		locker: o.locker,
		logger: o.logger,
	}
	c.items = c.load()
	return c
}

// Name is the collection's file stem.
func (c *Collection[T]) Name() string {
	return c.name
}

// Path is the collection's file path.
func (c *Collection[T]) Path() string {
	return c.path
}

// All returns a copy of the current items.
func (c *Collection[T]) All() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refresh()
	return slices.Clone(c.items)
}

// Len returns the number of items.
func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refresh()
	return len(c.items)
}

// refresh rereads the file when other processes may have written it. Reads
// skip the shared lock: files are replaced by rename, so a reader always sees
// some complete version. Callers hold c.mu.
func (c *Collection[T]) refresh() {
	if c.locker.Shared() {
		c.items = c.load()
	}
}

// Mutate runs fn on a copy of the items and, if fn succeeds, persists and
// publishes the returned slice. If fn or the write fails the collection is
// left exactly as it was.
func (c *Collection[T]) Mutate(ctx context.Context, fn func(items []T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	release, err := c.locker.Obtain(ctx, c.name)
	if err != nil {
		return err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			c.logger.WarnContext(ctx, "failed to release collection lock",
				"collection", c.name,
				"error", err,
			)
		}
	}()

	c.refresh()

	next, err := fn(slices.Clone(c.items))
	if err != nil {
		return err
	}
	if next == nil {
		next = []T{}
	}
	if err := writeJSON(c.path, next); err != nil {
		return err
	}
	c.items = next
	return nil
}

func (c *Collection[T]) load() []T {
	var items []T
	if err := readJSON(c.path, &items); err != nil {
		if !isNotExist(err) {
			c.logger.Warn("collection unreadable, starting empty",
				"collection", c.name,
				"path", c.path,
				"error", err,
			)
		}
		return []T{}
	}
	if items == nil {
		items = []T{}
	}
	return items
}

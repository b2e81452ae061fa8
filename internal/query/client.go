// Package query caches backend reads per key and coordinates mutations with
// optimistic patches, rollback and invalidation.
package query

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrorHook observes every failed read and mutation.
type ErrorHook func(ctx context.Context, key Key, err error)

type entry struct {
	key    Key
	serial uint64
	gen    uint64
	// writes counts stores and patches, so a fetch can tell it was overtaken.
	writes    uint64
	data      any
	hasData   bool
	err       error
	updatedAt time.Time
	staleTime time.Duration
	// invalidated forces the next read to refetch regardless of age.
	invalidated bool
	inFlight    int
}

func (e *entry) fresh(now time.Time, staleTime time.Duration) bool {
	return e.hasData && !e.invalidated && now.Sub(e.updatedAt) < staleTime
}

// Client holds the cache entries of one identity-bearing caller.
type Client struct {
	mu      sync.Mutex
	entries map[string]*entry
	serial  uint64
	pending map[string]int

	group   singleflight.Group
	now     func() time.Time
	logger  *slog.Logger
	shared  SharedStore
	onError ErrorHook

	retries      int
	retryBackoff time.Duration
}

type Option func(*Client)

// WithClock replaces time.Now, mainly for freshness tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func WithSharedStore(store SharedStore) Option {
	return func(c *Client) { c.shared = store }
}

func WithErrorHook(hook ErrorHook) Option {
	return func(c *Client) { c.onError = hook }
}

// WithRetry sets the default number of extra attempts for failed reads.
func WithRetry(retries int, backoff time.Duration) Option {
	return func(c *Client) {
		if retries > 0 {
			c.retries = retries
		}
		if backoff >= 0 {
			c.retryBackoff = backoff
		}
	}
}

func NewClient(logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		entries:      make(map[string]*entry),
		pending:      make(map[string]int),
		now:          time.Now,
		logger:       logger,
		retryBackoff: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SetErrorHook installs the hook after construction, for owners that need the
// client before the hook target exists.
func (c *Client) SetErrorHook(hook ErrorHook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = hook
}

func (c *Client) report(ctx context.Context, key Key, err error) {
	c.mu.Lock()
	hook := c.onError
	c.mu.Unlock()

	if hook != nil {
		hook(ctx, key, err)
	}
}

// entryLocked returns the entry for id, creating it when missing.
func (c *Client) entryLocked(id string, key Key) *entry {
	e, ok := c.entries[id]
	if !ok {
		c.serial++
		e = &entry{key: key.clone(), serial: c.serial}
		c.entries[id] = e
	}

	return e
}

// Invalidate marks every entry under prefix stale. Running fetches for those
// entries still complete, but their result does not make the entry fresh.
func (c *Client) Invalidate(ctx context.Context, prefixes ...Key) {
	c.mu.Lock()
	count := 0
	for _, e := range c.entries {
		for _, prefix := range prefixes {
			if e.key.HasPrefix(prefix) {
				e.invalidated = true
				e.gen++
				count++

				break
			}
		}
	}
	shared := c.shared
	c.mu.Unlock()

	if shared != nil {
		for _, prefix := range prefixes {
			if err := shared.DeletePrefix(ctx, prefix.String()); err != nil {
				c.logger.Warn("Failed to invalidate shared cache", slog.String("key", prefix.String()), slog.Any("error", err))
			}
		}
	}

	c.logger.Debug("Invalidated queries", slog.Int("entries", count), slog.Int("prefixes", len(prefixes)))
}

// Remove drops every entry under prefix. Results of running fetches for them
// are discarded.
func (c *Client) Remove(prefixes ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, e := range c.entries {
		for _, prefix := range prefixes {
			if e.key.HasPrefix(prefix) {
				delete(c.entries, id)

				break
			}
		}
	}
}

// Clear drops every entry. Used when the caller's identity changes.
func (c *Client) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry)
}

// Len returns the number of cached entries.
func (c *Client) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// IsPending reports whether a mutation with this name is in flight.
func (c *Client) IsPending(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.pending[name] > 0
}

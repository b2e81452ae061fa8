package query

import (
	"context"
	"log/slog"

	domainerrors "storefront/internal/domain/errors"

	"github.com/pkg/errors"
)

// Mutation describes one write. Mutations are never coalesced or retried.
type Mutation[In, Out any] struct {
	// Name groups in-flight mutations for IsPending and Exclusive.
	Name string
	Do   func(ctx context.Context, in In) (Out, error)

	// Snapshot lists the keys Optimistic touches. They are restored exactly
	// when Do fails.
	Snapshot func(in In) []Key
	// Optimistic patches the cache before the request is sent.
	Optimistic func(c *Client, in In)

	// Invalidate lists the key prefixes to mark stale after success.
	Invalidate func(in In, out Out) []Key
	// OnSuccess runs after invalidation.
	OnSuccess func(ctx context.Context, in In, out Out)

	// Exclusive rejects a submit while another one with the same name is running.
	Exclusive bool
}

type snapshot struct {
	id    string
	entry *entry
	copy  entry
	found bool
}

// Mutate runs the mutation. On failure the snapshotted entries are put back
// exactly as they were and the error is returned.
func Mutate[In, Out any](ctx context.Context, c *Client, m Mutation[In, Out], in In) (Out, error) {
	var zero Out

	if err := c.begin(m.Name, m.Exclusive); err != nil {
		return zero, err
	}
	defer c.end(m.Name)

	var snaps []snapshot
	if m.Optimistic != nil {
		if m.Snapshot != nil {
			snaps = c.snapshot(m.Snapshot(in))
		}
		m.Optimistic(c, in)
	}

	out, err := m.Do(ctx, in)
	if err != nil {
		c.restore(snaps)
		c.logger.Debug("Mutation failed", slog.String("mutation", m.Name), slog.Any("error", err))
		c.report(ctx, Key{m.Name}, err)

		return zero, err
	}

	if m.Invalidate != nil {
		c.Invalidate(ctx, m.Invalidate(in, out)...)
	}
	if m.OnSuccess != nil {
		m.OnSuccess(ctx, in, out)
	}

	return out, nil
}

func (c *Client) begin(name string, exclusive bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if exclusive && c.pending[name] > 0 {
		return errors.WithStack(domainerrors.ErrMutationPending.WithDetails(name))
	}
	c.pending[name]++

	return nil
}

func (c *Client) end(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending[name]--
	if c.pending[name] <= 0 {
		delete(c.pending, name)
	}
}

func (c *Client) snapshot(keys []Key) []snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snaps := make([]snapshot, 0, len(keys))
	for _, key := range keys {
		id := key.String()
		e, ok := c.entries[id]
		s := snapshot{id: id, found: ok}
		if ok {
			s.entry = e
			s.copy = *e
		}
		snaps = append(snaps, s)
	}

	return snaps
}

func (c *Client) restore(snaps []snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range snaps {
		if !s.found {
			delete(c.entries, s.id)

			continue
		}

		current, ok := c.entries[s.id]
		if !ok || current != s.entry {
			// Removed or replaced meanwhile; the identity it belonged to is gone.
			continue
		}
		current.data = s.copy.data
		current.hasData = s.copy.hasData
		current.err = s.copy.err
		current.updatedAt = s.copy.updatedAt
		current.invalidated = s.copy.invalidated
		current.writes++
	}
}

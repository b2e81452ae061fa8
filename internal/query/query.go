package query

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	domainerrors "storefront/internal/domain/errors"
)

// Query describes one cached read.
type Query[T any] struct {
	Key Key
	// Fetch performs the network read.
	Fetch func(ctx context.Context) (T, error)
	// StaleTime is the freshness window. Zero means always refetch.
	StaleTime time.Duration
	// Enabled gates the read. A nil predicate means enabled.
	Enabled func() bool
	// Shared routes the read through the client's SharedStore.
	Shared bool
	// Retry overrides the client's read retry count when positive.
	Retry int
	// Stored runs after a fetched value has been accepted into the cache.
	Stored func(data T)
}

// Result is what a read reports. Errors are carried, never raised.
type Result[T any] struct {
	Data      T
	HasData   bool
	IsLoading bool
	IsError   bool
	IsStale   bool
	Err       error
	UpdatedAt time.Time
}

// Disabled reports a read whose gate was closed.
func (r Result[T]) Disabled() bool {
	return !r.HasData && !r.IsLoading && !r.IsError
}

type outcome struct {
	data any
	err  error
	// gen is the entry generation the flight started from.
	gen      uint64
	accepted bool
}

// Fetch returns the cached value when fresh and otherwise loads it. Callers
// for the same key share a single network request. A caller that arrives
// after an invalidation waits for the running request and then loads once
// more. A caller whose context ends stops waiting; the request itself runs
// to completion.
func Fetch[T any](ctx context.Context, c *Client, q Query[T]) Result[T] {
	if q.Enabled != nil && !q.Enabled() {
		return Result[T]{}
	}

	id := q.Key.String()

	c.mu.Lock()
	e := c.entryLocked(id, q.Key)
	e.staleTime = q.StaleTime
	if e.fresh(c.now(), q.StaleTime) {
		res := resultOf[T](e, c.now())
		c.mu.Unlock()

		return res
	}
	flightKey := id + "#" + strconv.FormatUint(e.serial, 10)
	want := e.gen
	c.mu.Unlock()

	for {
		ch := c.group.DoChan(flightKey, func() (any, error) {
			return load(context.WithoutCancel(ctx), c, id, e, q), nil
		})

		select {
		case <-ctx.Done():
			c.mu.Lock()
			res := resultOf[T](e, c.now())
			c.mu.Unlock()
			res.IsLoading = true
			res.IsError = true
			res.Err = ctx.Err()

			return res
		case r := <-ch:
			out, _ := r.Val.(outcome)

			c.mu.Lock()
			current := c.entries[id] == e
			res := resultOf[T](e, c.now())
			c.mu.Unlock()

			if current && out.gen < want {
				continue
			}

			if out.err != nil {
				res.IsError = true
				res.Err = out.err
				res.IsStale = res.HasData

				return res
			}
			// A removed entry belonged to a previous identity; its caller
			// still gets what it asked for. A rejected result leaves the
			// newer cached value in place.
			if out.accepted || !current {
				if data, ok := out.data.(T); ok {
					res.Data = data
					res.HasData = true
				}
			}

			return res
		}
	}
}

func load[T any](ctx context.Context, c *Client, id string, e *entry, q Query[T]) outcome {
	c.mu.Lock()
	e.inFlight++
	gen, writes := e.gen, e.writes
	shared := c.shared
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		e.inFlight--
		c.mu.Unlock()
	}()

	if q.Shared && shared != nil {
		if data, ok := readShared[T](ctx, c, shared, id); ok {
			return accept(c, id, e, gen, writes, data, q)
		}
	}

	data, err := fetchWithRetry(ctx, c, q)
	if err != nil {
		c.fail(id, e, writes, err)
		c.logger.Debug("Query failed", slog.String("key", id), slog.Any("error", err))
		c.report(ctx, q.Key, err)

		return outcome{data: data, err: err, gen: gen}
	}

	out := accept(c, id, e, gen, writes, data, q)
	if q.Shared && shared != nil && out.accepted {
		writeShared(ctx, c, shared, id, data, q.StaleTime)
	}

	return out
}

func accept[T any](c *Client, id string, e *entry, gen, writes uint64, data T, q Query[T]) outcome {
	accepted := c.store(id, e, gen, writes, data)
	if !accepted {
		c.logger.Debug("Discarded superseded query result", slog.String("key", id))
	} else if q.Stored != nil {
		q.Stored(data)
	}

	return outcome{data: data, gen: gen, accepted: accepted}
}

func fetchWithRetry[T any](ctx context.Context, c *Client, q Query[T]) (T, error) {
	retries := c.retries
	if q.Retry > 0 {
		retries = q.Retry
	}

	var (
		data T
		err  error
	)
	for attempt := 0; ; attempt++ {
		data, err = q.Fetch(ctx)
		if err == nil || attempt >= retries || !domainerrors.KindOf(err).Retryable() {
			return data, err
		}

		if c.retryBackoff > 0 {
			timer := time.NewTimer(c.retryBackoff * time.Duration(attempt+1))
			select {
			case <-ctx.Done():
				timer.Stop()

				return data, err
			case <-timer.C:
			}
		}
	}
}

// store writes a fetch result into the entry it was started for. Results for
// removed entries, or entries written since the fetch began, are dropped. An
// invalidation during the fetch keeps the entry stale.
func (c *Client) store(id string, e *entry, gen, writes uint64, data any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entries[id] != e || e.writes != writes {
		return false
	}

	e.data = data
	e.hasData = true
	e.err = nil
	e.updatedAt = c.now()
	e.invalidated = e.gen != gen
	e.writes++

	return true
}

func (c *Client) fail(id string, e *entry, writes uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entries[id] != e || e.writes != writes {
		return
	}
	e.err = err
}

func readShared[T any](ctx context.Context, c *Client, shared SharedStore, id string) (T, bool) {
	var data T

	raw, ok, err := shared.Get(ctx, id)
	if err != nil {
		c.logger.Warn("Shared cache read failed", slog.String("key", id), slog.Any("error", err))

		return data, false
	}
	if !ok {
		return data, false
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		c.logger.Warn("Shared cache entry is corrupt", slog.String("key", id), slog.Any("error", err))

		return data, false
	}

	return data, true
}

func writeShared(ctx context.Context, c *Client, shared SharedStore, id string, data any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	raw, err := json.Marshal(data)
	if err != nil {
		c.logger.Warn("Shared cache encode failed", slog.String("key", id), slog.Any("error", err))

		return
	}
	if err := shared.Set(ctx, id, raw, ttl); err != nil {
		c.logger.Warn("Shared cache write failed", slog.String("key", id), slog.Any("error", err))
	}
}

// resultOf must be called with c.mu held.
func resultOf[T any](e *entry, now time.Time) Result[T] {
	res := Result[T]{
		IsLoading: e.inFlight > 0,
		UpdatedAt: e.updatedAt,
	}
	if e.hasData {
		if data, ok := e.data.(T); ok {
			res.Data = data
			res.HasData = true
		}
		res.IsStale = !e.fresh(now, e.staleTime)
	}
	if e.err != nil {
		res.IsError = true
		res.Err = e.err
	}

	return res
}

// Peek reports the current state of key without fetching.
func Peek[T any](c *Client, key Key) Result[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key.String()]
	if !ok {
		return Result[T]{}
	}

	return resultOf[T](e, c.now())
}

// SetData replaces the cached value of key with update's return value. update
// receives the current value and must not modify it in place.
func SetData[T any](c *Client, key Key, update func(current T, ok bool) T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entryLocked(key.String(), key)
	current, ok := e.data.(T)
	if !e.hasData {
		ok = false
	}

	e.data = update(current, ok)
	e.hasData = true
	e.err = nil
	e.writes++
	if e.updatedAt.IsZero() {
		e.updatedAt = c.now()
	}
}

// Map converts the data of a result, keeping its state flags.
func Map[T, U any](res Result[T], fn func(T) U) Result[U] {
	out := Result[U]{
		HasData:   res.HasData,
		IsLoading: res.IsLoading,
		IsError:   res.IsError,
		IsStale:   res.IsStale,
		Err:       res.Err,
		UpdatedAt: res.UpdatedAt,
	}
	if res.HasData {
		out.Data = fn(res.Data)
	}

	return out
}

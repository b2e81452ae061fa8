// Package cache provides the Redis-backed shared store for public queries.
package cache

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"storefront/config"
	"storefront/internal/domain/lifecycle"
	"storefront/internal/query"
)

const (
	defaultPrefix = "storefront:query:"
	scanBatch     = 200
)

type redisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps client as a query.SharedStore. Keys are namespaced with prefix.
func NewRedisStore(client *redis.Client, prefix string) query.SharedStore {
	if prefix == "" {
		prefix = defaultPrefix
	}

	return &redisStore{client: client, prefix: prefix}
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "redis get %s", key)
	}

	return raw, true, nil
}

func (s *redisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.prefix+key, value, ttl).Err(); err != nil {
		return errors.Wrapf(err, "redis set %s", key)
	}

	return nil
}

// DeletePrefix removes key and every key below it, scanning in batches.
func (s *redisStore) DeletePrefix(ctx context.Context, key string) error {
	full := s.prefix + key
	if err := s.client.Del(ctx, full).Err(); err != nil {
		return errors.Wrapf(err, "redis del %s", key)
	}

	pattern := escapeGlob(full) + ":*"
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return errors.Wrapf(err, "redis scan %s", pattern)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return errors.Wrapf(err, "redis del under %s", key)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func escapeGlob(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}

	return b.String()
}

// Params holds dependencies for the shared store, injected by Fx
type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// NewSharedStore connects to Redis when configured. Without a redis section
// it returns nil and queries stay per client.
func NewSharedStore(params Params) (query.SharedStore, error) {
	cfg := params.Config.Redis
	if cfg == nil || cfg.Addr == "" {
		params.Logger.Info("Redis not configured, shared query cache disabled")

		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		Protocol: 2,
	})

	params.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
			defer cancel()
			if err := client.Ping(ctx).Err(); err != nil {
				return errors.Wrap(err, "redis ping")
			}
			params.Logger.Info("Redis shared query cache connected", slog.String("addr", cfg.Addr))

			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	return NewRedisStore(client, cfg.Prefix), nil
}

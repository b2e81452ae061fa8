package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	pgLib "github.com/slighter12/go-lib/database/postgres"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"storefront/config"
	"storefront/internal/domain/lifecycle"
	"storefront/internal/infra/persistence/model"
)

const (
	dbPoolMonitorInterval       = 5 * time.Second
	dbPoolWarnDurationThreshold = 50 * time.Millisecond
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New opens PostgreSQL when configured. It returns a nil *gorm.DB otherwise,
// and callers fall back to in-memory storage.
func New(params Params) (*gorm.DB, error) {
	if params.Config.Postgres == nil {
		params.Logger.Info("PostgreSQL not configured, visitor sessions kept in memory")

		return nil, nil
	}

	db, err := pgLib.New(params.Config.Postgres)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create PostgreSQL client")
	}
	db = db.Session(&gorm.Session{
		SkipDefaultTransaction: true,
		Logger:                 newGormLogger(params.Logger, params.Config.Env.Debug),
	})

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get PostgreSQL sql.DB")
	}

	monitorCtx, cancelMonitor := context.WithCancel(context.Background())

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := sqlDB.PingContext(ctx); err != nil {
				return errors.Wrap(err, "failed to ping PostgreSQL")
			}
			if err := db.WithContext(ctx).AutoMigrate(&model.VisitorSessionModel{}); err != nil {
				return errors.Wrap(err, "failed to migrate visitor_sessions")
			}

			go monitorDBPool(monitorCtx, params.Logger, sqlDB, dbPoolMonitorInterval)

			return nil
		},
		OnStop: func(_ context.Context) error {
			cancelMonitor()

			return sqlDB.Close()
		},
	})

	return db, nil
}

// monitorDBPool logs connection pool waits between ticks.
func monitorDBPool(ctx context.Context, logger *slog.Logger, sqlDB *sql.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prev := sqlDB.Stats()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur := sqlDB.Stats()
			logPoolWait(ctx, logger, prev, cur)
			prev = cur
		}
	}
}

func logPoolWait(ctx context.Context, logger *slog.Logger, prev, cur sql.DBStats) {
	waits := cur.WaitCount - prev.WaitCount
	if waits <= 0 {
		return
	}

	waited := cur.WaitDuration - prev.WaitDuration
	level := slog.LevelDebug
	if waited >= dbPoolWarnDurationThreshold {
		level = slog.LevelWarn
	}

	logger.LogAttrs(ctx, level, "Postgres pool wait",
		slog.Int64("waitCountDelta", waits),
		slog.Duration("waitDurationDelta", waited),
		slog.Duration("avgWait", waited/time.Duration(waits)),
		slog.Int("openConns", cur.OpenConnections),
		slog.Int("inUseConns", cur.InUse),
		slog.Int("maxOpenConns", cur.MaxOpenConnections),
	)
}

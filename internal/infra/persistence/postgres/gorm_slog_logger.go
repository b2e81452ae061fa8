package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultGormSlowThreshold = 200 * time.Millisecond

// gormLogger forwards GORM output to slog.
type gormLogger struct {
	logger        *slog.Logger
	level         logger.LogLevel
	slowThreshold time.Duration
}

func newGormLogger(base *slog.Logger, debug bool) logger.Interface {
	level := logger.Warn
	if debug {
		level = logger.Info
	}

	return &gormLogger{logger: base, level: level, slowThreshold: defaultGormSlowThreshold}
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	cloned := *l
	cloned.level = level

	return &cloned
}

func (l *gormLogger) Info(ctx context.Context, msg string, args ...any) {
	l.printf(ctx, logger.Info, slog.LevelInfo, msg, args...)
}

func (l *gormLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.printf(ctx, logger.Warn, slog.LevelWarn, msg, args...)
}

func (l *gormLogger) Error(ctx context.Context, msg string, args ...any) {
	l.printf(ctx, logger.Error, slog.LevelError, msg, args...)
}

func (l *gormLogger) printf(ctx context.Context, min logger.LogLevel, level slog.Level, msg string, args ...any) {
	if l.logger == nil || l.level < min {
		return
	}

	l.logger.LogAttrs(ctx, level, "GORM", slog.String("message", fmt.Sprintf(msg, args...)))
}

// Trace logs failed queries, slow queries, and in debug mode every query.
// Missing records are an expected outcome for visitor lookups and are not logged.
func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.logger == nil || l.level == logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	attrs := func(extra ...slog.Attr) []slog.Attr {
		sql, rows := fc()

		return append([]slog.Attr{
			slog.Duration("elapsed", elapsed),
			slog.Int64("rows", rows),
			slog.String("sql", sql),
		}, extra...)
	}

	switch {
	case err != nil && l.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		l.logger.LogAttrs(ctx, slog.LevelError, "GORM query failed", attrs(slog.String("error", err.Error()))...)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= logger.Warn:
		l.logger.LogAttrs(ctx, slog.LevelWarn, "GORM slow query", attrs(slog.Duration("slowThreshold", l.slowThreshold))...)
	case l.level >= logger.Info:
		l.logger.LogAttrs(ctx, slog.LevelInfo, "GORM query", attrs()...)
	}
}

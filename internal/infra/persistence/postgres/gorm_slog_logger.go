package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"storefront/config"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// slowQueryDefault applies when the config sets no threshold. Catalog
// listing with filters is the heaviest query in the system; anything
// past this is worth a warning.
const slowQueryDefault = 200 * time.Millisecond

// gormSlogLogger routes gorm's logging through the application logger.
// ErrRecordNotFound is never logged as an error; the repositories
// translate it into domain not-found errors.
type gormSlogLogger struct {
	logger        *slog.Logger
	level         logger.LogLevel
	slowThreshold time.Duration
}

func newGormSlogLogger(baseLogger *slog.Logger, cfg *config.Config) logger.Interface {
	level := logger.Warn
	threshold := slowQueryDefault
	if cfg != nil {
		if cfg.Env.Debug {
			level = logger.Info
		}
		if cfg.Postgres != nil && cfg.Postgres.SlowQueryThreshold > 0 {
			threshold = cfg.Postgres.SlowQueryThreshold
		}
	}

	return &gormSlogLogger{
		logger:        baseLogger,
		level:         level,
		slowThreshold: threshold,
	}
}

func (l *gormSlogLogger) LogMode(level logger.LogLevel) logger.Interface {
	cloned := *l
	cloned.level = level

	return &cloned
}

func (l *gormSlogLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.level >= logger.Info && l.logger != nil {
		l.logger.LogAttrs(ctx, slog.LevelInfo, "gorm: "+fmt.Sprintf(msg, args...))
	}
}

func (l *gormSlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level >= logger.Warn && l.logger != nil {
		l.logger.LogAttrs(ctx, slog.LevelWarn, "gorm: "+fmt.Sprintf(msg, args...))
	}
}

func (l *gormSlogLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.level >= logger.Error && l.logger != nil {
		l.logger.LogAttrs(ctx, slog.LevelError, "gorm: "+fmt.Sprintf(msg, args...))
	}
}

func (l *gormSlogLogger) Trace(ctx context.Context, begin time.Time, sqlAndRowsFn func() (string, int64), err error) {
	if l.logger == nil || l.level == logger.Silent {
		return
	}

	elapsed := time.Since(begin)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= logger.Error:
		sql, rows := sqlAndRowsFn()
		l.logger.LogAttrs(ctx, slog.LevelError, "Query failed",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()),
		)

	case elapsed > l.slowThreshold && l.level >= logger.Warn:
		sql, rows := sqlAndRowsFn()
		l.logger.LogAttrs(ctx, slog.LevelWarn, "Slow query",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
			slog.Duration("threshold", l.slowThreshold),
		)

	case l.level >= logger.Info:
		sql, rows := sqlAndRowsFn()
		l.logger.LogAttrs(ctx, slog.LevelInfo, "Query",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
		)
	}
}

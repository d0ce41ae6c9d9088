// Package db opens and configures the postgres pool shared by the API
// server and the scheduler.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	envconfig "nolofication/internal/pkg/config"
)

// ConnectionConfig bounds the connection pool. Both binaries share one
// database, so the sum of their MaxOpenConns must stay under the
// server's max_connections.
type ConnectionConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConnectionConfig returns the pool limits used when the
// DB_* environment variables are unset.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 1 * time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
	}
}

// Open opens a pgx pool for the DSN, applies the pool limits from the
// environment and verifies the connection with a bounded ping.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("open database: empty DSN")
	}

	pool, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	cfg := poolConfigFromEnv()
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	pool.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	slog.Info("database connection pool configured",
		slog.Int("max_open_conns", cfg.MaxOpenConns),
		slog.Int("max_idle_conns", cfg.MaxIdleConns),
		slog.Duration("conn_max_lifetime", cfg.ConnMaxLifetime),
		slog.Duration("conn_max_idle_time", cfg.ConnMaxIdleTime))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("database connection established successfully")
	return pool, nil
}

// poolConfigFromEnv reads DB_MAX_OPEN_CONNS, DB_MAX_IDLE_CONNS,
// DB_CONN_MAX_LIFETIME and DB_CONN_MAX_IDLE_TIME. Unparseable or
// non-positive values keep the defaults.
func poolConfigFromEnv() ConnectionConfig {
	def := DefaultConnectionConfig()

	positiveInt := func(v int) error {
		if v < 1 {
			return fmt.Errorf("value %d is below minimum 1", v)
		}
		return nil
	}

	return ConnectionConfig{
		MaxOpenConns: envconfig.LoadEnvInt(
			"DB_MAX_OPEN_CONNS", def.MaxOpenConns, positiveInt).Value.(int),
		MaxIdleConns: envconfig.LoadEnvInt(
			"DB_MAX_IDLE_CONNS", def.MaxIdleConns, positiveInt).Value.(int),
		ConnMaxLifetime: envconfig.LoadEnvDuration(
			"DB_CONN_MAX_LIFETIME", def.ConnMaxLifetime, envconfig.ValidatePositiveDuration).Value.(time.Duration),
		ConnMaxIdleTime: envconfig.LoadEnvDuration(
			"DB_CONN_MAX_IDLE_TIME", def.ConnMaxIdleTime, envconfig.ValidatePositiveDuration).Value.(time.Duration),
	}
}

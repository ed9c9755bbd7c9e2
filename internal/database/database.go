package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/kkkkikiki/loyalty/internal/config"
)

const pingTimeout = 2 * time.Second

// DB wraps the shared PostgreSQL pool. Repositories receive Postgres (or a
// transaction opened on it) as their DBExecutor.
type DB struct {
	Postgres *sqlx.DB
}

// NewDB opens the pool described by cfg.Database and verifies it answers.
func NewDB(ctx context.Context, cfg *config.Config, log *zap.Logger) (*DB, error) {
	dbc := cfg.Database

	pool, err := sqlx.ConnectContext(ctx, "postgres", dbc.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	pool.SetMaxOpenConns(dbc.MaxConns)
	pool.SetMaxIdleConns(dbc.MinConns)
	pool.SetConnMaxLifetime(dbc.ConnMaxLifetime)

	db := &DB{Postgres: pool}
	if err := db.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	log.Info("connected to PostgreSQL",
		zap.String("host", dbc.Host),
		zap.String("database", dbc.Name),
		zap.Int("max_conns", dbc.MaxConns))
	return db, nil
}

// Ping checks the pool with a short deadline; /health/db reports on it.
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.Postgres.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}
	return nil
}

func (db *DB) Close() error {
	if err := db.Postgres.Close(); err != nil {
		return fmt.Errorf("failed to close PostgreSQL: %w", err)
	}
	return nil
}

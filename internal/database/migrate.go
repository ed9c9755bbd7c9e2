package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

const migrationsDir = "migrations"

//go:embed migrations/*.up.sql
var embeddedMigrations embed.FS

// Migrate brings the schema up to the newest embedded migration.
// Applied versions are tracked in schema_migrations by golang-migrate.
func (db *DB) Migrate(ctx context.Context, log *zap.Logger) error {
	driver, err := postgres.WithInstance(db.Postgres.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to open migration driver: %w", err)
	}
	return runMigrations(ctx, embeddedMigrations, "postgres", driver, log)
}

func runMigrations(ctx context.Context, fsys fs.FS, driverName string, driver database.Driver, log *zap.Logger) error {
	src, err := iofs.New(fsys, migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driverName, driver)
	if err != nil {
		return fmt.Errorf("failed to set up migrations: %w", err)
	}
	m.Log = &migrateLogger{log: log.Sugar()}

	// Up has no context; a cancelled ctx asks it to stop after the current file
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			m.GracefulStop <- true
		case <-done:
		}
	}()

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Debug("schema up to date")
	case err != nil:
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if dirty {
		return fmt.Errorf("schema version %d is dirty", version)
	}
	log.Info("schema migrated", zap.Uint("version", version))
	return ctx.Err()
}

// migrateLogger forwards golang-migrate output to zap
type migrateLogger struct {
	log *zap.SugaredLogger
}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	l.log.Infof(strings.TrimSuffix(format, "\n"), v...)
}

func (l *migrateLogger) Verbose() bool {
	return false
}

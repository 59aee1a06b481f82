package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

//go:embed migrations
var migrationsFS embed.FS

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// migrationDir maps a driver name to its goose dialect and migration directory.
func migrationDir(driver string) (dialect, dir string, err error) {
	switch driver {
	case "mysql":
		return "mysql", "migrations/mysql", nil
	case "postgres":
		return "postgres", "migrations/postgres", nil
	default:
		return "", "", fmt.Errorf("no migrations for driver %q", driver)
	}
}

// AddIndexes applies the embedded index migrations on top of the schema
// created by AutoMigrate.
func AddIndexes(ctx context.Context, db *gorm.DB, driver string) error {
	dialect, dir, err := migrationDir(driver)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := gooseUpContext(ctx, sqlDB, dir); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	return nil
}

// MigrateDatabase runs all database migrations
func MigrateDatabase(ctx context.Context, db *gorm.DB, driver string) error {
	if err := AutoMigrate(db); err != nil {
		return err
	}

	return AddIndexes(ctx, db, driver)
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	root "primes"
	"primes/pkg/logger"

	"github.com/pressly/goose/v3"
	"github.com/riverqueue/river/riverdriver/riverdatabasesql"
	"github.com/riverqueue/river/rivermigrate"
	"go.uber.org/zap"
)

// Migrate applies the embedded schema migrations with goose, then brings
// River's tables to the latest version. Running it on an up to date database
// is a no-op.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(root.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("could not set goose dialect to postgres: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("could not migrate pgsql: %w", err)
	}

	migrator, err := rivermigrate.New(riverdatabasesql.New(db), nil)
	if err != nil {
		return fmt.Errorf("could not create river queue migrator: %w", err)
	}
	migrations := migrator.AllVersions()
	latestVersion := migrations[len(migrations)-1].Version

	currentVersion := 0
	currentMigrations, err := migrator.ExistingVersions(ctx)
	if err != nil {
		return fmt.Errorf("could not get existing river queue migrations: %w", err)
	}
	if len(currentMigrations) > 0 {
		currentVersion = currentMigrations[len(currentMigrations)-1].Version
	}
	if latestVersion <= currentVersion {
		logger.Debug(ctx, "river queue schema is up to date", zap.Int("version", currentVersion))

		return nil
	}

	if _, err = migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{
		TargetVersion: latestVersion,
	}); err != nil {
		return fmt.Errorf("could not migrate river queue database: %w", err)
	}
	logger.Info(ctx, "river queue schema migrated",
		zap.Int("from", currentVersion),
		zap.Int("to", latestVersion))

	return nil
}

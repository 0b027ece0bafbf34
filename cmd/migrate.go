package main

import (
	"context"
	"database/sql"
	"primes/internal/config"
	"primes/pkg/logger"
	"primes/pkg/storage/postgres"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// migrateCommand constructs the 'migrate' subcommand that applies the schema
// and River migrations to the latest version.
func migrateCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrates database to the latest version",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			strg, closeStrg := getPostgres(ctx, cfg)
			defer closeStrg()

			db, ok := strg.DB.(*sql.DB)
			if !ok {
				logger.Fatal(ctx, "postgres storage is not backed by *sql.DB")
			}
			if err := postgres.Migrate(ctx, db); err != nil {
				logger.Fatal(ctx, "could not migrate database", zap.Error(err))
			}

			logger.Info(ctx, "database migrated")
		},
	}

	return cmd
}

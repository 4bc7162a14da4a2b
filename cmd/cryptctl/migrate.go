package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"crypto-audit-service/config"
	"crypto-audit-service/internal/infra"
	"crypto-audit-service/internal/repository"
)

// migrateCmd はDBの起動を待って監査ログテーブルを作成する。
// テーブルが既にあれば何もしない。
func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the audit log table",
		Long:  "Wait for the database configured by DATABASE_URL and create the audit log table if missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL environment variable is required")
			}

			ctx, cancel := context.WithTimeout(context.Background(), cfg.DBWaitTimeout+10*time.Second)
			defer cancel()

			db, err := infra.Acquire(ctx, cfg.DatabaseURL, cfg.DBWaitTimeout, cfg.DBPollInterval,
				infra.WithOpener(func(dsn string) (*gorm.DB, error) {
					return infra.NewDB(dsn, false)
				}),
				infra.WithModels(&repository.LogEntryModel{}),
			)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Table %q is ready.\n", repository.LogEntryModel{}.TableName())
			return nil
		},
	}
}

package main

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"discharge-companion/internal/config"
	"discharge-companion/internal/db"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the usage ledger schema to Postgres",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url is not configured")
			}

			conn, err := sql.Open("postgres", cfg.Postgres.URL)
			if err != nil {
				return fmt.Errorf("open postgres: %w", err)
			}
			defer conn.Close()

			if err := db.Migrate(cmd.Context(), conn); err != nil {
				return fmt.Errorf("apply schema: %w", err)
			}
			fmt.Println("schema applied")
			return nil
		},
	}
}

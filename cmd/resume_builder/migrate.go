package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/resume-builder/internal/db"
	"github.com/spf13/cobra"
)

var (
	migrateDatabaseURL string
	migrateList        bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long:  `Connects to DATABASE_URL (or --database-url) and applies the embedded schema migrations that have not run yet. The server does this on first use as well.`,
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrateDatabaseURL, "database-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	migrateCmd.Flags().BoolVar(&migrateList, "list", false, "List embedded migrations without connecting")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	if migrateList {
		migrations, err := db.Migrations()
		if err != nil {
			return err
		}
		for _, m := range migrations {
			fmt.Fprintln(cmd.OutOrStdout(), m.Name)
		}
		return nil
	}

	databaseURL := migrateDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return fmt.Errorf("database URL is required (use --database-url or set DATABASE_URL)")
	}

	connectCtx, cancel := context.WithTimeout(cmd.Context(), db.DefaultConnectTimeout)
	defer cancel()

	database, err := db.Connect(connectCtx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	applied, err := database.Migrate(cmd.Context())
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if len(applied) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date")
		return nil
	}
	for _, name := range applied {
		fmt.Fprintf(cmd.OutOrStdout(), "Applied %s\n", name)
	}
	return nil
}

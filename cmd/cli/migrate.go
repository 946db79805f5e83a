package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/asapobra/quote-service/internal/catalog"
	"github.com/asapobra/quote-service/internal/database"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the catalog schema to the database",
	Long: `Create the materials, stores and listings tables if they do not exist.
The DDL is idempotent and safe to re-run.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if _, err := database.Pool().Exec(ctx, catalog.Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	logger.Info().Msg("Schema applied")
	return nil
}

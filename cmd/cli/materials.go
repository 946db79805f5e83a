package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/asapobra/quote-service/internal/catalog"
	"github.com/asapobra/quote-service/internal/database"
)

// materialsCmd represents the materials command
var materialsCmd = &cobra.Command{
	Use:   "materials",
	Short: "List the active master catalog",
	RunE:  runMaterials,
}

func init() {
	rootCmd.AddCommand(materialsCmd)
}

func runMaterials(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	repo := catalog.NewPostgresCatalog(database.Pool())
	materials, err := repo.ListMaterials(ctx)
	if err != nil {
		return fmt.Errorf("list materials: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tUNIT")
	for _, m := range materials {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", m.ID, m.Name, m.Category, m.Unit)
	}
	w.Flush()

	logger.Info().Int("count", len(materials)).Msg("Catalog listed")
	return nil
}

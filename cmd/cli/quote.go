package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/asapobra/quote-service/internal/catalog"
	"github.com/asapobra/quote-service/internal/database"
	"github.com/asapobra/quote-service/internal/export"
	"github.com/asapobra/quote-service/internal/geo"
	"github.com/asapobra/quote-service/internal/quote"
)

var (
	quoteLat      float64
	quoteLng      float64
	quoteRadius   float64
	quoteLimit    int
	quoteIDs      []int64
	quoteCategory string
	quoteByDist   bool
	quoteXlsxOut  string
)

// quoteCmd represents the quote command
var quoteCmd = &cobra.Command{
	Use:   "quote [terms...]",
	Short: "Build a price comparison across nearby stores",
	Long: `Resolve listings for the given search terms, material ids or category,
rank the stores around the buyer's location and print the comparison
matrix. Without --lat/--lng every matching store qualifies.`,
	Example: `  quote-service quote cimento areia --lat -23.55 --lng -46.63
  quote-service quote --ids 1,2,7 --lat -23.55 --lng -46.63 --radius 30
  quote-service quote --category Hidraulica --xlsx cotacao.xlsx`,
	RunE: runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)

	quoteCmd.Flags().Float64Var(&quoteLat, "lat", 0, "Buyer latitude")
	quoteCmd.Flags().Float64Var(&quoteLng, "lng", 0, "Buyer longitude")
	quoteCmd.Flags().Float64Var(&quoteRadius, "radius", 0, "Search radius in km (0 uses the configured default)")
	quoteCmd.Flags().IntVar(&quoteLimit, "limit", 0, "Maximum number of stores (0 uses the configured default)")
	quoteCmd.Flags().Int64SliceVar(&quoteIDs, "ids", nil, "Material ids to quote")
	quoteCmd.Flags().StringVar(&quoteCategory, "category", "", "Quote a whole category")
	quoteCmd.Flags().BoolVar(&quoteByDist, "by-distance", false, "Sort stores by distance instead of total price")
	quoteCmd.Flags().StringVar(&quoteXlsxOut, "xlsx", "", "Write the matrix to an XLSX file")
}

func runQuote(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	repo := catalog.NewPostgresCatalog(database.Pool())
	svc := quote.NewService(repo, quote.Options{
		DefaultRadiusKm:   cfg.Search.DefaultRadiusKm,
		DefaultStoreLimit: cfg.Search.DefaultStoreLimit,
		MaxStoreLimit:     cfg.Search.MaxStoreLimit,
	})

	req := quote.Request{
		MaterialIDs: quoteIDs,
		Category:    quoteCategory,
		Terms:       args,
		RadiusKm:    quoteRadius,
		StoreLimit:  quoteLimit,
	}
	if quoteByDist {
		req.Order = quote.OrderByDistance
	}
	if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng") {
		p, err := geo.NewPoint(quoteLat, quoteLng)
		if err != nil {
			return fmt.Errorf("invalid location: %w", err)
		}
		req.Location = &p
	}

	result, err := svc.Quote(ctx, req)
	if err != nil {
		return err
	}
	if result.Reason != quote.ReasonOK {
		logger.Warn().Str("reason", string(result.Reason)).Msg("Quote degraded")
	}
	if len(result.Matrix.Columns) == 0 {
		fmt.Println("No stores matched the request.")
		return nil
	}

	displayMatrix(result.Matrix)

	if quoteXlsxOut != "" {
		f, err := os.Create(quoteXlsxOut)
		if err != nil {
			return fmt.Errorf("create xlsx file: %w", err)
		}
		defer f.Close()
		if err := export.WriteXLSX(result.Matrix, f); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
		logger.Info().Str("file", quoteXlsxOut).Msg("Matrix exported")
	}

	return nil
}

func displayMatrix(m *quote.Matrix) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)

	fmt.Fprint(w, "MATERIAL\tQTD")
	for _, col := range m.Columns {
		fmt.Fprintf(w, "\t%s", col.StoreName)
	}
	fmt.Fprintln(w)

	for _, row := range m.Rows {
		fmt.Fprintf(w, "%s\t%.0f", row.Name, row.Quantity)
		for _, col := range m.Columns {
			cell, ok := row.Cells[col.StoreID]
			if !ok {
				fmt.Fprint(w, "\t-")
				continue
			}
			mark := ""
			if cell.BestPrice {
				mark = " *"
			}
			fmt.Fprintf(w, "\t%.2f%s", cell.Price, mark)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprint(w, "TOTAL\t")
	for _, col := range m.Columns {
		fmt.Fprintf(w, "\t%.2f", col.TotalPrice)
	}
	fmt.Fprintln(w)

	fmt.Fprint(w, "DISTANCIA (KM)\t")
	for _, col := range m.Columns {
		if col.DistanceKm != nil {
			fmt.Fprintf(w, "\t%.1f", *col.DistanceKm)
		} else {
			fmt.Fprint(w, "\t-")
		}
	}
	fmt.Fprintln(w)

	w.Flush()
}

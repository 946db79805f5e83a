// Package export renders a price comparison matrix as an XLSX workbook
// the buyer can forward to suppliers.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/asapobra/quote-service/internal/quote"
)

const sheetName = "Cotacao"

// WriteXLSX writes the matrix to w as an XLSX workbook: one row per
// material, one price column per store, best prices in bold, totals and
// distances in the footer.
func WriteXLSX(m *quote.Matrix, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), sheetName)

	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	header := []any{"Material", "Qtd", "Unidade"}
	for _, col := range m.Columns {
		header = append(header, col.StoreName)
	}
	if err := writeRow(f, 1, header); err != nil {
		return err
	}
	headerEnd, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheetName, "A1", headerEnd, boldStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	rowIdx := 2
	for _, row := range m.Rows {
		values := []any{row.Name, row.Quantity, row.Unit}
		for _, col := range m.Columns {
			cell, ok := row.Cells[col.StoreID]
			if !ok {
				values = append(values, "-")
				continue
			}
			values = append(values, cell.Price)
		}
		if err := writeRow(f, rowIdx, values); err != nil {
			return err
		}
		for i, col := range m.Columns {
			if cell, ok := row.Cells[col.StoreID]; ok && cell.BestPrice {
				name, _ := excelize.CoordinatesToCellName(4+i, rowIdx)
				if err := f.SetCellStyle(sheetName, name, name, boldStyle); err != nil {
					return fmt.Errorf("style best price: %w", err)
				}
			}
		}
		rowIdx++
	}

	totals := []any{"Total", "", ""}
	distances := []any{"Distancia (km)", "", ""}
	for _, col := range m.Columns {
		totals = append(totals, col.TotalPrice)
		if col.DistanceKm != nil {
			distances = append(distances, *col.DistanceKm)
		} else {
			distances = append(distances, "-")
		}
	}
	if err := writeRow(f, rowIdx, totals); err != nil {
		return err
	}
	if err := writeRow(f, rowIdx+1, distances); err != nil {
		return err
	}

	if err := f.SetColWidth(sheetName, "A", "A", 40); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name for row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

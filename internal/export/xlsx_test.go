package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/asapobra/quote-service/internal/quote"
)

func TestWriteXLSX(t *testing.T) {
	dist := 3.2
	m := &quote.Matrix{
		Columns: []quote.Column{
			{StoreID: "s1", StoreName: "Deposito Alfa", DistanceKm: &dist, TotalPrice: 329, MatchedItems: 1},
			{StoreID: "s2", StoreName: "Beta Materiais", TotalPrice: 417, MatchedItems: 2},
		},
		Rows: []quote.Row{
			{
				Name: "Cimento CP-II 50kg", Unit: "SC", Quantity: 10,
				Cells: map[string]quote.Cell{
					"s1": {Price: 32.90},
					"s2": {Price: 29.90, BestPrice: true},
				},
			},
			{
				Name: "Areia media lavada", Unit: "M3", Quantity: 1,
				Cells: map[string]quote.Cell{
					"s2": {Price: 118.00, BestPrice: true},
				},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(m, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Cotacao")
	require.NoError(t, err)
	require.Len(t, rows, 5)

	assert.Equal(t, []string{"Material", "Qtd", "Unidade", "Deposito Alfa", "Beta Materiais"}, rows[0])
	assert.Equal(t, "Cimento CP-II 50kg", rows[1][0])
	assert.Equal(t, "29.9", rows[1][4])
	assert.Equal(t, "-", rows[2][3], "missing offer renders as a dash")
	assert.Equal(t, "Total", rows[3][0])
	assert.Equal(t, "417", rows[3][4])
	assert.Equal(t, "3.2", rows[4][3])
	assert.Equal(t, "-", rows[4][4])
}

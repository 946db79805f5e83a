package quote

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/asapobra/quote-service/internal/catalog"
)

// BuildInput carries everything the matrix builder needs. StoreIDs is the
// ranked selection; Requested is the explicit material list and may be
// empty for free-text or category quotes.
type BuildInput struct {
	Listings    []AnnotatedListing
	StoreIDs    []string
	Requested   []catalog.Material
	Suggestions []Suggestion
	Order       Order
}

type rowSpec struct {
	materialID *int64
	name       string
	foldedName string
	unit       string
	samples    []AnnotatedListing
}

// BuildMatrix pivots listings into a material x store grid. Each cell is
// the store's cheapest valid offer for the row; the cheapest cell of a row
// is marked best, ties included. Requested materials keep a row even when
// no store carries them; rows derived from unrequested listings are kept
// only when at least one store has a valid price.
//
// A selected store id with no listing in the input is a caller bug and
// returns an error instead of a silently empty column.
func BuildMatrix(in BuildInput) (*Matrix, error) {
	byStore := make(map[string][]AnnotatedListing, len(in.StoreIDs))
	for _, l := range in.Listings {
		key := storeKey(l.StoreID)
		byStore[key] = append(byStore[key], l)
	}

	columns := make([]Column, 0, len(in.StoreIDs))
	colIndex := make(map[string]int, len(in.StoreIDs))
	for _, id := range in.StoreIDs {
		group, ok := byStore[storeKey(id)]
		if !ok {
			return nil, fmt.Errorf("store %q selected but absent from listings", id)
		}
		first := group[0]
		colIndex[storeKey(id)] = len(columns)
		columns = append(columns, Column{
			StoreID:     first.StoreID,
			StoreName:   first.StoreName,
			ContactLink: ContactLink(first.ContactHandle),
			DistanceKm:  first.DistanceKm,
		})
	}

	specs := buildRows(in)

	quantities := make(map[int64]Suggestion, len(in.Suggestions))
	for _, s := range in.Suggestions {
		quantities[s.MaterialID] = s
	}

	rows := make([]Row, 0, len(specs))
	for _, spec := range specs {
		row := Row{
			MaterialID: spec.materialID,
			Name:       spec.name,
			Unit:       spec.unit,
			Quantity:   1,
			Cells:      map[string]Cell{},
		}
		if spec.materialID != nil {
			if s, ok := quantities[*spec.materialID]; ok && s.Quantity > 0 {
				row.Quantity = s.Quantity
				row.Rationale = s.Rationale
			}
		}

		for _, sample := range spec.samples {
			key := storeKey(sample.StoreID)
			idx, selected := colIndex[key]
			if !selected {
				continue
			}
			if !validPrice(sample.Price) {
				log.Debug().Str("listing_id", sample.ID).Float64("price", sample.Price).
					Msg("dropping listing with invalid price")
				continue
			}
			storeID := columns[idx].StoreID
			if cur, ok := row.Cells[storeID]; !ok || sample.Price < cur.Price {
				row.Cells[storeID] = Cell{Price: sample.Price, ListingID: sample.ID}
			}
		}

		if len(row.Cells) == 0 {
			if spec.materialID == nil || !requestedID(in.Requested, *spec.materialID) {
				continue
			}
			rows = append(rows, row)
			continue
		}

		best := math.Inf(1)
		for _, cell := range row.Cells {
			if cell.Price < best {
				best = cell.Price
			}
		}
		for storeID, cell := range row.Cells {
			cell.BestPrice = cell.Price == best
			row.Cells[storeID] = cell

			idx := colIndex[storeKey(storeID)]
			columns[idx].TotalPrice += cell.Price * row.Quantity
			columns[idx].MatchedItems++
		}
		rows = append(rows, row)
	}

	sortColumns(columns, in.Order)
	return &Matrix{Columns: columns, Rows: rows}, nil
}

// buildRows decides the grid's rows. With an explicit material list each
// requested material is a row and listings attach by id, or failing that
// by folded-name containment; a listing whose name matches several
// requested materials goes to the one with the longest name, the most
// specific match. Without a request the rows are the distinct materials
// seen in the listings, with unlinked listings grouped by folded name.
func buildRows(in BuildInput) []rowSpec {
	if len(in.Requested) > 0 {
		specs := make([]rowSpec, len(in.Requested))
		for i, m := range in.Requested {
			id := m.ID
			specs[i] = rowSpec{materialID: &id, name: m.Name, foldedName: foldName(m.Name), unit: m.Unit}
		}
		for _, l := range in.Listings {
			if idx := matchRequested(specs, l); idx >= 0 {
				specs[idx].samples = append(specs[idx].samples, l)
			}
		}
		return specs
	}

	var specs []rowSpec
	index := map[string]int{}
	for _, l := range in.Listings {
		var key string
		if l.MaterialID != nil {
			key = "m:" + strconv.FormatInt(*l.MaterialID, 10)
		} else {
			key = "n:" + foldName(l.Name)
		}
		idx, ok := index[key]
		if !ok {
			idx = len(specs)
			index[key] = idx
			specs = append(specs, rowSpec{materialID: l.MaterialID, name: l.Name, unit: l.Unit})
		}
		specs[idx].samples = append(specs[idx].samples, l)
	}
	sort.SliceStable(specs, func(i, j int) bool { return foldName(specs[i].name) < foldName(specs[j].name) })
	return specs
}

// matchRequested finds the requested row a listing belongs to. An id link
// is authoritative; it either hits a requested row or disqualifies the
// listing entirely.
func matchRequested(specs []rowSpec, l AnnotatedListing) int {
	if l.MaterialID != nil {
		for i, spec := range specs {
			if spec.materialID != nil && *spec.materialID == *l.MaterialID {
				return i
			}
		}
		return -1
	}

	folded := foldName(l.Name)
	best := -1
	for i, spec := range specs {
		if spec.foldedName == "" || !strings.Contains(folded, spec.foldedName) {
			continue
		}
		if best < 0 || len(spec.foldedName) > len(specs[best].foldedName) {
			best = i
		}
	}
	return best
}

func requestedID(requested []catalog.Material, id int64) bool {
	for _, m := range requested {
		if m.ID == id {
			return true
		}
	}
	return false
}

func validPrice(p float64) bool {
	return p > 0 && !math.IsInf(p, 1) && !math.IsNaN(p)
}

func sortColumns(columns []Column, order Order) {
	switch order {
	case OrderByDistance:
		sort.SliceStable(columns, func(i, j int) bool {
			di, dj := math.Inf(1), math.Inf(1)
			if columns[i].DistanceKm != nil {
				di = *columns[i].DistanceKm
			}
			if columns[j].DistanceKm != nil {
				dj = *columns[j].DistanceKm
			}
			return di < dj
		})
	default:
		sort.SliceStable(columns, func(i, j int) bool {
			return columns[i].TotalPrice < columns[j].TotalPrice
		})
	}
}

// Package quote builds cross-store price comparison matrices: it joins
// resolved listings with store locations, picks the nearest stores and
// pivots the listings into a material x store grid with best-price marks
// and per-store totals.
package quote

import (
	"context"

	"github.com/asapobra/quote-service/internal/catalog"
	"github.com/asapobra/quote-service/internal/geo"
)

// CatalogSource is the read boundary the quote pipeline depends on.
// Implemented by catalog.PostgresCatalog; tests substitute fixtures.
type CatalogSource interface {
	ResolveListings(ctx context.Context, f catalog.ListingFilter) ([]catalog.Listing, error)
	ListStores(ctx context.Context) ([]catalog.Store, error)
	GetMaterials(ctx context.Context, ids []int64) ([]catalog.Material, error)
}

// Reason explains an empty or degraded quote result so the caller can
// distinguish "nothing nearby" from "the catalog was unreachable".
type Reason string

const (
	ReasonOK            Reason = "ok"
	ReasonOutOfRange    Reason = "out_of_range"
	ReasonUpstreamError Reason = "upstream_error"
)

// Order selects how the matrix columns are sorted.
type Order int

const (
	// OrderByTotal sorts columns by total quoted price, cheapest first.
	OrderByTotal Order = iota
	// OrderByDistance sorts columns by distance, nearest first. Columns
	// without a known distance sort last.
	OrderByDistance
)

// AnnotatedListing is a listing joined with its store's identity and the
// distance from the buyer. DistanceKm is nil when either location is
// unknown or undecodable.
type AnnotatedListing struct {
	catalog.Listing

	StoreName     string
	ContactHandle string
	DistanceKm    *float64
}

// Suggestion carries a planner-proposed quantity for one material. The
// quantity multiplies that material's price in the per-store totals.
type Suggestion struct {
	MaterialID int64   `json:"materialId"`
	Quantity   float64 `json:"quantity"`
	Rationale  string  `json:"rationale,omitempty"`
}

// Cell is one store's offer for one matrix row. A store with several
// matching listings contributes only its cheapest one.
type Cell struct {
	Price     float64 `json:"price"`
	ListingID string  `json:"listingId"`
	BestPrice bool    `json:"bestPrice"`
}

// Row is one material of the comparison grid. MaterialID is nil for rows
// grouped from free-text listings that are not linked to the master
// catalog. Cells is keyed by store id; a missing key means unavailable.
type Row struct {
	MaterialID *int64          `json:"materialId,omitempty"`
	Name       string          `json:"name"`
	Unit       string          `json:"unit"`
	Quantity   float64         `json:"quantity"`
	Rationale  string          `json:"rationale,omitempty"`
	Cells      map[string]Cell `json:"cells"`
}

// Column is one store of the comparison grid with its accumulated totals.
// TotalPrice sums price times quantity over the rows the store carries.
type Column struct {
	StoreID      string   `json:"storeId"`
	StoreName    string   `json:"storeName"`
	ContactLink  string   `json:"contactLink,omitempty"`
	DistanceKm   *float64 `json:"distanceKm,omitempty"`
	TotalPrice   float64  `json:"totalPrice"`
	MatchedItems int      `json:"matchedItems"`
}

// Matrix is the pivoted comparison grid. Columns carry the sort order;
// rows keep the requested-material order.
type Matrix struct {
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Request describes one quote. Exactly one of MaterialIDs, Category or
// Terms should be set; when several are, ids win over category over terms.
type Request struct {
	MaterialIDs []int64      `json:"materialIds,omitempty"`
	Category    string       `json:"category,omitempty"`
	Terms       []string     `json:"terms,omitempty"`
	Location    *geo.Point   `json:"-"`
	RadiusKm    float64      `json:"radiusKm,omitempty"`
	StoreLimit  int          `json:"storeLimit,omitempty"`
	Order       Order        `json:"-"`
	Suggestions []Suggestion `json:"suggestions,omitempty"`
}

// Result is the outcome of a quote. Matrix is never nil; on a degraded
// outcome it is empty and Reason says why.
type Result struct {
	Matrix *Matrix `json:"matrix"`
	Reason Reason  `json:"reason"`
}

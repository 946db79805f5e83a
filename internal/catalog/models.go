// Package catalog provides read and write access to the master material
// catalog, the registered stores and their price listings.
package catalog

import "strings"

// Material is one entry of the master reference catalog. Listings may link
// to a material by id; free-text listings are matched by name downstream.
type Material struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Unit     string `json:"unit"`
	Active   bool   `json:"active"`
}

// Store is a registered merchant store. RawLocation is kept opaque: the
// column has carried WKT, hex EWKB and JSON objects over time and only the
// geo parser decides what it means.
type Store struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	ContactHandle string  `json:"contactHandle"`
	RawLocation   any     `json:"-"`
	Address       *string `json:"address,omitempty"`
}

// Listing is one store's offer for one item. MaterialID is nil for free-text
// listings the merchant never associated with the master catalog.
type Listing struct {
	ID         string   `json:"id"`
	StoreID    string   `json:"storeId"`
	MaterialID *int64   `json:"materialId,omitempty"`
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	Price      float64  `json:"price"`
	Unit       string   `json:"unit"`
}

// FilterKind identifies which single criterion a listing query uses.
type FilterKind int

const (
	FilterNone FilterKind = iota
	FilterMaterialIDs
	FilterCategory
	FilterTerms
)

// ListingFilter selects listings by exactly one criterion. When several are
// set, material ids take precedence over category, which takes precedence
// over free-text terms; callers should pass one kind.
type ListingFilter struct {
	MaterialIDs []int64
	Category    string
	Terms       []string
}

// catch-all category values that must not trigger a full scan
var wildcardCategories = map[string]struct{}{
	"todos": {},
	"all":   {},
}

// Kind resolves the filter precedence. FilterNone means the query would be
// unbounded and must return an empty result instead of the whole catalog.
func (f ListingFilter) Kind() FilterKind {
	if len(f.MaterialIDs) > 0 {
		return FilterMaterialIDs
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		if _, wildcard := wildcardCategories[strings.ToLower(c)]; !wildcard {
			return FilterCategory
		}
	}
	if len(f.CleanTerms()) > 0 {
		return FilterTerms
	}
	return FilterNone
}

// CleanTerms trims the free-text terms and drops the single-character ones
// that would match most of the table.
func (f ListingFilter) CleanTerms() []string {
	terms := make([]string, 0, len(f.Terms))
	for _, t := range f.Terms {
		t = strings.TrimSpace(t)
		if len(t) > 1 {
			terms = append(terms, t)
		}
	}
	return terms
}

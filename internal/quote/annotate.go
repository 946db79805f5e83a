package quote

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/asapobra/quote-service/internal/catalog"
	"github.com/asapobra/quote-service/internal/geo"
)

type storeInfo struct {
	name          string
	contactHandle string
	distanceKm    *float64
}

// Annotate joins listings with their store's name, contact handle and the
// distance from the buyer. Store ids are compared case-insensitively since
// older rows were written with mixed casing. Listings whose store is not
// registered are kept with an unknown distance rather than dropped.
func Annotate(listings []catalog.Listing, stores []catalog.Store, buyer *geo.Point) []AnnotatedListing {
	index := make(map[string]storeInfo, len(stores))
	for _, s := range stores {
		info := storeInfo{name: s.Name, contactHandle: s.ContactHandle}
		point := geo.ParsePoint(s.RawLocation)
		if point == nil && s.RawLocation != nil {
			log.Debug().Str("store_id", s.ID).Msg("store location undecodable, distance unknown")
		}
		if d, ok := geo.DistanceKm(buyer, point); ok {
			dist := d
			info.distanceKm = &dist
		}
		index[storeKey(s.ID)] = info
	}

	annotated := make([]AnnotatedListing, 0, len(listings))
	for _, l := range listings {
		a := AnnotatedListing{Listing: l, StoreName: l.StoreID}
		if info, ok := index[storeKey(l.StoreID)]; ok {
			a.StoreName = info.name
			a.ContactHandle = info.contactHandle
			a.DistanceKm = info.distanceKm
		}
		annotated = append(annotated, a)
	}
	return annotated
}

func storeKey(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

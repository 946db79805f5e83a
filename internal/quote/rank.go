package quote

import "sort"

// SelectStores picks which stores enter the matrix. When the buyer's
// location is known, stores with an unknown or undecodable location are
// dropped and the rest are filtered to radiusKm (0 disables the radius)
// and sorted nearest first. Without a buyer location every store that has
// a matching listing qualifies and the resolver order is kept. At most
// limit stores are returned; limit <= 0 means no cap.
func SelectStores(listings []AnnotatedListing, hasBuyer bool, radiusKm float64, limit int) []string {
	type candidate struct {
		id         string
		distanceKm *float64
	}

	seen := make(map[string]struct{}, len(listings))
	candidates := make([]candidate, 0, len(listings))
	for _, l := range listings {
		key := storeKey(l.StoreID)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		candidates = append(candidates, candidate{id: l.StoreID, distanceKm: l.DistanceKm})
	}

	if hasBuyer {
		kept := candidates[:0]
		for _, c := range candidates {
			if c.distanceKm == nil {
				continue
			}
			if radiusKm > 0 && *c.distanceKm > radiusKm {
				continue
			}
			kept = append(kept, c)
		}
		candidates = kept
		sort.SliceStable(candidates, func(i, j int) bool {
			return *candidates[i].distanceKm < *candidates[j].distanceKm
		})
	}

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.id
	}
	return ids
}

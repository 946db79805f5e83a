// Package geo provides validated geographic points and great-circle distance
// computation for store proximity ranking.
package geo

import (
	"fmt"
	"math"
)

// Point is a validated latitude/longitude pair. A Point can only be obtained
// through NewPoint or ParsePoint, so downstream code never sees out-of-range
// or sentinel coordinates.
type Point struct {
	lat float64
	lng float64
}

// NewPoint validates coordinates and returns a Point.
// The (0,0) pair is rejected: historically it marked a failed location parse,
// never a real store.
func NewPoint(lat, lng float64) (Point, error) {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return Point{}, fmt.Errorf("non-finite coordinates (%v, %v)", lat, lng)
	}
	if lat < -90 || lat > 90 {
		return Point{}, fmt.Errorf("latitude %v out of range", lat)
	}
	if lng < -180 || lng > 180 {
		return Point{}, fmt.Errorf("longitude %v out of range", lng)
	}
	if lat == 0 && lng == 0 {
		return Point{}, fmt.Errorf("zero coordinates are treated as missing data")
	}
	return Point{lat: lat, lng: lng}, nil
}

// Lat returns the latitude in degrees.
func (p Point) Lat() float64 { return p.lat }

// Lng returns the longitude in degrees.
func (p Point) Lng() float64 { return p.lng }

// WKT renders the point as "POINT(lng lat)" well-known text.
func (p Point) WKT() string {
	return fmt.Sprintf("POINT(%v %v)", p.lng, p.lat)
}

// EWKT renders the point with the SRID 4326 prefix used by the store table.
func (p Point) EWKT() string {
	return fmt.Sprintf("SRID=4326;POINT(%v %v)", p.lng, p.lat)
}

// DistanceKm calculates the great-circle distance between two points in
// kilometers using the haversine formula. Either point being nil means the
// location is unknown and no distance exists; ok is false in that case.
func DistanceKm(a, b *Point) (float64, bool) {
	if a == nil || b == nil {
		return 0, false
	}
	const R = 6371.0 // Earth radius km
	dLat := toRad(b.lat - a.lat)
	dLng := toRad(b.lng - a.lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.lat))*math.Cos(toRad(b.lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return R * c, true
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

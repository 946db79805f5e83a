package geo

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

var (
	wktParensRe = regexp.MustCompile(`\(([^)]+)\)`)
	hexRe       = regexp.MustCompile(`^[0-9A-Fa-f]+$`)
)

// ParsePoint decodes a stored location value into a Point.
//
// The location column has gone through several incompatible encodings over
// the life of the product, so the decoders are tried in priority order:
//
//  1. A structured object carrying numeric lat/lng fields, or a GeoJSON
//     geometry whose coordinates array is [lng, lat].
//  2. Well-known text "POINT(lng lat)", with or without an "SRID=...;" prefix.
//  3. Hex EWKB as returned by PostGIS: the last 32 hex characters are two
//     little-endian float64 values, longitude then latitude.
//
// ParsePoint never fails loudly. Anything unrecognized, malformed, or out of
// coordinate range yields nil, which downstream code treats as "location
// unknown". Decoded values are range-checked before acceptance because a
// wrong byte offset in the hex path produces astronomically invalid numbers.
func ParsePoint(raw any) *Point {
	if raw == nil {
		return nil
	}

	switch v := raw.(type) {
	case Point:
		return &v
	case *Point:
		return v
	case map[string]any:
		if p := parseObject(v); p != nil {
			return p
		}
		return nil
	case string:
		return parseString(v)
	case []byte:
		return parseString(string(v))
	}

	log.Debug().Type("location", raw).Msg("unrecognized location encoding")
	return nil
}

func parseObject(obj map[string]any) *Point {
	lat, latOK := toFloat(obj["lat"])
	lng, lngOK := toFloat(obj["lng"])
	if latOK && lngOK {
		return checked(lat, lng)
	}

	// GeoJSON geometry: coordinates are [longitude, latitude]
	if coords, ok := obj["coordinates"].([]any); ok && len(coords) >= 2 {
		lng, lngOK = toFloat(coords[0])
		lat, latOK = toFloat(coords[1])
		if latOK && lngOK {
			return checked(lat, lng)
		}
	}
	return nil
}

func parseString(s string) *Point {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	// "SRID=4326;POINT(...)" and plain "POINT(...)" both occur in the data
	if strings.Contains(strings.ToUpper(s), "POINT") {
		return parseWKT(s)
	}

	if len(s) >= 32 && hexRe.MatchString(s) {
		return parseHexEWKB(s)
	}

	log.Debug().Str("location", s).Msg("unparseable location string")
	return nil
}

func parseWKT(s string) *Point {
	m := wktParensRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	parts := strings.Fields(strings.TrimSpace(m[1]))
	if len(parts) < 2 {
		return nil
	}
	lng, err1 := strconv.ParseFloat(parts[0], 64)
	lat, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil {
		return nil
	}
	return checked(lat, lng)
}

// parseHexEWKB extracts the coordinate pair from a hex-encoded EWKB point.
// The leading bytes are byte order, geometry type and SRID; only the fixed
// 16-byte tail (longitude float64, latitude float64, little-endian) matters.
func parseHexEWKB(s string) *Point {
	tail := s[len(s)-32:]
	buf, err := hex.DecodeString(tail)
	if err != nil {
		return nil
	}
	lng := math.Float64frombits(binary.LittleEndian.Uint64(buf[0:8]))
	lat := math.Float64frombits(binary.LittleEndian.Uint64(buf[8:16]))
	return checked(lat, lng)
}

func checked(lat, lng float64) *Point {
	p, err := NewPoint(lat, lng)
	if err != nil {
		log.Debug().Err(err).Msg("rejected decoded coordinates")
		return nil
	}
	return &p
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

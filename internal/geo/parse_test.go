package geo

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hexEWKBPoint builds the hex EWKB representation PostGIS returns for a
// SRID 4326 point: byte order + type + SRID header, then lng and lat as
// little-endian float64.
func hexEWKBPoint(lat, lng float64) string {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf[0:8], math.Float64bits(lng))
	binary.LittleEndian.PutUint64(buf[8:16], math.Float64bits(lat))
	return "0101000020E6100000" + hex.EncodeToString(buf)
}

func TestParsePointWKTRoundTrip(t *testing.T) {
	points := []struct{ lat, lng float64 }{
		{-23.55052, -46.633308},
		{45.815, 15.9819},
		{-0.000001, 0.000001},
		{89.999999, -179.999999},
	}

	for _, c := range points {
		t.Run(fmt.Sprintf("%v_%v", c.lat, c.lng), func(t *testing.T) {
			orig, err := NewPoint(c.lat, c.lng)
			require.NoError(t, err)

			parsed := ParsePoint(orig.WKT())
			require.NotNil(t, parsed)
			assert.InDelta(t, c.lat, parsed.Lat(), 1e-6)
			assert.InDelta(t, c.lng, parsed.Lng(), 1e-6)
		})
	}
}

func TestParsePointVariants(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		wantLat float64
		wantLng float64
		wantNil bool
	}{
		{
			name:    "object with lat lng",
			raw:     map[string]any{"lat": -23.5505, "lng": -46.6333},
			wantLat: -23.5505, wantLng: -46.6333,
		},
		{
			name:    "object with string coordinates",
			raw:     map[string]any{"lat": "-23.5505", "lng": "-46.6333"},
			wantLat: -23.5505, wantLng: -46.6333,
		},
		{
			name:    "geojson coordinates are lng first",
			raw:     map[string]any{"type": "Point", "coordinates": []any{-46.6333, -23.5505}},
			wantLat: -23.5505, wantLng: -46.6333,
		},
		{
			name:    "plain wkt",
			raw:     "POINT(-46.633308 -23.55052)",
			wantLat: -23.55052, wantLng: -46.633308,
		},
		{
			name:    "ewkt with srid prefix",
			raw:     "SRID=4326;POINT(-46.633308 -23.55052)",
			wantLat: -23.55052, wantLng: -46.633308,
		},
		{
			name:    "hex ewkb",
			raw:     hexEWKBPoint(-23.55052, -46.633308),
			wantLat: -23.55052, wantLng: -46.633308,
		},
		{name: "nil input", raw: nil, wantNil: true},
		{name: "empty string", raw: "", wantNil: true},
		{name: "garbage string", raw: "not a location", wantNil: true},
		{name: "wkt with non numeric tokens", raw: "POINT(abc def)", wantNil: true},
		{name: "zero sentinel wkt", raw: "POINT(0 0)", wantNil: true},
		{name: "object missing lng", raw: map[string]any{"lat": 1.0}, wantNil: true},
		{name: "unsupported type", raw: 42, wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ParsePoint(tt.raw)
			if tt.wantNil {
				assert.Nil(t, p)
				return
			}
			require.NotNil(t, p)
			assert.InDelta(t, tt.wantLat, p.Lat(), 1e-6)
			assert.InDelta(t, tt.wantLng, p.Lng(), 1e-6)
		})
	}
}

func TestParsePointRejectsOutOfRangeHex(t *testing.T) {
	// A hex string of the wrong shape decodes to nonsense coordinates.
	// The range check must turn that into "location unknown", never a
	// clamped or wrapped value.
	t.Run("latitude out of range", func(t *testing.T) {
		assert.Nil(t, ParsePoint(hexEWKBPoint(914.2, -46.6)))
	})
	t.Run("longitude out of range", func(t *testing.T) {
		assert.Nil(t, ParsePoint(hexEWKBPoint(-23.5, 320.9)))
	})
	t.Run("truncated hex payload", func(t *testing.T) {
		full := hexEWKBPoint(-23.55052, -46.633308)
		// Dropping bytes shifts the 16-byte tail onto the wrong offset
		assert.Nil(t, ParsePoint(full[:len(full)-8]))
	})
	t.Run("zero coordinates decode as missing", func(t *testing.T) {
		assert.Nil(t, ParsePoint(hexEWKBPoint(0, 0)))
	})
}

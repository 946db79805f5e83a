package quote

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asapobra/quote-service/internal/catalog"
	"github.com/asapobra/quote-service/internal/geo"
)

type fakeCatalog struct {
	listings  []catalog.Listing
	stores    []catalog.Store
	materials []catalog.Material
	err       error

	gotFilter catalog.ListingFilter
}

func (f *fakeCatalog) ResolveListings(_ context.Context, filter catalog.ListingFilter) ([]catalog.Listing, error) {
	f.gotFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	if filter.Kind() == catalog.FilterNone {
		return []catalog.Listing{}, nil
	}
	return f.listings, nil
}

func (f *fakeCatalog) ListStores(context.Context) ([]catalog.Store, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stores, nil
}

func (f *fakeCatalog) GetMaterials(_ context.Context, ids []int64) ([]catalog.Material, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []catalog.Material{}
	for _, m := range f.materials {
		for _, id := range ids {
			if m.ID == id {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

func wkt(lat, lng float64) string {
	p, err := geo.NewPoint(lat, lng)
	if err != nil {
		panic(err)
	}
	return p.WKT()
}

func buyerAt(t *testing.T, lat, lng float64) *geo.Point {
	t.Helper()
	p, err := geo.NewPoint(lat, lng)
	require.NoError(t, err)
	return &p
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		stores: []catalog.Store{
			{ID: "s1", Name: "Deposito Alfa", ContactHandle: "alfa", RawLocation: wkt(-23.552, -46.634)},
			{ID: "s2", Name: "Beta Materiais", ContactHandle: "beta", RawLocation: wkt(-23.58, -46.70)},
			{ID: "s3", Name: "Longe Construcoes", ContactHandle: "longe", RawLocation: wkt(-22.90, -43.20)},
		},
		materials: []catalog.Material{
			{ID: 1, Name: "Cimento CP-II 50kg", Unit: "SC", Active: true},
			{ID: 2, Name: "Areia media lavada", Unit: "M3", Active: true},
		},
		listings: []catalog.Listing{
			{ID: "l1", StoreID: "s1", MaterialID: i64(1), Name: "Cimento CP-II 50kg", Price: 32.90, Unit: "SC"},
			{ID: "l2", StoreID: "s2", MaterialID: i64(1), Name: "Cimento CP-II 50kg", Price: 29.90, Unit: "SC"},
			{ID: "l3", StoreID: "s2", MaterialID: i64(2), Name: "Areia media lavada", Price: 118.00, Unit: "M3"},
			{ID: "l4", StoreID: "s3", MaterialID: i64(1), Name: "Cimento CP-II 50kg", Price: 25.00, Unit: "SC"},
		},
	}
}

func TestQuoteHappyPath(t *testing.T) {
	svc := NewService(newFakeCatalog(), Options{})

	res, err := svc.Quote(context.Background(), Request{
		MaterialIDs: []int64{1, 2},
		Location:    buyerAt(t, -23.55052, -46.633308),
		RadiusKm:    30,
		Suggestions: []Suggestion{{MaterialID: 1, Quantity: 10}},
	})
	require.NoError(t, err)
	assert.Equal(t, ReasonOK, res.Reason)

	// s3 is in Rio, far outside the 30 km radius
	require.Len(t, res.Matrix.Columns, 2)
	for _, c := range res.Matrix.Columns {
		assert.NotEqual(t, "s3", c.StoreID)
	}

	// s2 carries both materials: 10*29.90 + 1*118.00
	byID := map[string]Column{}
	for _, c := range res.Matrix.Columns {
		byID[c.StoreID] = c
	}
	assert.InDelta(t, 417.0, byID["s2"].TotalPrice, 1e-9)
	assert.Equal(t, 2, byID["s2"].MatchedItems)
	assert.InDelta(t, 329.0, byID["s1"].TotalPrice, 1e-9)
	assert.Equal(t, "contact://beta", byID["s2"].ContactLink)

	require.Len(t, res.Matrix.Rows, 2)
	assert.True(t, res.Matrix.Rows[0].Cells["s2"].BestPrice)
	assert.False(t, res.Matrix.Rows[0].Cells["s1"].BestPrice)
}

func TestQuoteOutOfRange(t *testing.T) {
	svc := NewService(newFakeCatalog(), Options{})

	res, err := svc.Quote(context.Background(), Request{
		MaterialIDs: []int64{1},
		Location:    buyerAt(t, -23.95, -46.98),
		RadiusKm:    5,
	})
	require.NoError(t, err)
	assert.Equal(t, ReasonOutOfRange, res.Reason)
	assert.Empty(t, res.Matrix.Columns)
	assert.Empty(t, res.Matrix.Rows)
}

func TestQuoteUpstreamError(t *testing.T) {
	svc := NewService(&fakeCatalog{err: errors.New("connection refused")}, Options{})

	res, err := svc.Quote(context.Background(), Request{Terms: []string{"cimento"}})
	require.NoError(t, err, "catalog failures degrade, they do not error")
	assert.Equal(t, ReasonUpstreamError, res.Reason)
	assert.Empty(t, res.Matrix.Columns)
}

func TestQuoteEmptyFilterYieldsEmptyMatrix(t *testing.T) {
	fake := newFakeCatalog()
	svc := NewService(fake, Options{})

	res, err := svc.Quote(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, ReasonOK, res.Reason)
	assert.Empty(t, res.Matrix.Columns)
	assert.Equal(t, catalog.FilterNone, fake.gotFilter.Kind())
}

func TestQuoteWithoutLocationKeepsAllStores(t *testing.T) {
	svc := NewService(newFakeCatalog(), Options{})

	res, err := svc.Quote(context.Background(), Request{
		MaterialIDs: []int64{1},
		StoreLimit:  10,
	})
	require.NoError(t, err)
	assert.Equal(t, ReasonOK, res.Reason)
	assert.Len(t, res.Matrix.Columns, 3)
	// cheapest total first: s3 sells cement at 25.00
	assert.Equal(t, "s3", res.Matrix.Columns[0].StoreID)
}

func TestQuoteStoreLimitCapped(t *testing.T) {
	svc := NewService(newFakeCatalog(), Options{MaxStoreLimit: 2})

	res, err := svc.Quote(context.Background(), Request{
		MaterialIDs: []int64{1},
		StoreLimit:  50,
	})
	require.NoError(t, err)
	assert.Len(t, res.Matrix.Columns, 2)
}

func TestContactLink(t *testing.T) {
	assert.Equal(t, "contact://alfa", ContactLink("alfa"))
	assert.Equal(t, "", ContactLink(""))
}

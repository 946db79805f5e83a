package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asapobra/quote-service/internal/catalog"
	"github.com/asapobra/quote-service/internal/geo"
)

func atKm(l AnnotatedListing, km float64) AnnotatedListing {
	l.DistanceKm = &km
	return l
}

func TestSelectStoresRadiusAndOrder(t *testing.T) {
	listings := []AnnotatedListing{
		atKm(listing("l1", "far", i64(1), "Cimento", 30), 42),
		atKm(listing("l2", "near", i64(1), "Cimento", 31), 3.2),
		atKm(listing("l3", "mid", i64(1), "Cimento", 29), 12.7),
		listing("l4", "nowhere", i64(1), "Cimento", 25), // unknown distance
		atKm(listing("l5", "near", i64(2), "Areia", 120), 3.2),
	}

	got := SelectStores(listings, true, 20, 0)
	assert.Equal(t, []string{"near", "mid"}, got)
}

func TestSelectStoresLimit(t *testing.T) {
	listings := []AnnotatedListing{
		atKm(listing("l1", "a", i64(1), "Cimento", 30), 9),
		atKm(listing("l2", "b", i64(1), "Cimento", 30), 1),
		atKm(listing("l3", "c", i64(1), "Cimento", 30), 5),
	}

	got := SelectStores(listings, true, 0, 2)
	assert.Equal(t, []string{"b", "c"}, got)
}

func TestSelectStoresWithoutBuyerKeepsUnknownDistances(t *testing.T) {
	listings := []AnnotatedListing{
		listing("l1", "a", i64(1), "Cimento", 30),
		atKm(listing("l2", "b", i64(1), "Cimento", 30), 7),
	}

	got := SelectStores(listings, false, 20, 10)
	assert.Equal(t, []string{"a", "b"}, got, "resolver order kept when no location is given")
}

func TestSelectStoresEmptyWhenAllOutOfRange(t *testing.T) {
	listings := []AnnotatedListing{
		atKm(listing("l1", "a", i64(1), "Cimento", 30), 80),
	}
	assert.Empty(t, SelectStores(listings, true, 20, 10))
}

func TestAnnotateDistancesAndUnknownStores(t *testing.T) {
	buyer, err := geo.NewPoint(-23.55052, -46.633308)
	require.NoError(t, err)

	stores := []catalog.Store{
		{ID: "A", Name: "Deposito Centro", ContactHandle: "deposito-centro",
			RawLocation: "POINT(-46.64 -23.56)"},
		{ID: "b", Name: "Sem Local"},
	}
	listings := []catalog.Listing{
		{ID: "l1", StoreID: "a", Name: "Cimento", Price: 30},
		{ID: "l2", StoreID: "b", Name: "Cimento", Price: 28},
		{ID: "l3", StoreID: "orphan", Name: "Cimento", Price: 26},
	}

	got := Annotate(listings, stores, &buyer)
	require.Len(t, got, 3)

	assert.Equal(t, "Deposito Centro", got[0].StoreName, "store ids match case-insensitively")
	require.NotNil(t, got[0].DistanceKm)
	assert.InDelta(t, 1.25, *got[0].DistanceKm, 0.3)

	assert.Equal(t, "Sem Local", got[1].StoreName)
	assert.Nil(t, got[1].DistanceKm)

	assert.Equal(t, "orphan", got[2].StoreName, "unregistered store falls back to its id")
	assert.Nil(t, got[2].DistanceKm)
}

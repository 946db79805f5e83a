package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asapobra/quote-service/internal/catalog"
	"github.com/asapobra/quote-service/internal/quote"
)

type stubCatalog struct{}

func (stubCatalog) ResolveListings(_ context.Context, f catalog.ListingFilter) ([]catalog.Listing, error) {
	if f.Kind() == catalog.FilterNone {
		return []catalog.Listing{}, nil
	}
	one := int64(1)
	return []catalog.Listing{
		{ID: "l1", StoreID: "s1", MaterialID: &one, Name: "Cimento CP-II 50kg", Price: 31.90, Unit: "SC"},
		{ID: "l2", StoreID: "s2", MaterialID: &one, Name: "Cimento CP-II 50kg", Price: 29.50, Unit: "SC"},
	}, nil
}

func (stubCatalog) ListStores(context.Context) ([]catalog.Store, error) {
	return []catalog.Store{
		{ID: "s1", Name: "Deposito Alfa", ContactHandle: "alfa", RawLocation: "POINT(-46.64 -23.56)"},
		{ID: "s2", Name: "Beta Materiais", ContactHandle: "beta", RawLocation: "POINT(-46.62 -23.54)"},
	}, nil
}

func (stubCatalog) GetMaterials(_ context.Context, ids []int64) ([]catalog.Material, error) {
	return []catalog.Material{{ID: 1, Name: "Cimento CP-II 50kg", Unit: "SC", Active: true}}, nil
}

func quoteRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	InitQuoteService(quote.NewService(stubCatalog{}, quote.Options{}))
	r := gin.New()
	r.POST("/internal/quotes", BuildQuote)
	r.POST("/internal/quotes/export", ExportQuote)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBuildQuoteEndpoint(t *testing.T) {
	r := quoteRouter()

	w := postJSON(t, r, "/internal/quotes", QuoteRequest{
		MaterialIDs: []int64{1},
		Location:    &Location{Latitude: -23.55052, Longitude: -46.633308},
		RadiusKm:    30,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp QuoteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, quote.ReasonOK, resp.Reason)
	require.Len(t, resp.Columns, 2)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "contact://beta", resp.Columns[0].ContactLink, "cheapest store first")
	assert.True(t, resp.Rows[0].Cells["s2"].BestPrice)
}

func TestBuildQuoteRejectsInvalidLocation(t *testing.T) {
	r := quoteRouter()

	w := postJSON(t, r, "/internal/quotes", map[string]any{
		"materialIds": []int64{1},
		"location":    map[string]float64{"latitude": 914.2, "longitude": -46.6},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBuildQuoteEmptyFilter(t *testing.T) {
	r := quoteRouter()

	w := postJSON(t, r, "/internal/quotes", QuoteRequest{})
	require.Equal(t, http.StatusOK, w.Code)

	var resp QuoteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, quote.ReasonOK, resp.Reason)
	assert.Empty(t, resp.Columns)
}

func TestExportQuoteEndpoint(t *testing.T) {
	r := quoteRouter()

	w := postJSON(t, r, "/internal/quotes/export", QuoteRequest{MaterialIDs: []int64{1}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "cotacao-")
	assert.NotZero(t, w.Body.Len())
}

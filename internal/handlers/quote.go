package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/asapobra/quote-service/internal/export"
	"github.com/asapobra/quote-service/internal/geo"
	"github.com/asapobra/quote-service/internal/quote"
)

// ============================================================================
// Quote Endpoints
// ============================================================================

// Location represents a geographic location
type Location struct {
	Latitude  float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"min=-180,max=180"`
}

// QuoteRequest represents a price comparison request. Exactly one of
// materialIds, category or terms should be set.
type QuoteRequest struct {
	MaterialIDs []int64            `json:"materialIds,omitempty"`
	Category    string             `json:"category,omitempty"`
	Terms       []string           `json:"terms,omitempty"`
	Location    *Location          `json:"location,omitempty"`
	RadiusKm    float64            `json:"radiusKm,omitempty" binding:"omitempty,min=0"`
	StoreLimit  int                `json:"storeLimit,omitempty" binding:"omitempty,min=1"`
	OrderBy     string             `json:"orderBy,omitempty" binding:"omitempty,oneof=total distance"`
	Suggestions []quote.Suggestion `json:"suggestions,omitempty"`
}

// QuoteResponse represents the comparison matrix returned to the buyer
type QuoteResponse struct {
	Reason  quote.Reason   `json:"reason"`
	Columns []quote.Column `json:"columns"`
	Rows    []quote.Row    `json:"rows"`
}

// Global service instances (initialized by the application)
var quoteService *quote.Service

// InitQuoteService wires the quote service into the handlers.
// This should be called during application startup
func InitQuoteService(svc *quote.Service) {
	quoteService = svc
}

func (r *QuoteRequest) toDomain() (quote.Request, error) {
	req := quote.Request{
		MaterialIDs: r.MaterialIDs,
		Category:    r.Category,
		Terms:       r.Terms,
		RadiusKm:    r.RadiusKm,
		StoreLimit:  r.StoreLimit,
		Suggestions: r.Suggestions,
	}
	if r.OrderBy == "distance" {
		req.Order = quote.OrderByDistance
	}
	if r.Location != nil {
		p, err := geo.NewPoint(r.Location.Latitude, r.Location.Longitude)
		if err != nil {
			return quote.Request{}, fmt.Errorf("invalid location: %w", err)
		}
		req.Location = &p
	}
	return req, nil
}

// BuildQuote handles price comparison requests
// POST /internal/quotes
func BuildQuote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	domainReq, err := req.toDomain()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := quoteService.Quote(c.Request.Context(), domainReq)
	if err != nil {
		log.Error().Err(err).Msg("quote build failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "quote build failed"})
		return
	}

	c.JSON(http.StatusOK, QuoteResponse{
		Reason:  result.Reason,
		Columns: result.Matrix.Columns,
		Rows:    result.Matrix.Rows,
	})
}

// ExportQuote builds a quote and streams it as an XLSX workbook
// POST /internal/quotes/export
func ExportQuote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	domainReq, err := req.toDomain()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := quoteService.Quote(c.Request.Context(), domainReq)
	if err != nil {
		log.Error().Err(err).Msg("quote build failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "quote build failed"})
		return
	}
	if result.Reason != quote.ReasonOK {
		c.JSON(http.StatusConflict, gin.H{"error": "no quote to export", "reason": result.Reason})
		return
	}

	filename := fmt.Sprintf("cotacao-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := export.WriteXLSX(result.Matrix, c.Writer); err != nil {
		log.Error().Err(err).Msg("xlsx export failed")
	}
}

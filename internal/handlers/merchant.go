package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/asapobra/quote-service/internal/catalog"
	"github.com/asapobra/quote-service/internal/geo"
)

// ============================================================================
// Merchant Endpoints
// ============================================================================

// CreateStoreRequest registers a merchant store
type CreateStoreRequest struct {
	Name          string    `json:"name" binding:"required"`
	ContactHandle string    `json:"contactHandle" binding:"required"`
	Location      *Location `json:"location,omitempty"`
	Address       *string   `json:"address,omitempty"`
}

// CreateListingRequest adds one offer to a store's inventory
type CreateListingRequest struct {
	MaterialID *int64  `json:"materialId,omitempty"`
	Name       string  `json:"name" binding:"required"`
	Category   string  `json:"category,omitempty"`
	Price      float64 `json:"price" binding:"required,gt=0"`
	Unit       string  `json:"unit,omitempty"`
}

// UpdatePriceRequest changes the price of one listing
type UpdatePriceRequest struct {
	Price float64 `json:"price" binding:"required,gt=0"`
}

// CreateStore registers a new merchant store
// POST /internal/stores
func CreateStore(c *gin.Context) {
	var req CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	store := catalog.Store{
		ID:            uuid.NewString(),
		Name:          req.Name,
		ContactHandle: req.ContactHandle,
		Address:       req.Address,
	}
	if req.Location != nil {
		p, err := geo.NewPoint(req.Location.Latitude, req.Location.Longitude)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid location: " + err.Error()})
			return
		}
		// New rows always use EWKT; the parser still reads legacy formats
		store.RawLocation = p.EWKT()
	}

	if err := catalogRepo.CreateStore(c.Request.Context(), store); err != nil {
		log.Error().Err(err).Msg("failed to create store")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create store"})
		return
	}
	c.JSON(http.StatusCreated, store)
}

// ListInventory returns every listing of one store, newest first
// GET /internal/stores/:id/listings
func ListInventory(c *gin.Context) {
	storeID := c.Param("id")
	if _, err := catalogRepo.GetStore(c.Request.Context(), storeID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "store not found"})
			return
		}
		log.Error().Err(err).Msg("failed to load store")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load store"})
		return
	}

	listings, err := catalogRepo.ListInventory(c.Request.Context(), storeID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list inventory")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list inventory"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": listings})
}

// CreateListing adds an offer to a store's inventory
// POST /internal/stores/:id/listings
func CreateListing(c *gin.Context) {
	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	unit := req.Unit
	if unit == "" {
		unit = "UN"
	}
	listing := catalog.Listing{
		ID:         uuid.NewString(),
		StoreID:    c.Param("id"),
		MaterialID: req.MaterialID,
		Name:       req.Name,
		Category:   req.Category,
		Price:      req.Price,
		Unit:       unit,
	}

	if err := catalogRepo.CreateListing(c.Request.Context(), listing); err != nil {
		log.Error().Err(err).Msg("failed to create listing")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create listing"})
		return
	}
	c.JSON(http.StatusCreated, listing)
}

// UpdateListingPrice updates the price of one listing
// PUT /internal/listings/:id/price
func UpdateListingPrice(c *gin.Context) {
	var req UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := catalogRepo.UpdateListingPrice(c.Request.Context(), c.Param("id"), req.Price)
	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to update price")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update price"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// DeleteListing removes one listing
// DELETE /internal/listings/:id
func DeleteListing(c *gin.Context) {
	err := catalogRepo.DeleteListing(c.Request.Context(), c.Param("id"))
	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to delete listing")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete listing"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

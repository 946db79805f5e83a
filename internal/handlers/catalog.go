package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/asapobra/quote-service/internal/catalog"
)

// ============================================================================
// Master Catalog Endpoints
// ============================================================================

var catalogRepo *catalog.PostgresCatalog

// InitCatalog wires the catalog repository into the handlers.
// This should be called during application startup
func InitCatalog(repo *catalog.PostgresCatalog) {
	catalogRepo = repo
}

// ListMaterials returns the active master catalog
// GET /internal/materials
func ListMaterials(c *gin.Context) {
	materials, err := catalogRepo.ListMaterials(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list materials")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list materials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"materials": materials})
}

// ListCategories returns the distinct categories of the active catalog
// GET /internal/categories
func ListCategories(c *gin.Context) {
	categories, err := catalogRepo.ListCategories(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list categories")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

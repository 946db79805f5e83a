package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/asapobra/quote-service/internal/planner"
	"github.com/asapobra/quote-service/internal/quote"
)

// ============================================================================
// Planner Endpoints
// ============================================================================

// PlanRequest carries the buyer's project description
type PlanRequest struct {
	Message string `json:"message" binding:"required"`
}

// PlanResponse is the assistant's reply with the decoded suggestions
type PlanResponse struct {
	Reply       string             `json:"reply"`
	Suggestions []quote.Suggestion `json:"suggestions"`
}

var materialPlanner planner.Planner

// InitPlanner wires the planning assistant into the handlers.
// This should be called during application startup
func InitPlanner(p planner.Planner) {
	materialPlanner = p
}

// PlanMaterials asks the assistant for material suggestions
// POST /internal/planner/chat
func PlanMaterials(c *gin.Context) {
	if materialPlanner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "planner not configured"})
		return
	}

	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	materials, err := catalogRepo.ListMaterials(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to load catalog for planner")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load catalog"})
		return
	}

	reply, err := materialPlanner.Plan(c.Request.Context(), req.Message, materials)
	if err != nil {
		log.Error().Err(err).Msg("planner request failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "planner unavailable"})
		return
	}

	c.JSON(http.StatusOK, PlanResponse{
		Reply:       reply.Text,
		Suggestions: reply.Suggestions,
	})
}

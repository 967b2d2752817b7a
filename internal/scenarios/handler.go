package scenarios

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"carbon-scribe/farm-emissions/internal/emissions"
	"carbon-scribe/farm-emissions/internal/farm"
)

// Handler handles HTTP requests for stored scenarios
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new scenario handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers scenario routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	scenarios := router.Group("/scenarios")
	{
		scenarios.POST("", h.createScenario)
		scenarios.POST("/recalculate", h.recalculateStale)
		scenarios.GET("/:id", h.getScenario)
		scenarios.GET("/:id/summary", h.getSummary)
		scenarios.POST("/:id/replicate", h.replicateScenario)
		scenarios.POST("/:id/calculate", h.calculateScenario)
	}
}

// createScenario handles POST /api/v1/scenarios
func (h *Handler) createScenario(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f, err := farm.UnmarshalFarm(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scenario, err := h.service.CreateScenario(c.Request.Context(), f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, scenario)
}

// getScenario handles GET /api/v1/scenarios/:id
func (h *Handler) getScenario(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	scenario, err := h.service.GetScenario(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, scenario)
}

// getSummary handles GET /api/v1/scenarios/:id/summary
func (h *Handler) getSummary(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	summary, err := h.service.LatestSummary(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// replicateScenario handles POST /api/v1/scenarios/:id/replicate
func (h *Handler) replicateScenario(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	replica, err := h.service.ReplicateScenario(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, replica)
}

// calculateScenario handles POST /api/v1/scenarios/:id/calculate
func (h *Handler) calculateScenario(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	outcome, err := h.service.CalculateScenario(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"summary": outcome.Summary,
		"results": outcome.Results,
	})
}

// recalculateStale handles POST /api/v1/scenarios/recalculate?limit=n
func (h *Handler) recalculateStale(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	report, err := h.service.RecalculateStale(c.Request.Context(), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// =====================================================
// Helper Methods
// =====================================================

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scenario ID"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var fe *emissions.FarmError
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &fe):
		c.JSON(emissions.StatusForKind(fe.Kind), gin.H{"error": err.Error(), "kind": fe.Kind})
	default:
		h.logger.Error("Scenario request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

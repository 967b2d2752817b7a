package emissions

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"carbon-scribe/farm-emissions/internal/emissions/export"
	"carbon-scribe/farm-emissions/internal/farm"
)

// maxReplicas bounds the count accepted by the replicate endpoint
const maxReplicas = 100

// Handler handles HTTP requests for farm calculation
type Handler struct {
	service *Service
	factory *farm.Factory
	logger  *zap.Logger
}

// NewHandler creates a new emissions handler
func NewHandler(service *Service, factory *farm.Factory, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		factory: factory,
		logger:  logger,
	}
}

// RegisterRoutes registers calculation routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/components/catalogue", h.getCatalogue)
	router.GET("/calculators", h.getCalculators)

	farms := router.Group("/farms")
	{
		farms.POST("", h.createFarm)
		farms.POST("/import", h.importValues)
		farms.POST("/replicate", h.replicateFarm)

		// Calculation endpoints
		farms.POST("/calculate", h.calculateFarm)
		farms.POST("/calculate/batch", h.calculateBatch)
		farms.POST("/fields", h.calculateFields)
		farms.POST("/export", h.exportResults)
	}

	router.GET("/settings/crop-economics", h.getCropEconomics)
	router.PUT("/settings/crop-economics", h.setCropEconomics)
}

// CreateFarmRequest is the body of POST /farms
type CreateFarmRequest struct {
	Name       string               `json:"name" binding:"required"`
	Components []farm.ComponentType `json:"components"`
}

// BatchRequest is the body of POST /farms/calculate/batch
type BatchRequest struct {
	Farms []json.RawMessage `json:"farms" binding:"required"`
}

// BatchResponse pairs the calculated farms with the farms that failed
type BatchResponse struct {
	Results  []*FarmEmissionResults `json:"results"`
	Failures []FailureResponse      `json:"failures"`
}

// FailureResponse describes a failed farm
type FailureResponse struct {
	Index         int                `json:"index"`
	FarmID        uuid.UUID          `json:"farm_id"`
	FarmName      string             `json:"farm_name,omitempty"`
	ComponentID   *uuid.UUID         `json:"component_id,omitempty"`
	ComponentType farm.ComponentType `json:"component_type,omitempty"`
	Kind          ErrorKind          `json:"kind"`
	Error         string             `json:"error"`
}

// ImportRequest sets input values on the components of a farm
type ImportRequest struct {
	Farm   json.RawMessage `json:"farm" binding:"required"`
	Units  farm.UnitSystem `json:"units"`
	Values []ImportValue   `json:"values"`
}

// ImportValue is a single property assignment
type ImportValue struct {
	ComponentID uuid.UUID `json:"component_id"`
	Path        string    `json:"path"`
	Value       string    `json:"value"`
}

// CropEconomicsSetting is the body of the crop economics settings endpoints
type CropEconomicsSetting struct {
	Applied bool `json:"applied"`
}

// getCatalogue handles GET /api/v1/components/catalogue
func (h *Handler) getCatalogue(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"components": farm.Catalogue()})
}

// getCalculators handles GET /api/v1/calculators
func (h *Handler) getCalculators(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"calculators": h.service.Calculators()})
}

// createFarm handles POST /api/v1/farms
func (h *Handler) createFarm(c *gin.Context) {
	var req CreateFarmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f, err := h.factory.Create(req.Name)
	if err != nil {
		h.logger.Error("Failed to create farm", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	for _, t := range req.Components {
		component, err := farm.NewComponent(t)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := f.AddComponent(component); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	h.writeFarm(c, http.StatusCreated, f)
}

// importValues handles POST /api/v1/farms/import
func (h *Handler) importValues(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f, err := farm.UnmarshalFarm(req.Farm)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Units == "" {
		req.Units = farm.Metric
	}
	importer, err := farm.NewImporter(req.Units, h.factory.Defaults())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for i, v := range req.Values {
		component, ok := f.Component(v.ComponentID)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("value %d: component %s not found", i, v.ComponentID)})
			return
		}
		if err := importer.SetField(component, v.Path, v.Value); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("value %d: %v", i, err)})
			return
		}
	}

	h.writeFarm(c, http.StatusOK, f)
}

// replicateFarm handles POST /api/v1/farms/replicate?count=n
func (h *Handler) replicateFarm(c *gin.Context) {
	count, err := strconv.Atoi(c.DefaultQuery("count", "1"))
	if err != nil || count < 1 || count > maxReplicas {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("count must be between 1 and %d", maxReplicas)})
		return
	}
	f, ok := h.bindFarm(c)
	if !ok {
		return
	}

	sources := make([]*farm.Farm, count)
	for i := range sources {
		sources[i] = f
	}
	replicas, err := h.service.ReplicateFarms(sources)
	if err != nil {
		h.writeError(c, err)
		return
	}

	docs := make([]json.RawMessage, len(replicas))
	for i, r := range replicas {
		data, err := farm.MarshalFarm(r)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		docs[i] = data
	}
	c.JSON(http.StatusOK, gin.H{"farms": docs})
}

// calculateFarm handles POST /api/v1/farms/calculate
func (h *Handler) calculateFarm(c *gin.Context) {
	f, ok := h.bindFarm(c)
	if !ok {
		return
	}
	results, err := h.service.CalculateFarmEmissionResults(c.Request.Context(), f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// calculateBatch handles POST /api/v1/farms/calculate/batch
func (h *Handler) calculateBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	farms := make([]*farm.Farm, len(req.Farms))
	for i, doc := range req.Farms {
		f, err := farm.UnmarshalFarm(doc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("farm %d: %v", i, err)})
			return
		}
		farms[i] = f
	}

	results, err := h.service.CalculateFarmsEmissionResults(c.Request.Context(), farms)
	resp := BatchResponse{Results: results, Failures: []FailureResponse{}}
	if err != nil {
		var batchErr *BatchError
		if !errors.As(err, &batchErr) {
			h.writeError(c, err)
			return
		}
		for _, f := range batchErr.Failures {
			resp.Failures = append(resp.Failures, failureResponse(f))
		}
	}
	c.JSON(http.StatusOK, resp)
}

// calculateFields handles POST /api/v1/farms/fields
func (h *Handler) calculateFields(c *gin.Context) {
	f, ok := h.bindFarm(c)
	if !ok {
		return
	}
	items, err := h.service.CalculateFieldResults(c.Request.Context(), f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// exportResults handles POST /api/v1/farms/export?format=csv|xlsx|pdf
func (h *Handler) exportResults(c *gin.Context) {
	format := export.Format(c.DefaultQuery("format", string(export.FormatCSV)))
	f, ok := h.bindFarm(c)
	if !ok {
		return
	}
	results, err := h.service.CalculateFarmEmissionResults(c.Request.Context(), f)
	if err != nil {
		h.writeError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, results); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	filename := fmt.Sprintf("farm-%s.%s", f.ID, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// getCropEconomics handles GET /api/v1/settings/crop-economics
func (h *Handler) getCropEconomics(c *gin.Context) {
	c.JSON(http.StatusOK, CropEconomicsSetting{Applied: h.service.CropEconomicDataApplied()})
}

// setCropEconomics handles PUT /api/v1/settings/crop-economics
func (h *Handler) setCropEconomics(c *gin.Context) {
	var req CropEconomicsSetting
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.service.SetCropEconomicDataApplied(req.Applied)
	h.logger.Info("Crop economic data setting changed", zap.Bool("applied", req.Applied))
	c.JSON(http.StatusOK, req)
}

// =====================================================
// Helper Methods
// =====================================================

// bindFarm decodes a farm document from the request body
func (h *Handler) bindFarm(c *gin.Context) (*farm.Farm, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	f, err := farm.UnmarshalFarm(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return f, true
}

func (h *Handler) writeFarm(c *gin.Context, status int, f *farm.Farm) {
	data, err := farm.MarshalFarm(f)
	if err != nil {
		h.logger.Error("Failed to encode farm", zap.Error(err), zap.String("farm_id", f.ID.String()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(status, "application/json; charset=utf-8", data)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var fe *FarmError
	if !errors.As(err, &fe) {
		h.logger.Error("Calculation request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(StatusForKind(fe.Kind), gin.H{
		"error":   err.Error(),
		"failure": failureResponse(fe),
	})
}

// StatusForKind maps an error kind to an HTTP status code
func StatusForKind(kind ErrorKind) int {
	switch kind {
	case KindInvalidComponent, KindReplication:
		return http.StatusUnprocessableEntity
	case KindCancelled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func failureResponse(fe *FarmError) FailureResponse {
	out := FailureResponse{
		Index:         fe.Index,
		FarmID:        fe.FarmID,
		FarmName:      fe.FarmName,
		ComponentType: fe.ComponentType,
		Kind:          fe.Kind,
		Error:         fe.Err.Error(),
	}
	if fe.ComponentID != uuid.Nil {
		id := fe.ComponentID
		out.ComponentID = &id
	}
	return out
}

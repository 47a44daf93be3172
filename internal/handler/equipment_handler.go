package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agrifair/service-rental/internal/application"
	"github.com/agrifair/service-rental/pkg/auth"
	"github.com/agrifair/service-rental/pkg/middleware"
	"github.com/agrifair/service-rental/pkg/response"
)

// EquipmentHandler handles HTTP requests for equipment listings.
type EquipmentHandler struct {
	service *application.EquipmentService
}

// NewEquipmentHandler creates a new EquipmentHandler.
func NewEquipmentHandler(service *application.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{service: service}
}

// RegisterRoutes registers all equipment routes on the given router group.
// Browsing available equipment is public; everything else requires auth.
func (h *EquipmentHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	equipment := r.Group("/api/v1/equipment")
	{
		equipment.GET("/available", h.ListAvailableEquipment)
		equipment.GET("/:id", h.GetEquipment)

		equipment.POST("", authMW, h.CreateEquipment)
		equipment.GET("/my", authMW, h.ListMyEquipment)
		equipment.PATCH("/:id", authMW, h.UpdateEquipment)
		equipment.PATCH("/:id/availability", authMW, h.SetAvailability)
	}
}

// CreateEquipment handles POST /api/v1/equipment.
func (h *EquipmentHandler) CreateEquipment(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateEquipment(c.Request.Context(), identity, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListAvailableEquipment handles GET /api/v1/equipment/available.
func (h *EquipmentHandler) ListAvailableEquipment(c *gin.Context) {
	result, err := h.service.GetAvailableEquipment(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListMyEquipment handles GET /api/v1/equipment/my.
func (h *EquipmentHandler) ListMyEquipment(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.GetMyEquipment(c.Request.Context(), identity)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetEquipment handles GET /api/v1/equipment/:id.
func (h *EquipmentHandler) GetEquipment(c *gin.Context) {
	equipmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid equipment ID")
		return
	}

	result, err := h.service.GetEquipment(c.Request.Context(), equipmentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateEquipment handles PATCH /api/v1/equipment/:id.
func (h *EquipmentHandler) UpdateEquipment(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	equipmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid equipment ID")
		return
	}

	var req application.UpdateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateEquipment(c.Request.Context(), identity, equipmentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SetAvailability handles PATCH /api/v1/equipment/:id/availability.
func (h *EquipmentHandler) SetAvailability(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	equipmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid equipment ID")
		return
	}

	var req application.SetAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SetAvailability(c.Request.Context(), identity, equipmentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

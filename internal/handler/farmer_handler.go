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

// FarmerHandler handles HTTP requests for farmer profiles.
type FarmerHandler struct {
	service *application.FarmerService
}

// NewFarmerHandler creates a new FarmerHandler.
func NewFarmerHandler(service *application.FarmerService) *FarmerHandler {
	return &FarmerHandler{service: service}
}

// RegisterRoutes registers all farmer routes on the given router group.
func (h *FarmerHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	farmers := r.Group("/api/v1/farmers")
	farmers.Use(middleware.AuthMiddleware(jwtManager))
	{
		farmers.GET("/me", h.GetMyProfile)
		farmers.PATCH("/me", h.UpdateMyProfile)
		farmers.GET("/:id", h.GetFarmer)
	}
}

// GetMyProfile handles GET /api/v1/farmers/me.
func (h *FarmerHandler) GetMyProfile(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.GetMyProfile(c.Request.Context(), identity)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateMyProfile handles PATCH /api/v1/farmers/me.
func (h *FarmerHandler) UpdateMyProfile(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.UpdateFarmerProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateMyProfile(c.Request.Context(), identity, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetFarmer handles GET /api/v1/farmers/:id.
func (h *FarmerHandler) GetFarmer(c *gin.Context) {
	farmerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid farmer ID")
		return
	}

	result, err := h.service.GetFarmer(c.Request.Context(), farmerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agrifair/service-rental/internal/application"
	"github.com/agrifair/service-rental/pkg/auth"
	"github.com/agrifair/service-rental/pkg/middleware"
	"github.com/agrifair/service-rental/pkg/response"
)

// RentalHandler handles HTTP requests for rental lifecycle operations.
type RentalHandler struct {
	service *application.RentalService
}

// NewRentalHandler creates a new RentalHandler.
func NewRentalHandler(service *application.RentalService) *RentalHandler {
	return &RentalHandler{service: service}
}

// RegisterRoutes registers all rental routes on the given router group.
func (h *RentalHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	rentals := r.Group("/api/v1/rentals")
	rentals.Use(authMW)
	{
		rentals.POST("", h.CreateRental)
		rentals.GET("", h.ListMyRentals)
		rentals.GET("/:id", h.GetRental)
		rentals.POST("/:id/approve", h.ApproveRental)
		rentals.POST("/:id/pay", h.ConfirmPayment)
		rentals.POST("/:id/start", h.StartRental)
		rentals.POST("/:id/complete", h.CompleteRental)
		rentals.POST("/:id/cancel", h.CancelRental)
	}

	equipment := r.Group("/api/v1/equipment")
	equipment.Use(authMW)
	{
		equipment.GET("/:id/rentals", h.ListEquipmentRentals)
	}
}

// CreateRental handles POST /api/v1/rentals.
func (h *RentalHandler) CreateRental(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateRental(c.Request.Context(), identity, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListMyRentals handles GET /api/v1/rentals.
func (h *RentalHandler) ListMyRentals(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	page, limit := parsePagination(c)

	result, err := h.service.GetMyRentals(c.Request.Context(), identity, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetRental handles GET /api/v1/rentals/:id.
func (h *RentalHandler) GetRental(c *gin.Context) {
	rentalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid rental ID")
		return
	}

	result, err := h.service.GetRental(c.Request.Context(), rentalID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ApproveRental handles POST /api/v1/rentals/:id/approve.
func (h *RentalHandler) ApproveRental(c *gin.Context) {
	h.transition(c, h.service.ApproveRental)
}

// ConfirmPayment handles POST /api/v1/rentals/:id/pay.
func (h *RentalHandler) ConfirmPayment(c *gin.Context) {
	h.transition(c, h.service.ConfirmPayment)
}

// StartRental handles POST /api/v1/rentals/:id/start.
func (h *RentalHandler) StartRental(c *gin.Context) {
	h.transition(c, h.service.StartRental)
}

// CompleteRental handles POST /api/v1/rentals/:id/complete.
func (h *RentalHandler) CompleteRental(c *gin.Context) {
	h.transition(c, h.service.CompleteRental)
}

type cancelRentalRequest struct {
	Reason string `json:"reason"`
}

// CancelRental handles POST /api/v1/rentals/:id/cancel.
func (h *RentalHandler) CancelRental(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	rentalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid rental ID")
		return
	}

	var req cancelRentalRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}

	result, err := h.service.CancelRental(c.Request.Context(), identity, rentalID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListEquipmentRentals handles GET /api/v1/equipment/:id/rentals.
func (h *RentalHandler) ListEquipmentRentals(c *gin.Context) {
	equipmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid equipment ID")
		return
	}

	result, err := h.service.GetRentalsByEquipment(c.Request.Context(), equipmentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

type transitionFunc func(ctx context.Context, identity string, rentalID uuid.UUID) (*application.RentalDTO, error)

func (h *RentalHandler) transition(c *gin.Context, fn transitionFunc) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	rentalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid rental ID")
		return
	}

	result, err := fn(c.Request.Context(), identity, rentalID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}

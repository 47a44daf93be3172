package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/agrifair/service-rental/internal/application"
	"github.com/agrifair/service-rental/pkg/auth"
	"github.com/agrifair/service-rental/pkg/middleware"
	"github.com/agrifair/service-rental/pkg/response"
)

// AdminHandler exposes the marketplace-wide views for operators.
type AdminHandler struct {
	rentals   *application.RentalService
	equipment *application.EquipmentService
	farmers   *application.FarmerService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	rentals *application.RentalService,
	equipment *application.EquipmentService,
	farmers *application.FarmerService,
) *AdminHandler {
	return &AdminHandler{rentals: rentals, equipment: equipment, farmers: farmers}
}

// RegisterRoutes registers all admin routes on the given router group.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/rentals", h.ListRentals)
		admin.GET("/rentals/stats", h.GetRentalStats)
		admin.GET("/equipment", h.ListEquipment)
		admin.GET("/farmers", h.ListFarmers)
	}
}

// ListRentals handles GET /api/v1/admin/rentals.
func (h *AdminHandler) ListRentals(c *gin.Context) {
	page, limit := parsePagination(c)

	items, total, err := h.rentals.ListAllRentals(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, items, total, page, limit)
}

// GetRentalStats handles GET /api/v1/admin/rentals/stats.
func (h *AdminHandler) GetRentalStats(c *gin.Context) {
	result, err := h.rentals.GetRentalStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListEquipment handles GET /api/v1/admin/equipment.
func (h *AdminHandler) ListEquipment(c *gin.Context) {
	page, limit := parsePagination(c)

	items, total, err := h.equipment.ListAllEquipment(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, items, total, page, limit)
}

// ListFarmers handles GET /api/v1/admin/farmers.
func (h *AdminHandler) ListFarmers(c *gin.Context) {
	page, limit := parsePagination(c)

	items, total, err := h.farmers.ListFarmers(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, items, total, page, limit)
}

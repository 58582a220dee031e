package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stayhub/service-booking/internal/application"
	"github.com/stayhub/service-booking/pkg/auth"
	"github.com/stayhub/service-booking/pkg/middleware"
	"github.com/stayhub/service-booking/pkg/response"
)

// AdminHandler handles the back-office reporting endpoints. Admins see
// everything; managers and staff are scoped to their hotel.
type AdminHandler struct {
	bookings *application.BookingService
	promos   *application.PromotionService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(bookings *application.BookingService, promos *application.PromotionService) *AdminHandler {
	return &AdminHandler{bookings: bookings, promos: promos}
}

// RegisterRoutes registers all admin routes on the given router group.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager))
	admin.Use(middleware.RequireRole(auth.RoleAdmin, auth.RoleManager, auth.RoleStaff))
	{
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/stats", h.GetStats)
		admin.GET("/promotions", middleware.RequireRole(auth.RoleAdmin, auth.RoleManager), h.ListPromotions)
		admin.GET("/promotions/:id/usage", middleware.RequireRole(auth.RoleAdmin, auth.RoleManager), h.GetPromotionUsage)
	}
}

// ListBookings handles GET /api/v1/admin/bookings
func (h *AdminHandler) ListBookings(c *gin.Context) {
	scope, ok := middleware.HotelScope(c)
	if !ok {
		response.Forbidden(c, "token carries no hotel scope")
		return
	}
	page, limit := pagination(c)
	dtos, total, err := h.bookings.ListAllBookings(c.Request.Context(), scope, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"bookings": dtos, "total": total, "page": page, "limit": limit})
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	scope, ok := middleware.HotelScope(c)
	if !ok {
		response.Forbidden(c, "token carries no hotel scope")
		return
	}
	stats, err := h.bookings.GetStats(c.Request.Context(), scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}

// ListPromotions handles GET /api/v1/admin/promotions
func (h *AdminHandler) ListPromotions(c *gin.Context) {
	page, limit := pagination(c)
	dtos, total, err := h.promos.ListPromotions(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"promotions": dtos, "total": total, "page": page, "limit": limit})
}

// GetPromotionUsage handles GET /api/v1/admin/promotions/:id/usage
func (h *AdminHandler) GetPromotionUsage(c *gin.Context) {
	promoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid promotion ID")
		return
	}

	usage, err := h.promos.GetUsage(c.Request.Context(), promoID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, usage)
}

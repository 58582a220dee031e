package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stayhub/service-booking/internal/application"
	"github.com/stayhub/service-booking/pkg/auth"
	"github.com/stayhub/service-booking/pkg/middleware"
	"github.com/stayhub/service-booking/pkg/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	bookings := r.Group("/bookings")
	bookings.Use(middleware.AuthMiddleware(jwtManager))
	{
		bookings.POST("", middleware.RequireRole(auth.RoleCustomer), h.CreateBooking)
		bookings.GET("", middleware.RequireRole(auth.RoleCustomer), h.ListMyBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/cancel", h.CancelBooking)
		bookings.POST("/:id/check-in", middleware.RequireRole(auth.RoleAdmin, auth.RoleManager, auth.RoleStaff), h.CheckIn)
		bookings.POST("/:id/check-out", middleware.RequireRole(auth.RoleAdmin, auth.RoleManager, auth.RoleStaff), h.CheckOut)
	}
}

// CreateBooking handles POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	req.IPAddress = c.ClientIP()

	dto, rejection, err := h.service.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if rejection != nil {
		response.Rejected(c, string(rejection.Reason), rejection.Message)
		return
	}

	response.Created(c, dto)
}

// GetBooking handles GET /api/v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	dto, err := h.service.GetBooking(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	if !h.canAccess(c, dto) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	response.Success(c, dto)
}

// ListMyBookings handles GET /api/v1/bookings
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	page, limit := pagination(c)
	dtos, total, err := h.service.ListUserBookings(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"bookings": dtos, "total": total, "page": page, "limit": limit})
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	var req application.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	existing, err := h.service.GetBooking(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !h.canAccess(c, existing) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	dto, err := h.service.CancelBooking(c.Request.Context(), bookingID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto)
}

// CheckIn handles POST /api/v1/bookings/:id/check-in
func (h *BookingHandler) CheckIn(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	var req application.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.service.CheckIn(c.Request.Context(), bookingID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto)
}

// CheckOut handles POST /api/v1/bookings/:id/check-out
func (h *BookingHandler) CheckOut(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	dto, err := h.service.CheckOut(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto)
}

// canAccess reports whether the caller may act on the booking: customers
// only on their own records, manager/staff within their hotel, admin on all.
func (h *BookingHandler) canAccess(c *gin.Context, dto *application.BookingDTO) bool {
	role, _ := middleware.GetRole(c)
	switch role {
	case auth.RoleAdmin:
		return true
	case auth.RoleManager, auth.RoleStaff:
		scope, ok := middleware.HotelScope(c)
		return ok && scope != nil && *scope == dto.HotelID
	default:
		userID, ok := middleware.GetUserID(c)
		return ok && userID == dto.UserID
	}
}

// pagination extracts page/limit query params with sane defaults.
func pagination(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

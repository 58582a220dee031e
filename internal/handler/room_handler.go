package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stayhub/service-booking/internal/application"
	"github.com/stayhub/service-booking/pkg/auth"
	"github.com/stayhub/service-booking/pkg/middleware"
	"github.com/stayhub/service-booking/pkg/response"
)

// RoomHandler handles HTTP requests for room inventory operations.
type RoomHandler struct {
	service *application.RoomService
}

// NewRoomHandler creates a new RoomHandler.
func NewRoomHandler(service *application.RoomService) *RoomHandler {
	return &RoomHandler{service: service}
}

// RegisterRoutes registers all room routes on the given router group.
func (h *RoomHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	rooms := r.Group("/rooms")
	rooms.Use(middleware.AuthMiddleware(jwtManager))
	{
		rooms.GET("", h.ListRooms)
		rooms.GET("/:id", h.GetRoom)
		rooms.POST("", middleware.RequireRole(auth.RoleAdmin, auth.RoleManager), h.CreateRoom)
		rooms.PUT("/:id/rate", middleware.RequireRole(auth.RoleAdmin, auth.RoleManager), h.UpdateRate)
		rooms.POST("/:id/deactivate", middleware.RequireRole(auth.RoleAdmin, auth.RoleManager), h.DeactivateRoom)
	}
}

// ListRooms handles GET /api/v1/rooms?hotel_id=...
func (h *RoomHandler) ListRooms(c *gin.Context) {
	hotelID, err := uuid.Parse(c.Query("hotel_id"))
	if err != nil {
		response.BadRequest(c, "invalid or missing hotel_id")
		return
	}

	dtos, err := h.service.ListRooms(c.Request.Context(), hotelID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dtos)
}

// GetRoom handles GET /api/v1/rooms/:id
func (h *RoomHandler) GetRoom(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid room ID")
		return
	}

	dto, err := h.service.GetRoom(c.Request.Context(), roomID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto)
}

// CreateRoom handles POST /api/v1/rooms
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req application.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	// Managers can only add rooms to their own hotel.
	scope, ok := middleware.HotelScope(c)
	if !ok {
		response.Forbidden(c, "token carries no hotel scope")
		return
	}
	if scope != nil && *scope != req.HotelID {
		response.BadRequest(c, "hotel_id outside caller's scope")
		return
	}

	dto, err := h.service.CreateRoom(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto)
}

// UpdateRate handles PUT /api/v1/rooms/:id/rate
func (h *RoomHandler) UpdateRate(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid room ID")
		return
	}

	var req application.UpdateRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.service.UpdateRate(c.Request.Context(), roomID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto)
}

// DeactivateRoom handles POST /api/v1/rooms/:id/deactivate
func (h *RoomHandler) DeactivateRoom(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid room ID")
		return
	}

	if err := h.service.DeactivateRoom(c.Request.Context(), roomID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"deactivated": true})
}

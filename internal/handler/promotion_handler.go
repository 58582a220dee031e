package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stayhub/service-booking/internal/application"
	"github.com/stayhub/service-booking/pkg/auth"
	"github.com/stayhub/service-booking/pkg/middleware"
	"github.com/stayhub/service-booking/pkg/response"
)

// PromotionHandler handles HTTP requests for promotion operations.
type PromotionHandler struct {
	service  *application.PromotionService
	bookings *application.BookingService
}

// NewPromotionHandler creates a new PromotionHandler.
func NewPromotionHandler(service *application.PromotionService, bookings *application.BookingService) *PromotionHandler {
	return &PromotionHandler{service: service, bookings: bookings}
}

// RegisterRoutes registers all promotion routes on the given router group.
func (h *PromotionHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	promos := r.Group("/promotions")
	promos.Use(middleware.AuthMiddleware(jwtManager))
	{
		promos.GET("/active", h.GetActivePromotions)
		promos.POST("/validate", h.ValidatePromotion)
		promos.POST("", middleware.RequireRole(auth.RoleAdmin, auth.RoleManager), h.CreatePromotion)
		promos.PUT("/:id", middleware.RequireRole(auth.RoleAdmin, auth.RoleManager), h.UpdatePromotion)
		promos.POST("/:id/deactivate", middleware.RequireRole(auth.RoleAdmin, auth.RoleManager), h.DeactivatePromotion)
		promos.DELETE("/:id", middleware.RequireRole(auth.RoleAdmin, auth.RoleManager), h.DeletePromotion)
	}
}

// GetActivePromotions handles GET /api/v1/promotions/active
func (h *PromotionHandler) GetActivePromotions(c *gin.Context) {
	dtos, err := h.service.GetActivePromotions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dtos)
}

// ValidatePromotion handles POST /api/v1/promotions/validate. It is a
// dry run: nothing is created and no usage is consumed.
func (h *PromotionHandler) ValidatePromotion(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.ValidatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	req.IPAddress = c.ClientIP()

	outcome, rejection, err := h.bookings.PreviewPromotion(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if rejection != nil {
		response.Rejected(c, string(rejection.Reason), rejection.Message)
		return
	}
	response.Success(c, outcome)
}

// CreatePromotion handles POST /api/v1/promotions
func (h *PromotionHandler) CreatePromotion(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.service.CreatePromotion(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto)
}

// UpdatePromotion handles PUT /api/v1/promotions/:id
func (h *PromotionHandler) UpdatePromotion(c *gin.Context) {
	promoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid promotion ID")
		return
	}

	var req application.CreatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.service.UpdatePromotion(c.Request.Context(), promoID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto)
}

// DeactivatePromotion handles POST /api/v1/promotions/:id/deactivate
func (h *PromotionHandler) DeactivatePromotion(c *gin.Context) {
	promoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid promotion ID")
		return
	}

	dto, err := h.service.DeactivatePromotion(c.Request.Context(), promoID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto)
}

// DeletePromotion handles DELETE /api/v1/promotions/:id
func (h *PromotionHandler) DeletePromotion(c *gin.Context) {
	promoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid promotion ID")
		return
	}

	if err := h.service.DeletePromotion(c.Request.Context(), promoID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

package items

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"findit/campus-portal/lostfound-backend/pkg/apperrors"
)

// Handler exposes item reporting and browsing endpoints
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers item routes on an authenticated group
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/items")
	{
		group.POST("", h.reportItem)
		group.GET("", h.listItems)
		group.GET("/:itemId", h.getItem)
	}
}

// reportItem handles POST /api/v1/items
func (h *Handler) reportItem(c *gin.Context) {
	var req ReportItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := uuid.Parse(c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user identity"})
		return
	}

	item, err := h.service.ReportItem(c.Request.Context(), req, userID)
	if err != nil {
		h.respondError(c, err, "Failed to report item")
		return
	}

	c.JSON(http.StatusCreated, item)
}

// listItems handles GET /api/v1/items
func (h *Handler) listItems(c *gin.Context) {
	filter := ItemFilter{
		Search: c.Query("search"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	if status := c.Query("status"); status != "" {
		s := ItemStatus(status)
		filter.Status = &s
	}
	if category := c.Query("category"); category != "" {
		cat := ItemCategory(category)
		filter.Category = &cat
	}

	resp, err := h.service.ListItems(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err, "Failed to list items")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getItem handles GET /api/v1/items/:itemId
func (h *Handler) getItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item ID"})
		return
	}

	item, err := h.service.GetItem(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to get item")
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *Handler) respondError(c *gin.Context, err error, logMsg string) {
	if appErr, ok := apperrors.As(err); ok {
		c.JSON(appErr.Status, gin.H{"error": appErr.Message, "code": appErr.Code})
		return
	}
	h.logger.Error(logMsg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

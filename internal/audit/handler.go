package audit

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler exposes the admin audit log endpoints
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

// RegisterRoutes registers audit routes on the admin group
func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	logs := admin.Group("/audit-logs")
	{
		logs.GET("", h.listLogs)
		logs.GET("/export", h.exportLogs)
	}
}

// listLogs handles GET /api/v1/admin/audit-logs
func (h *Handler) listLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	resp, err := h.service.List(c.Request.Context(), page, limit)
	if err != nil {
		h.logger.Error("Failed to list audit logs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list audit logs"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// exportLogs handles GET /api/v1/admin/audit-logs/export
func (h *Handler) exportLogs(c *gin.Context) {
	filename := fmt.Sprintf("audit-log-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := h.service.ExportXLSX(c.Request.Context(), c.Writer); err != nil {
		h.logger.Error("Failed to export audit logs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
}

package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"findit/campus-portal/lostfound-backend/internal/users"
	"findit/campus-portal/lostfound-backend/pkg/apperrors"
)

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries the opaque refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Handler exposes registration and session endpoints
type Handler struct {
	service   *Service
	usersRepo users.Repository
	logger    *zap.Logger
}

func NewHandler(service *Service, usersRepo users.Repository, logger *zap.Logger) *Handler {
	return &Handler{
		service:   service,
		usersRepo: usersRepo,
		logger:    logger,
	}
}

// RegisterRoutes registers the public auth routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/auth")
	{
		group.POST("/register", h.register)
		group.POST("/login", h.login)
		group.POST("/refresh", h.refresh)
		group.POST("/logout", h.logout)
	}
}

// RegisterProtectedRoutes registers routes that need an authenticated
// caller.
func (h *Handler) RegisterProtectedRoutes(router *gin.RouterGroup) {
	router.GET("/auth/me", h.me)
}

// register handles POST /api/v1/auth/register
func (h *Handler) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.service.Register(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		h.respondError(c, err, "Failed to register user")
		return
	}

	c.JSON(http.StatusCreated, user)
}

// login handles POST /api/v1/auth/login
func (h *Handler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, user, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err, "Failed to log in")
		return
	}

	c.JSON(http.StatusOK, gin.H{"tokens": pair, "user": user})
}

// refresh handles POST /api/v1/auth/refresh
func (h *Handler) refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.respondError(c, err, "Failed to refresh session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"tokens": pair})
}

// logout handles POST /api/v1/auth/logout
func (h *Handler) logout(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		h.respondError(c, err, "Failed to log out")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// me handles GET /api/v1/auth/me
func (h *Handler) me(c *gin.Context) {
	userID, err := uuid.Parse(c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user identity"})
		return
	}

	user, err := h.usersRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err, "Failed to load user")
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *Handler) respondError(c *gin.Context, err error, logMsg string) {
	if appErr, ok := apperrors.As(err); ok {
		c.JSON(appErr.Status, gin.H{"error": appErr.Message, "code": appErr.Code})
		return
	}
	h.logger.Error(logMsg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

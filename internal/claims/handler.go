package claims

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"findit/campus-portal/lostfound-backend/pkg/apperrors"
)

// SubmitClaimRequest is the body of POST /items/:itemId/claims
type SubmitClaimRequest struct {
	Proofs []ProofInput `json:"proofs" binding:"required"`
}

// AdjudicateRequest carries the admin's verdict on a claim
type AdjudicateRequest struct {
	Comment string `json:"comment" binding:"max=500"`
	Reason  string `json:"reason" binding:"max=500"`
}

// HandoverRequest carries optional pickup notes
type HandoverRequest struct {
	Notes string `json:"notes" binding:"max=500"`
}

// DeleteItemRequest carries the moderation reason
type DeleteItemRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// Handler exposes the claim submission and adjudication endpoints
type Handler struct {
	lifecycle *Lifecycle
	logger    *zap.Logger
}

func NewHandler(lifecycle *Lifecycle, logger *zap.Logger) *Handler {
	return &Handler{
		lifecycle: lifecycle,
		logger:    logger,
	}
}

// RegisterRoutes registers the user-facing claim routes on an
// authenticated group.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/items/:itemId/claims", h.submitClaim)
	router.GET("/items/:itemId/claims", h.listItemClaims)
	router.GET("/claims/mine", h.listOwnClaims)
	router.GET("/claims/:claimId", h.getClaim)
}

// RegisterAdminRoutes registers the adjudication routes on an admin-only
// group.
func (h *Handler) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.GET("/claims", h.listClaims)
	router.POST("/claims/:claimId/approve", h.approveClaim)
	router.POST("/claims/:claimId/reject", h.rejectClaim)
	router.POST("/items/:itemId/handover", h.handoverItem)
	router.DELETE("/items/:itemId", h.deleteItem)
}

// submitClaim handles POST /api/v1/items/:itemId/claims
func (h *Handler) submitClaim(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item ID"})
		return
	}

	var req SubmitClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := uuid.Parse(c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user identity"})
		return
	}

	claim, err := h.lifecycle.SubmitClaim(c.Request.Context(), itemID, userID, req.Proofs)
	if err != nil {
		h.respondError(c, err, "Failed to submit claim")
		return
	}

	c.JSON(http.StatusCreated, claim)
}

// listItemClaims handles GET /api/v1/items/:itemId/claims. The item's
// reporter and admins may see the claims on an item; claimants only see
// their own through /claims/mine.
func (h *Handler) listItemClaims(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item ID"})
		return
	}

	claims, item, err := h.lifecycle.ListItemClaims(c.Request.Context(), itemID)
	if err != nil {
		h.respondError(c, err, "Failed to list item claims")
		return
	}

	userID := c.GetString("userID")
	isReporter := item.CreatedByID.String() == userID
	if c.GetString("role") != "ADMIN" && !isReporter {
		filtered := make([]Claim, 0, len(claims))
		for _, claim := range claims {
			if claim.ClaimantID.String() == userID {
				filtered = append(filtered, claim)
			}
		}
		claims = filtered
	}

	c.JSON(http.StatusOK, gin.H{"claims": claims})
}

// listOwnClaims handles GET /api/v1/claims/mine
func (h *Handler) listOwnClaims(c *gin.Context) {
	userID, err := uuid.Parse(c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user identity"})
		return
	}

	claims, err := h.lifecycle.ListOwnClaims(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err, "Failed to list claims")
		return
	}

	c.JSON(http.StatusOK, gin.H{"claims": claims})
}

// getClaim handles GET /api/v1/claims/:claimId
func (h *Handler) getClaim(c *gin.Context) {
	claimID, err := uuid.Parse(c.Param("claimId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid claim ID"})
		return
	}

	claim, err := h.lifecycle.GetClaim(c.Request.Context(), claimID)
	if err != nil {
		h.respondError(c, err, "Failed to get claim")
		return
	}

	// Claimants, the item's reporter and admins only.
	if c.GetString("role") != "ADMIN" {
		userID := c.GetString("userID")
		isClaimant := claim.ClaimantID.String() == userID
		isReporter := claim.Item != nil && claim.Item.CreatedByID.String() == userID
		if !isClaimant && !isReporter {
			c.JSON(http.StatusForbidden, gin.H{"error": "you cannot view this claim"})
			return
		}
	}

	c.JSON(http.StatusOK, claim)
}

// listClaims handles GET /api/v1/admin/claims
func (h *Handler) listClaims(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	var status *ClaimStatus
	if s := c.Query("status"); s != "" {
		cs := ClaimStatus(s)
		if cs != StatusPending && cs != StatusApproved && cs != StatusRejected {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid claim status"})
			return
		}
		status = &cs
	}

	resp, err := h.lifecycle.ListClaims(c.Request.Context(), status, page, limit)
	if err != nil {
		h.respondError(c, err, "Failed to list claims")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// approveClaim handles POST /api/v1/admin/claims/:claimId/approve
func (h *Handler) approveClaim(c *gin.Context) {
	claimID, err := uuid.Parse(c.Param("claimId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid claim ID"})
		return
	}

	var req AdjudicateRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	adminID, err := uuid.Parse(c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user identity"})
		return
	}

	claim, err := h.lifecycle.ApproveClaim(c.Request.Context(), claimID, req.Comment, adminID)
	if err != nil {
		h.respondError(c, err, "Failed to approve claim")
		return
	}

	c.JSON(http.StatusOK, claim)
}

// rejectClaim handles POST /api/v1/admin/claims/:claimId/reject
func (h *Handler) rejectClaim(c *gin.Context) {
	claimID, err := uuid.Parse(c.Param("claimId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid claim ID"})
		return
	}

	var req AdjudicateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(strings.TrimSpace(req.Reason)) < 10 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rejection reason must be at least 10 characters"})
		return
	}

	adminID, err := uuid.Parse(c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user identity"})
		return
	}

	claim, err := h.lifecycle.RejectClaim(c.Request.Context(), claimID, req.Reason, adminID)
	if err != nil {
		h.respondError(c, err, "Failed to reject claim")
		return
	}

	c.JSON(http.StatusOK, claim)
}

// handoverItem handles POST /api/v1/admin/items/:itemId/handover
func (h *Handler) handoverItem(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item ID"})
		return
	}

	var req HandoverRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	adminID, err := uuid.Parse(c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user identity"})
		return
	}

	item, err := h.lifecycle.HandoverItem(c.Request.Context(), itemID, req.Notes, adminID)
	if err != nil {
		h.respondError(c, err, "Failed to hand over item")
		return
	}

	c.JSON(http.StatusOK, item)
}

// deleteItem handles DELETE /api/v1/admin/items/:itemId
func (h *Handler) deleteItem(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item ID"})
		return
	}

	var req DeleteItemRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	adminID, err := uuid.Parse(c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user identity"})
		return
	}

	if err := h.lifecycle.DeleteItem(c.Request.Context(), itemID, adminID, req.Reason); err != nil {
		h.respondError(c, err, "Failed to delete item")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "item deleted"})
}

func (h *Handler) respondError(c *gin.Context, err error, logMsg string) {
	if appErr, ok := apperrors.As(err); ok {
		c.JSON(appErr.Status, gin.H{"error": appErr.Message, "code": appErr.Code})
		return
	}
	h.logger.Error(logMsg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

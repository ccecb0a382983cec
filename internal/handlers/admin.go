package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"stilltime/api/internal/models"
	"stilltime/api/internal/service"
)

func (h HandlerSet) AdminListSessions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	sessions, err := h.sessionService.ListAll(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list sessions"})
		return
	}

	out := make([]gin.H, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, gin.H{
			"id":              s.ID,
			"userId":          s.UserID,
			"durationMinutes": s.DurationMinutes,
			"completedAt":     s.CompletedAt.UTC().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"sessions": out})
}

type adminSubscriptionRequest struct {
	UserID           string     `json:"userId" binding:"required"`
	Tier             string     `json:"tier" binding:"required"`
	Status           string     `json:"status" binding:"required,oneof=active canceled past_due"`
	CurrentPeriodEnd *time.Time `json:"currentPeriodEnd"`
}

// AdminSetSubscription is the manual stand-in for the checkout provider
// webhook: support uses it to grant or correct a plan.
func (h HandlerSet) AdminSetSubscription(c *gin.Context) {
	var req adminSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.subService.SetPlan(c.Request.Context(), service.SetPlanInput{
		UserID:           req.UserID,
		Tier:             req.Tier,
		Status:           models.SubscriptionStatus(req.Status),
		CurrentPeriodEnd: req.CurrentPeriodEnd,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not set subscription"})
		return
	}
	c.Status(http.StatusNoContent)
}

type adminUserStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active suspended"`
}

func (h HandlerSet) AdminSetUserStatus(c *gin.Context) {
	var req adminUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.UpdateStatus(c.Request.Context(), c.Param("id"), models.UserStatus(req.Status)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

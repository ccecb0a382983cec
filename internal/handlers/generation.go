package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stilltime/api/internal/metrics"
	"stilltime/api/internal/middleware"
	"stilltime/api/internal/models"
	"stilltime/api/internal/service"
)

type generateRequest struct {
	Prompt      string `json:"prompt" binding:"required"`
	Style       string `json:"style"`
	AspectRatio string `json:"aspectRatio" binding:"omitempty,oneof=1:1 16:9 9:16"`
}

type generationResponse struct {
	ID          string  `json:"id"`
	Status      string  `json:"status"`
	Prompt      string  `json:"prompt"`
	AspectRatio string  `json:"aspectRatio"`
	ImageURL    *string `json:"imageUrl,omitempty"`
	Error       *string `json:"error,omitempty"`
	CreatedAt   string  `json:"createdAt"`
}

func toGenerationResponse(r models.HourglassRequest) generationResponse {
	return generationResponse{
		ID:          r.ID,
		Status:      string(r.Status),
		Prompt:      r.Prompt,
		AspectRatio: r.AspectRatio,
		ImageURL:    r.ImageURL,
		Error:       r.ErrorMessage,
		CreatedAt:   r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h HandlerSet) GenerateHourglass(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.genService.Request(c.Request.Context(), service.GenerateInput{
		UserID:      user.ID,
		Prompt:      req.Prompt,
		Style:       req.Style,
		AspectRatio: req.AspectRatio,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGenerationLocked):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNoImageCredits):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	metrics.GenerationsEnqueuedTotal.Inc()
	c.JSON(http.StatusAccepted, gin.H{"request": toGenerationResponse(result)})
}

func (h HandlerSet) GenerationStatus(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	req, err := h.genService.Status(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": toGenerationResponse(req)})
}

func (h HandlerSet) LatestGeneration(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	req, err := h.genService.Latest(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load request"})
		return
	}
	if req == nil {
		c.JSON(http.StatusOK, gin.H{"request": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": toGenerationResponse(*req)})
}

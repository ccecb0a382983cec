package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stilltime/api/internal/middleware"
	"stilltime/api/internal/models"
	"stilltime/api/internal/service"
)

func (h HandlerSet) HourglassLibrary(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	entries, err := h.hgService.Library(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load library"})
		return
	}

	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		out = append(out, gin.H{
			"theme":    e.Theme,
			"unlocked": e.Unlocked,
			"selected": e.Selected,
		})
	}
	c.JSON(http.StatusOK, gin.H{"hourglasses": out})
}

type selectHourglassRequest struct {
	ThemeID string `json:"themeId" binding:"required"`
}

func (h HandlerSet) SelectHourglass(c *gin.Context) {
	var req selectHourglassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.hgService.Select(c.Request.Context(), user.ID, req.ThemeID); err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownTheme):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrThemeLocked):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not select theme"})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

type preferencesResponse struct {
	SelectedHourglassID string `json:"selectedHourglassId"`
	Theme               string `json:"theme"`
	EnableAnimations    bool   `json:"enableAnimations"`
	EnableSound         bool   `json:"enableSound"`
	EnableJournaling    bool   `json:"enableJournaling"`
}

func (h HandlerSet) GetPreferences(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	prefs, err := h.hgService.Preferences(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load preferences"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"preferences": preferencesResponse{
		SelectedHourglassID: prefs.SelectedHourglassID,
		Theme:               prefs.Theme,
		EnableAnimations:    prefs.EnableAnimations,
		EnableSound:         prefs.EnableSound,
		EnableJournaling:    prefs.EnableJournaling,
	}})
}

type putPreferencesRequest struct {
	SelectedHourglassID string `json:"selectedHourglassId"`
	Theme               string `json:"theme" binding:"omitempty,oneof=dark light"`
	EnableAnimations    *bool  `json:"enableAnimations"`
	EnableSound         *bool  `json:"enableSound"`
	EnableJournaling    *bool  `json:"enableJournaling"`
}

func (h HandlerSet) PutPreferences(c *gin.Context) {
	var req putPreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	current, err := h.hgService.Preferences(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load preferences"})
		return
	}

	next := models.Preferences{
		UserID:              user.ID,
		SelectedHourglassID: current.SelectedHourglassID,
		Theme:               current.Theme,
		EnableAnimations:    current.EnableAnimations,
		EnableSound:         current.EnableSound,
		EnableJournaling:    current.EnableJournaling,
	}
	if req.SelectedHourglassID != "" {
		next.SelectedHourglassID = req.SelectedHourglassID
	}
	if req.Theme != "" {
		next.Theme = req.Theme
	}
	if req.EnableAnimations != nil {
		next.EnableAnimations = *req.EnableAnimations
	}
	if req.EnableSound != nil {
		next.EnableSound = *req.EnableSound
	}
	if req.EnableJournaling != nil {
		next.EnableJournaling = *req.EnableJournaling
	}

	if err := h.hgService.SavePreferences(c.Request.Context(), next); err != nil {
		if errors.Is(err, service.ErrUnknownTheme) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save preferences"})
		return
	}
	c.Status(http.StatusNoContent)
}

package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"stilltime/api/internal/analytics"
	"stilltime/api/internal/metrics"
	"stilltime/api/internal/middleware"
	"stilltime/api/internal/models"
	"stilltime/api/internal/subscription"
)

type recordSessionRequest struct {
	DurationMinutes int     `json:"durationMinutes" binding:"required,min=1,max=480"`
	Theme           *string `json:"theme"`
	Prompt          *string `json:"prompt"`
}

type sessionResponse struct {
	ID              string  `json:"id"`
	DurationMinutes int     `json:"durationMinutes"`
	CompletedAt     string  `json:"completedAt"`
	HourglassTheme  *string `json:"hourglassTheme,omitempty"`
	CustomPrompt    *string `json:"customPrompt,omitempty"`
	Reflection      *string `json:"reflection,omitempty"`
}

func toSessionResponse(s models.FocusSession) sessionResponse {
	return sessionResponse{
		ID:              s.ID,
		DurationMinutes: s.DurationMinutes,
		CompletedAt:     s.CompletedAt.UTC().Format(time.RFC3339),
		HourglassTheme:  s.HourglassTheme,
		CustomPrompt:    s.CustomPrompt,
		Reflection:      s.Reflection,
	}
}

type statsResponse struct {
	TotalSessions     int      `json:"totalSessions"`
	TotalMinutes      int      `json:"totalMinutes"`
	TotalHours        int      `json:"totalHours"`
	MilestonesReached []string `json:"milestonesReached"`
}

func toStatsResponse(s models.UserStats) statsResponse {
	milestones := s.MilestonesReached
	if milestones == nil {
		milestones = []string{}
	}
	return statsResponse{
		TotalSessions:     s.TotalSessions,
		TotalMinutes:      s.TotalMinutes,
		TotalHours:        s.TotalHours,
		MilestonesReached: milestones,
	}
}

// RecordSession persists a completion reported by the client directly, for
// sessions timed offline. The trial gate applies the same as on start.
func (h HandlerSet) RecordSession(c *gin.Context) {
	var req recordSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if user.Anonymous {
		decision := h.trialService.Check(c.Request.Context(), user.ID)
		if !decision.Allowed {
			metrics.TrialRejectionsTotal.WithLabelValues(string(decision.Reason)).Inc()
			c.JSON(http.StatusForbidden, gin.H{"error": "trial_limit", "reason": decision.Reason})
			return
		}
	}

	result, err := h.sessionService.Record(c.Request.Context(), user.ID, req.DurationMinutes, req.Theme, req.Prompt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record session"})
		return
	}
	metrics.SessionsRecordedTotal.Inc()
	metrics.MilestonesReachedTotal.Add(float64(len(result.NewMilestones)))

	if user.Anonymous {
		h.trialService.RecordUse(c.Request.Context(), user.ID)
	}

	milestones := make([]gin.H, 0, len(result.NewMilestones))
	for _, m := range result.NewMilestones {
		milestones = append(milestones, gin.H{
			"id":      m.ID,
			"message": m.Message,
			"reward":  m.Reward,
		})
	}

	c.JSON(http.StatusCreated, gin.H{
		"session":       toSessionResponse(result.Session),
		"stats":         toStatsResponse(result.Stats),
		"newMilestones": milestones,
	})
}

func (h HandlerSet) ListSessions(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	sessions, err := h.sessionService.History(c.Request.Context(), user.ID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load sessions"})
		return
	}

	out := make([]sessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toSessionResponse(s))
	}
	c.JSON(http.StatusOK, gin.H{"sessions": out})
}

type reflectionRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h HandlerSet) SetReflection(c *gin.Context) {
	var req reflectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.sessionService.SetReflection(c.Request.Context(), c.Param("id"), user.ID, req.Text); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) UserStats(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	stats, err := h.sessionService.Stats(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": toStatsResponse(stats)})
}

// Analytics returns daily, weekly, and monthly aggregates plus the streak,
// computed over the trailing window. The dashboard is a paid feature.
func (h HandlerSet) Analytics(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if !h.hasFeature(c, user.ID, subscription.FeatureDashboard) {
		c.JSON(http.StatusForbidden, gin.H{"error": "upgrade_required", "feature": "dashboard"})
		return
	}

	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	if days < 1 || days > 365 {
		days = 30
	}

	now := h.clk.Now()
	since := now.AddDate(0, -12, 0)
	sessions, err := h.sessionService.HistorySince(c.Request.Context(), user.ID, since)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load sessions"})
		return
	}

	daily := analytics.AggregateByDay(sessions, now, days)
	c.JSON(http.StatusOK, gin.H{
		"daily":   daily,
		"weekly":  analytics.AggregateByWeek(sessions, 12),
		"monthly": analytics.AggregateByMonth(sessions, 12),
		"streak":  analytics.CalculateStreak(daily, now),
	})
}

// ExportSessions streams the full history as CSV. Registered accounts with
// the export feature only.
func (h HandlerSet) ExportSessions(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if !h.hasFeature(c, user.ID, subscription.FeatureExportData) {
		c.JSON(http.StatusForbidden, gin.H{"error": "upgrade_required", "feature": "exportData"})
		return
	}

	sessions, err := h.sessionService.History(c.Request.Context(), user.ID, 500)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load sessions"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="focus-sessions.csv"`)
	c.Data(http.StatusOK, "text/csv", []byte(analytics.ExportCSV(sessions)))
}

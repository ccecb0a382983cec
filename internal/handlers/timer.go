package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stilltime/api/internal/metrics"
	"stilltime/api/internal/middleware"
	"stilltime/api/internal/timer"
)

type timerStartRequest struct {
	DurationMinutes int     `json:"durationMinutes" binding:"required,min=1,max=480"`
	Theme           *string `json:"theme"`
	Prompt          *string `json:"prompt"`
}

type timerResponse struct {
	State            string  `json:"state"`
	DurationMinutes  int     `json:"durationMinutes"`
	RemainingSeconds int     `json:"remainingSeconds"`
	Display          string  `json:"display"`
	Progress         float64 `json:"progress"`
}

func toTimerResponse(s timer.Snapshot) timerResponse {
	return timerResponse{
		State:            string(s.State),
		DurationMinutes:  int(s.Duration / time.Minute),
		RemainingSeconds: int(s.Remaining / time.Second),
		Display:          timer.FormatRemaining(s.Remaining),
		Progress:         s.Progress,
	}
}

func (h HandlerSet) TimerStart(c *gin.Context) {
	var req timerStartRequest
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
			c.JSON(http.StatusForbidden, gin.H{
				"error":             "trial_limit",
				"reason":            decision.Reason,
				"sessionsRemaining": decision.SessionsRemaining,
				"daysRemaining":     decision.DaysRemaining,
			})
			return
		}
	}

	snapshot, err := h.timers.Start(user.ID, req.DurationMinutes, req.Theme, req.Prompt)
	if err != nil {
		if errors.Is(err, timer.ErrTimerAlreadyActive) {
			c.JSON(http.StatusConflict, gin.H{"error": "timer already active"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// The quota is spent on the start itself. An abandoned countdown still
	// consumed a trial session, and the next Check sees the charge before
	// this one can complete.
	if user.Anonymous {
		h.trialService.RecordUse(c.Request.Context(), user.ID)
	}

	c.JSON(http.StatusOK, gin.H{"timer": toTimerResponse(snapshot)})
}

func (h HandlerSet) TimerPause(c *gin.Context) {
	h.timerTransition(c, h.timers.Pause)
}

func (h HandlerSet) TimerResume(c *gin.Context) {
	h.timerTransition(c, h.timers.Resume)
}

func (h HandlerSet) timerTransition(c *gin.Context, op func(string) (timer.Snapshot, error)) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	snapshot, err := op(user.ID)
	if err != nil {
		status := http.StatusConflict
		if errors.Is(err, timer.ErrNoActiveTimer) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"timer": toTimerResponse(snapshot)})
}

// TimerEnd abandons the countdown. Nothing is recorded; only a timer that
// runs to zero counts as a session.
func (h HandlerSet) TimerEnd(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.timers.End(user.ID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h HandlerSet) TimerStatus(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	snapshot, err := h.timers.Get(user.ID)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"timer": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"timer": toTimerResponse(snapshot)})
}

func (h HandlerSet) TrialStatus(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if !user.Anonymous {
		c.JSON(http.StatusOK, gin.H{"trial": nil})
		return
	}

	decision := h.trialService.Check(c.Request.Context(), user.ID)
	c.JSON(http.StatusOK, gin.H{"trial": gin.H{
		"allowed":           decision.Allowed,
		"reason":            decision.Reason,
		"sessionsRemaining": decision.SessionsRemaining,
		"daysRemaining":     decision.DaysRemaining,
	}})
}

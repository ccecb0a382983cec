package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stilltime/api/internal/clock"
	"stilltime/api/internal/models"
	"stilltime/api/internal/timer"
	"stilltime/api/internal/trial"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeTrialGate struct {
	decision trial.Decision
	recorded int
}

func (f *fakeTrialGate) Check(_ context.Context, _ string) trial.Decision {
	return f.decision
}

func (f *fakeTrialGate) RecordUse(_ context.Context, _ string) {
	f.recorded++
}

func timerHandlerSet(gate *fakeTrialGate) HandlerSet {
	clk := clock.NewFake(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	return HandlerSet{
		clk:          clk,
		trialService: gate,
		timers:       timer.NewManager(clk, nil),
	}
}

func timerContext(user models.User, body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, "/v1/timer/start", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set("current_user", user)
	return c, w
}

func TestTimerStartChargesQuotaEvenWhenAbandoned(t *testing.T) {
	gate := &fakeTrialGate{decision: trial.Decision{Allowed: true, SessionsRemaining: 1}}
	h := timerHandlerSet(gate)
	user := models.User{ID: "u1", Anonymous: true}

	// First start is allowed and spends one session up front.
	c, w := timerContext(user, `{"durationMinutes":25}`)
	h.TimerStart(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, gate.recorded)

	// Abandoning the countdown does not hand the session back.
	c, w = timerContext(user, "")
	h.TimerEnd(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1, gate.recorded)

	// A start/end cycle per attempt charges every attempt.
	c, w = timerContext(user, `{"durationMinutes":25}`)
	h.TimerStart(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, gate.recorded)
}

func TestTimerStartRejectedLeavesQuotaUntouched(t *testing.T) {
	gate := &fakeTrialGate{decision: trial.Decision{Allowed: false, Reason: trial.ReasonDailyLimit}}
	h := timerHandlerSet(gate)
	user := models.User{ID: "u1", Anonymous: true}

	c, w := timerContext(user, `{"durationMinutes":25}`)
	h.TimerStart(c)

	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "daily_limit")
	assert.Zero(t, gate.recorded)

	_, err := h.timers.Get(user.ID)
	assert.ErrorIs(t, err, timer.ErrNoActiveTimer)
}

func TestTimerStartSkipsGateForRegisteredUsers(t *testing.T) {
	gate := &fakeTrialGate{decision: trial.Decision{Allowed: false, Reason: trial.ReasonDailyLimit}}
	h := timerHandlerSet(gate)
	user := models.User{ID: "u2", Anonymous: false}

	c, w := timerContext(user, `{"durationMinutes":25}`)
	h.TimerStart(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, gate.recorded)
}

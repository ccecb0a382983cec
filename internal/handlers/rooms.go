package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"stilltime/api/internal/middleware"
	"stilltime/api/internal/models"
	"stilltime/api/internal/service"
)

func (h HandlerSet) ListRooms(c *gin.Context) {
	summaries, err := h.roomService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load rooms"})
		return
	}

	out := make([]gin.H, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, gin.H{
			"id":          s.Room.ID,
			"name":        s.Room.Name,
			"emoji":       s.Room.Emoji,
			"description": s.Room.Description,
			"memberCount": s.MemberCount,
		})
	}
	c.JSON(http.StatusOK, gin.H{"rooms": out})
}

func (h HandlerSet) JoinRoom(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	presence, err := h.roomService.Join(c.Request.Context(), user.ID, c.Param("id"), user.DisplayName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoomNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrRoomsLocked):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not join room"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"presence": toPresenceResponse(presence)})
}

func (h HandlerSet) LeaveRoom(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.roomService.Leave(c.Request.Context(), user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not leave room"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) RoomHeartbeat(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.roomService.Heartbeat(c.Request.Context(), user.ID); err != nil {
		if errors.Is(err, service.ErrNotInRoom) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "heartbeat failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) RoomMembers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	members, err := h.roomService.Members(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load members"})
		return
	}

	out := make([]gin.H, 0, len(members))
	for _, m := range members {
		out = append(out, toPresenceResponse(m))
	}
	c.JSON(http.StatusOK, gin.H{"members": out})
}

// RoomLeaderboard ranks current members by accumulated focus hours.
func (h HandlerSet) RoomLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	members, err := h.roomService.Members(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load leaderboard"})
		return
	}

	entries := make([]gin.H, 0, len(members))
	for i, m := range members {
		entries = append(entries, gin.H{
			"rank":       i + 1,
			"userId":     m.UserID,
			"username":   m.Username,
			"totalHours": m.TotalHoursAtJoin,
		})
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

func toPresenceResponse(p models.RoomPresence) gin.H {
	return gin.H{
		"userId":           p.UserID,
		"roomId":           p.RoomID,
		"username":         p.Username,
		"joinedAt":         p.JoinedAt.UTC().Format(time.RFC3339),
		"totalHoursAtJoin": p.TotalHoursAtJoin,
	}
}

package models

import "time"

// Room is a themed study room from the static catalog.
type Room struct {
	ID          string
	Name        string
	Emoji       string
	Description string
}

// RoomPresence is one user's live membership in a room, kept alive by
// heartbeats and swept once stale.
type RoomPresence struct {
	UserID           string
	RoomID           string
	Username         string
	JoinedAt         time.Time
	LastActiveAt     time.Time
	TotalHoursAtJoin int
}

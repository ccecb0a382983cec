package models

import "time"

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// User is either an anonymous identity (no email, created on first visit) or
// a registered account an anonymous identity was upgraded into.
type User struct {
	ID           string
	Email        *string
	PasswordHash []byte
	DisplayName  string
	Anonymous    bool
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AuthSession is one device's refresh-token session.
type AuthSession struct {
	ID               string
	UserID           string
	DeviceID         string
	DeviceName       string
	RefreshTokenHash []byte
	IPAddress        string
	UserAgent        string
	CreatedAt        time.Time
	LastSeenAt       time.Time
	ExpiresAt        time.Time
}

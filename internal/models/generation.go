package models

import "time"

type GenerationStatus string

const (
	GenerationStatusPending    GenerationStatus = "pending"
	GenerationStatusProcessing GenerationStatus = "processing"
	GenerationStatusCompleted  GenerationStatus = "completed"
	GenerationStatusFailed     GenerationStatus = "failed"
)

// HourglassRequest is a user's custom AI hourglass image request. The API
// records it pending and a worker moves it through processing to
// completed/failed.
type HourglassRequest struct {
	ID           string
	UserID       string
	Prompt       string
	AspectRatio  string
	Status       GenerationStatus
	ImageURL     *string
	ErrorMessage *string
	CreatedAt    time.Time
	CompletedAt  *time.Time
}

// Package progress holds the static milestone catalog and the evaluator
// that detects thresholds newly crossed by a completed session.
package progress

type MilestoneKind string

const (
	KindSessions MilestoneKind = "sessions"
	KindHours    MilestoneKind = "hours"
)

type RewardKind string

const (
	RewardHourglass RewardKind = "hourglass"
	RewardFeature   RewardKind = "feature"
)

type Reward struct {
	Kind RewardKind `json:"type"`
	ID   string     `json:"id"`
}

type Milestone struct {
	ID        string        `json:"id"`
	Kind      MilestoneKind `json:"type"`
	Threshold int           `json:"value"`
	Message   string        `json:"message"`
	Reward    *Reward       `json:"reward,omitempty"`
}

// Milestones is the full catalog in award order. Evaluation walks it in
// order so a single long session that crosses several thresholds reports
// them all, session milestones first.
var Milestones = []Milestone{
	{
		ID:        "first-session",
		Kind:      KindSessions,
		Threshold: 1,
		Message:   "Great start! You have completed your first focus session.",
	},
	{
		ID:        "three-sessions",
		Kind:      KindSessions,
		Threshold: 3,
		Message:   "You have unlocked symbolic hourglasses! Choose one that resonates with you.",
		Reward:    &Reward{Kind: RewardFeature, ID: "phase2_unlock"},
	},
	{
		ID:        "ten-sessions",
		Kind:      KindSessions,
		Threshold: 10,
		Message:   "Ten sessions! You are building a meaningful practice.",
		Reward:    &Reward{Kind: RewardHourglass, ID: "new-beginnings"},
	},
	{
		ID:        "twentyfive-sessions",
		Kind:      KindSessions,
		Threshold: 25,
		Message:   "25 sessions of dedication. Look how far you have come!",
	},
	{
		ID:        "fifty-sessions",
		Kind:      KindSessions,
		Threshold: 50,
		Message:   "Incredible! 50 sessions completed. Your commitment is inspiring.",
	},
	{
		ID:        "hundred-sessions",
		Kind:      KindSessions,
		Threshold: 100,
		Message:   "100 sessions! You have unlocked the Aurora and Phoenix hourglasses.",
		Reward:    &Reward{Kind: RewardHourglass, ID: "aurora"},
	},
	{
		ID:        "twofifty-sessions",
		Kind:      KindSessions,
		Threshold: 250,
		Message:   "250 sessions of focused time. You are embodying discipline and purpose.",
	},
	{
		ID:        "ten-hours",
		Kind:      KindHours,
		Threshold: 10,
		Message:   "10 hours focused! That is real progress.",
	},
	{
		ID:        "twentyfive-hours",
		Kind:      KindHours,
		Threshold: 25,
		Message:   "25 hours of dedication. Time well spent.",
	},
	{
		ID:        "fifty-hours",
		Kind:      KindHours,
		Threshold: 50,
		Message:   "50 hours! You have unlocked new cosmic hourglasses.",
		Reward:    &Reward{Kind: RewardHourglass, ID: "galaxy"},
	},
	{
		ID:        "hundred-hours",
		Kind:      KindHours,
		Threshold: 100,
		Message:   "100 hours of deep work. You are investing in yourself beautifully.",
	},
	{
		ID:        "twofifty-hours",
		Kind:      KindHours,
		Threshold: 250,
		Message:   "250 hours focused. This is transformation in action.",
	},
	{
		ID:        "fivehundred-hours",
		Kind:      KindHours,
		Threshold: 500,
		Message:   "500 hours. You have created something extraordinary through consistency.",
	},
}

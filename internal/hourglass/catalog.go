// Package hourglass holds the static catalog of cosmetic timer themes and
// the resolver that decides which ones a user has unlocked.
package hourglass

type RequirementKind string

const (
	RequirementSessions     RequirementKind = "sessions"
	RequirementHours        RequirementKind = "hours"
	RequirementSubscription RequirementKind = "subscription"
)

type Requirement struct {
	Kind  RequirementKind `json:"type"`
	Value int             `json:"value,omitempty"`
}

type Theme struct {
	ID           string       `json:"id"`
	PromptKey    string       `json:"promptKey"`
	PromptText   string       `json:"promptText"`
	Symbolism    string       `json:"symbolism"`
	VideoURL     string       `json:"videoUrl"`
	ThumbnailURL string       `json:"thumbnailUrl,omitempty"`
	Palette      string       `json:"theme"`
	Requirement  *Requirement `json:"unlockRequirement,omitempty"`
}

// DefaultThemeID is always available and is the fallback whenever a
// selected theme is no longer unlocked.
const DefaultThemeID = "zen-default"

var Catalog = []Theme{
	{
		ID:         "zen-default",
		PromptKey:  "default",
		PromptText: "focus",
		Symbolism:  "clarity",
		VideoURL:   "/assets/hourglasses/zen-default.mp4",
		Palette:    "zen",
	},

	// Unlocked after 3 sessions.
	{
		ID:          "breathe",
		PromptKey:   "breathe",
		PromptText:  "breathe",
		Symbolism:   "calm",
		VideoURL:    "/assets/hourglasses/breathe.mp4",
		Palette:     "zen",
		Requirement: &Requirement{Kind: RequirementSessions, Value: 3},
	},
	{
		ID:          "study-mcat",
		PromptKey:   "study_mcat",
		PromptText:  "study for the MCAT",
		Symbolism:   "dedication",
		VideoURL:    "/assets/hourglasses/study-mcat.mp4",
		Palette:     "zen",
		Requirement: &Requirement{Kind: RequirementSessions, Value: 3},
	},
	{
		ID:          "focus-matters",
		PromptKey:   "focus_matters",
		PromptText:  "focus on what matters",
		Symbolism:   "priority",
		VideoURL:    "/assets/hourglasses/focus-matters.mp4",
		Palette:     "zen",
		Requirement: &Requirement{Kind: RequirementSessions, Value: 3},
	},
	{
		ID:          "remember-goals",
		PromptKey:   "remember_goals",
		PromptText:  "remember your goals",
		Symbolism:   "vision",
		VideoURL:    "/assets/hourglasses/remember-goals.mp4",
		Palette:     "zen",
		Requirement: &Requirement{Kind: RequirementSessions, Value: 3},
	},

	// Unlocked after 10 sessions.
	{
		ID:          "new-beginnings",
		PromptKey:   "new_beginnings",
		PromptText:  "start fresh",
		Symbolism:   "renewal",
		VideoURL:    "/assets/hourglasses/new-beginnings.mp4",
		Palette:     "dusk",
		Requirement: &Requirement{Kind: RequirementSessions, Value: 10},
	},
	{
		ID:          "trust-process",
		PromptKey:   "trust_process",
		PromptText:  "trust the process",
		Symbolism:   "faith",
		VideoURL:    "/assets/hourglasses/trust-process.mp4",
		Palette:     "dusk",
		Requirement: &Requirement{Kind: RequirementSessions, Value: 10},
	},
	{
		ID:          "be-present",
		PromptKey:   "be_present",
		PromptText:  "be present",
		Symbolism:   "mindfulness",
		VideoURL:    "/assets/hourglasses/be-present.mp4",
		Palette:     "dusk",
		Requirement: &Requirement{Kind: RequirementSessions, Value: 10},
	},

	// Unlocked after 50 hours total.
	{
		ID:          "galaxy",
		PromptKey:   "galaxy",
		PromptText:  "reach for the stars",
		Symbolism:   "ambition",
		VideoURL:    "/assets/hourglasses/galaxy.mp4",
		Palette:     "midnight",
		Requirement: &Requirement{Kind: RequirementHours, Value: 50},
	},
	{
		ID:          "ocean-waves",
		PromptKey:   "ocean_waves",
		PromptText:  "flow like water",
		Symbolism:   "adaptability",
		VideoURL:    "/assets/hourglasses/ocean-waves.mp4",
		Palette:     "midnight",
		Requirement: &Requirement{Kind: RequirementHours, Value: 50},
	},

	// Unlocked after 100 hours total.
	{
		ID:          "aurora",
		PromptKey:   "aurora",
		PromptText:  "embrace transformation",
		Symbolism:   "growth",
		VideoURL:    "/assets/hourglasses/aurora.mp4",
		Palette:     "midnight",
		Requirement: &Requirement{Kind: RequirementHours, Value: 100},
	},
	{
		ID:          "phoenix",
		PromptKey:   "phoenix",
		PromptText:  "rise again",
		Symbolism:   "resilience",
		VideoURL:    "/assets/hourglasses/phoenix.mp4",
		Palette:     "midnight",
		Requirement: &Requirement{Kind: RequirementHours, Value: 100},
	},

	// Paid subscription required.
	{
		ID:          "cosmic-love",
		PromptKey:   "cosmic_love",
		PromptText:  "cultivate love",
		Symbolism:   "compassion",
		VideoURL:    "/assets/hourglasses/cosmic-love.mp4",
		Palette:     "midnight",
		Requirement: &Requirement{Kind: RequirementSubscription},
	},
	{
		ID:          "inner-peace",
		PromptKey:   "inner_peace",
		PromptText:  "find inner peace",
		Symbolism:   "serenity",
		VideoURL:    "/assets/hourglasses/inner-peace.mp4",
		Palette:     "midnight",
		Requirement: &Requirement{Kind: RequirementSubscription},
	},
}

// ByID looks a theme up in the catalog.
func ByID(id string) (Theme, bool) {
	for _, t := range Catalog {
		if t.ID == id {
			return t, true
		}
	}
	return Theme{}, false
}

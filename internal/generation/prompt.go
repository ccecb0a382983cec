package generation

import (
	"errors"
	"fmt"
	"strings"
)

const (
	minPromptLen = 10
	maxPromptLen = 500
)

var (
	ErrPromptEmpty    = errors.New("prompt cannot be empty")
	ErrPromptTooShort = fmt.Errorf("prompt too short, minimum %d characters", minPromptLen)
	ErrPromptTooLong  = fmt.Errorf("prompt too long, maximum %d characters", maxPromptLen)
	ErrPromptBlocked  = errors.New("prompt contains inappropriate content")
)

var blockedWords = []string{"nsfw", "explicit", "nude", "violent", "gore"}

// ValidatePrompt applies length and content checks before any credits are
// spent on a request.
func ValidatePrompt(prompt string) error {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return ErrPromptEmpty
	}
	if len(trimmed) < minPromptLen {
		return ErrPromptTooShort
	}
	if len(trimmed) > maxPromptLen {
		return ErrPromptTooLong
	}

	lower := strings.ToLower(trimmed)
	for _, word := range blockedWords {
		if strings.Contains(lower, word) {
			return ErrPromptBlocked
		}
	}
	return nil
}

// EnhancePrompt wraps the user's idea in the hourglass house style so the
// model stays on brand: an elegant hourglass, centered, usable as a timer
// background.
func EnhancePrompt(userPrompt string, style string) string {
	if style == "" {
		style = "photographic"
	}

	lower := strings.ToLower(userPrompt)
	mood := "Calm and focused"
	switch {
	case strings.Contains(lower, "calm"):
		mood = "Peaceful and serene"
	case strings.Contains(lower, "energetic"):
		mood = "Vibrant and energizing"
	case strings.Contains(lower, "dark"):
		mood = "Moody and atmospheric"
	}

	return fmt.Sprintf(
		"A mesmerizing hourglass timer in %s style with %s. "+
			"The hourglass should be elegant and calming, with flowing sand or particles. "+
			"Professional photography, high detail, 4k quality, centered composition. "+
			"%s atmosphere, perfect for a focus timer background.",
		style, strings.TrimSpace(userPrompt), mood,
	)
}

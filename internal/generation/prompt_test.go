package generation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePrompt(t *testing.T) {
	assert.ErrorIs(t, ValidatePrompt(""), ErrPromptEmpty)
	assert.ErrorIs(t, ValidatePrompt("   "), ErrPromptEmpty)
	assert.ErrorIs(t, ValidatePrompt("too short"), ErrPromptTooShort)
	assert.ErrorIs(t, ValidatePrompt(strings.Repeat("a", 501)), ErrPromptTooLong)
	assert.NoError(t, ValidatePrompt(strings.Repeat("a", 500)))
	assert.NoError(t, ValidatePrompt("golden sand in moonlight"))
}

func TestValidatePromptBlocksContent(t *testing.T) {
	assert.ErrorIs(t, ValidatePrompt("an explicit scene of chaos"), ErrPromptBlocked)
	assert.ErrorIs(t, ValidatePrompt("NSFW hourglass please"), ErrPromptBlocked)
	assert.ErrorIs(t, ValidatePrompt("rivers of gore flowing"), ErrPromptBlocked)
}

func TestEnhancePromptWrapsUserIdea(t *testing.T) {
	out := EnhancePrompt("golden sand in moonlight", "")

	assert.Contains(t, out, "golden sand in moonlight")
	assert.Contains(t, out, "photographic style")
	assert.Contains(t, out, "hourglass")
}

func TestEnhancePromptMoodDetection(t *testing.T) {
	assert.Contains(t, EnhancePrompt("a calm forest stream", "watercolor"), "Peaceful and serene")
	assert.Contains(t, EnhancePrompt("energetic neon city", ""), "Vibrant and energizing")
	assert.Contains(t, EnhancePrompt("dark stormy ocean", ""), "Moody and atmospheric")
	assert.Contains(t, EnhancePrompt("quiet library desk", ""), "Calm and focused")
}

func TestEnhancePromptCustomStyle(t *testing.T) {
	out := EnhancePrompt("mountain sunrise glow", "oil painting")
	assert.Contains(t, out, "oil painting style")
}

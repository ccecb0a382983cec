package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ReadTimeout)

	assert.Equal(t, "generation:requests", cfg.Redis.Stream)
	assert.Equal(t, "generation-workers", cfg.Redis.Group)
	assert.Equal(t, time.Minute, cfg.Redis.ClaimInterval)

	assert.Equal(t, 2, cfg.Trial.DailySessionLimit)
	assert.Equal(t, 7, cfg.Trial.DurationDays)

	assert.Equal(t, "stilltime-assets", cfg.Storage.BucketAssets)
	assert.NotEmpty(t, cfg.Generation.Model)
	assert.Positive(t, cfg.Rooms.PresenceTTL)
	assert.Positive(t, cfg.Rooms.SweepInterval)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("STILLTIME_ENVIRONMENT", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("1.2.3")
	require.NoError(t, err)

	assert.Equal(t, "1.2.3", cfg.Version)
	assert.Equal(t, "8343", cfg.Port)
	assert.Equal(t, 20, cfg.Detector.MaxCandidates)
	assert.Equal(t, 4, cfg.Overlap.Workers)
	assert.InDelta(t, 0.5, cfg.Scoring.MatchRateWeight, 1e-9)
	assert.False(t, cfg.Hints.Enabled)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("OVERLAP_WORKERS", "8")
	t.Setenv("HINTS_API_KEY", "test-secret")

	cfg, err := Load("dev")
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 8, cfg.Overlap.Workers)
	assert.Equal(t, "test-secret", cfg.Hints.APIKey)
}

func TestValidate(t *testing.T) {
	t.Run("default is valid", func(t *testing.T) {
		assert.NoError(t, Default().validate())
	})

	t.Run("workers must be positive", func(t *testing.T) {
		cfg := Default()
		cfg.Overlap.Workers = 0
		assert.Error(t, cfg.validate())
	})

	t.Run("weights bounded", func(t *testing.T) {
		cfg := Default()
		cfg.Scoring.MatchRateWeight = 1.5
		assert.Error(t, cfg.validate())
	})

	t.Run("weights must not all be zero", func(t *testing.T) {
		cfg := Default()
		cfg.Scoring.MatchRateWeight = 0
		cfg.Scoring.DateOverlapWeight = 0
		cfg.Scoring.DuplicationWeight = 0
		assert.Error(t, cfg.validate())
	})

	t.Run("unknown hint provider", func(t *testing.T) {
		cfg := Default()
		cfg.Hints.Provider = "cohere"
		assert.Error(t, cfg.validate())
	})
}

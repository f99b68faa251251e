// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Validation Tests
// ==========================

func validTestConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func TestValidateConfig_DefaultsAreValid(t *testing.T) {
	assert.NoError(t, validateConfig(validTestConfig()))
}

func TestValidateConfig_RejectsOutOfRangeTunables(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "negative workers",
			mutate:  func(c *Config) { c.Engine.Workers = -1 },
			wantErr: "engine.workers",
		},
		{
			name:    "neutral score above one",
			mutate:  func(c *Config) { c.Engine.NeutralScore = 1.5 },
			wantErr: "engine.neutral_score",
		},
		{
			name:    "uncertainty penalty not below neutral",
			mutate:  func(c *Config) { c.Engine.UncertaintyPenalty = 0.5 },
			wantErr: "engine.uncertainty_penalty",
		},
		{
			name:    "negative importance weight",
			mutate:  func(c *Config) { c.Engine.ImportanceWeights[ImportanceSomewhat] = -0.5 },
			wantErr: "must not be negative",
		},
		{
			name:    "missing importance level",
			mutate:  func(c *Config) { delete(c.Engine.ImportanceWeights, ImportanceVeryImportant) },
			wantErr: "is missing",
		},
		{
			name:    "section weights do not sum to one",
			mutate:  func(c *Config) { c.Engine.SectionWeights[SectionLifestyle] = 0.9 },
			wantErr: "must sum to 1.0",
		},
		{
			name:    "unknown section",
			mutate:  func(c *Config) { c.Engine.SectionWeights["astrology"] = 0.0 },
			wantErr: "unknown section",
		},
		{
			name:    "alpha above one",
			mutate:  func(c *Config) { c.Engine.PairScoreAlpha = 1.2 },
			wantErr: "engine.pair_score_alpha",
		},
		{
			name:    "min pair score above scale",
			mutate:  func(c *Config) { c.Engine.MinPairScore = 150 },
			wantErr: "engine.min_pair_score",
		},
		{
			name:    "unknown directional strategy",
			mutate:  func(c *Config) { c.Engine.DirectionalStrategy = "fuzzy" },
			wantErr: "engine.directional_strategy",
		},
		{
			name: "affection weights off balance",
			mutate: func(c *Config) {
				c.Engine.Affection.ShowWeight = 0.9
				c.Engine.Affection.ReceiveWeight = 0.9
			},
			wantErr: "affection weights must sum",
		},
		{
			name: "asymmetric conflict matrix",
			mutate: func(c *Config) {
				c.Engine.Conflict.Matrix["direct"]["avoidant"] = 0.9
			},
			wantErr: "not symmetric",
		},
		{
			name: "conflict matrix missing diagonal",
			mutate: func(c *Config) {
				delete(c.Engine.Conflict.Matrix["direct"], "direct")
			},
			wantErr: "missing diagonal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// ==========================
// File Loading Tests
// ==========================

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
app:
  name: test-engine
engine:
  version: "tuning-x"
  workers: 2
  pair_score_alpha: 0.8
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "test-engine", cfg.App.Name)
	assert.Equal(t, "tuning-x", cfg.Engine.Version)
	assert.Equal(t, 2, cfg.Engine.Workers)
	assert.Equal(t, 0.8, cfg.Engine.PairScoreAlpha)
	// Everything not set in the file comes from the defaults.
	assert.Equal(t, 0.5, cfg.Engine.NeutralScore)
	assert.NotEmpty(t, cfg.Engine.Conflict.Matrix)
}

func TestLoadFromFile_InvalidTuningFailsAtStartup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
engine:
  relative_floor: 2.5
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine.relative_floor")
}

func TestDefaultEngine(t *testing.T) {
	e := DefaultEngine()
	assert.Equal(t, 0.65, e.PairScoreAlpha)
	assert.Equal(t, 50.0, e.MinPairScore)
	assert.Equal(t, 0.6, e.RelativeFloor)
	assert.Equal(t, "strict", e.DirectionalStrategy)
}

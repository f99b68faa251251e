// internal/common/config/loader.go
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like DB_PASSWORD
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment overlay, ignored when absent.
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile loads configuration from a specific file path. The tuning
// compare tool uses this to run the same snapshot under two tunings.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Load .env from multiple possible locations so tools and tests work from
// nested directories.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// Direct override if config values are still empty after expansion
func overrideEmptyConfig(cfg *Config) {
	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
	if cfg.Database.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Database.Redis.Password = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields.
// Every default mirrors the reference tuning documented in SPEC_FULL.md.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "match-engine"
	}
	if cfg.App.MetricsAddr == "" {
		cfg.App.MetricsAddr = ":9090"
	}

	// Database defaults
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	e := &cfg.Engine
	if e.Version == "" {
		e.Version = "v1"
	}
	if e.Workers == 0 {
		e.Workers = runtime.NumCPU()
	}
	if e.NeutralScore == 0 {
		e.NeutralScore = 0.5
	}
	if e.UncertaintyPenalty == 0 {
		e.UncertaintyPenalty = 0.3
	}
	if len(e.ImportanceWeights) == 0 {
		e.ImportanceWeights = map[string]float64{
			ImportanceNotImportant:  0,
			ImportanceSomewhat:      0.5,
			ImportanceImportant:     1.0,
			ImportanceVeryImportant: 2.0,
		}
	}
	if len(e.SectionWeights) == 0 {
		e.SectionWeights = map[string]float64{
			SectionLifestyle:   0.65,
			SectionPersonality: 0.35,
		}
	}
	if e.PairScoreAlpha == 0 {
		e.PairScoreAlpha = 0.65
	}
	if e.MinPairScore == 0 {
		e.MinPairScore = 50
	}
	if e.RelativeFloor == 0 {
		e.RelativeFloor = 0.6
	}
	if e.DiagnosticsTop == 0 {
		e.DiagnosticsTop = 3
	}
	if e.DirectionalStrategy == "" {
		e.DirectionalStrategy = "strict"
	}
	if e.DirectionalSoftMet == 0 {
		e.DirectionalSoftMet = 1.0
	}
	if e.DirectionalSoftUnmet == 0 {
		e.DirectionalSoftUnmet = 0.5
	}
	if e.Affection.ShowWeight == 0 && e.Affection.ReceiveWeight == 0 {
		e.Affection.ShowWeight = 0.6
		e.Affection.ReceiveWeight = 0.4
	}
	if e.Conflict.OverlapWeight == 0 && e.Conflict.MatrixWeight == 0 {
		e.Conflict.OverlapWeight = 0.6
		e.Conflict.MatrixWeight = 0.4
	}
	if len(e.Conflict.Matrix) == 0 {
		e.Conflict.Matrix = DefaultConflictMatrix()
	}
	if e.Sleep.MismatchScore == 0 {
		e.Sleep.MismatchScore = 0.3
	}
	if e.Sleep.BothIrregularScore == 0 {
		e.Sleep.BothIrregularScore = 0.5
	}
	if e.RunLockTTLSeconds == 0 {
		e.RunLockTTLSeconds = 1800
	}
	if e.ResultTTLSeconds == 0 {
		e.ResultTTLSeconds = 7 * 24 * 3600
	}
}

// validateConfig rejects out-of-range tunables before any scoring begins.
// Silently clamping would produce misleading diagnostics, so the run fails
// here instead.
func validateConfig(cfg *Config) error {
	e := cfg.Engine

	if e.Workers < 1 {
		return fmt.Errorf("engine.workers must be >= 1, got %d", e.Workers)
	}
	if err := unitRange("engine.neutral_score", e.NeutralScore); err != nil {
		return err
	}
	if err := unitRange("engine.uncertainty_penalty", e.UncertaintyPenalty); err != nil {
		return err
	}
	if e.UncertaintyPenalty >= e.NeutralScore {
		return fmt.Errorf("engine.uncertainty_penalty must be below engine.neutral_score, got %v >= %v",
			e.UncertaintyPenalty, e.NeutralScore)
	}
	for name, w := range e.ImportanceWeights {
		if w < 0 {
			return fmt.Errorf("engine.importance_weights.%s must not be negative, got %v", name, w)
		}
	}
	for _, key := range []string{ImportanceNotImportant, ImportanceSomewhat, ImportanceImportant, ImportanceVeryImportant} {
		if _, ok := e.ImportanceWeights[key]; !ok {
			return fmt.Errorf("engine.importance_weights is missing %q", key)
		}
	}

	sectionSum := 0.0
	for name, w := range e.SectionWeights {
		if name != SectionLifestyle && name != SectionPersonality {
			return fmt.Errorf("engine.section_weights has unknown section %q", name)
		}
		if w < 0 || w > 1 {
			return fmt.Errorf("engine.section_weights.%s must be within [0,1], got %v", name, w)
		}
		sectionSum += w
	}
	if math.Abs(sectionSum-1.0) > 1e-9 {
		return fmt.Errorf("engine.section_weights must sum to 1.0, got %v", sectionSum)
	}

	if err := unitRange("engine.pair_score_alpha", e.PairScoreAlpha); err != nil {
		return err
	}
	if e.MinPairScore < 0 || e.MinPairScore > 100 {
		return fmt.Errorf("engine.min_pair_score must be within [0,100], got %v", e.MinPairScore)
	}
	if err := unitRange("engine.relative_floor", e.RelativeFloor); err != nil {
		return err
	}
	if e.DiagnosticsTop < 1 {
		return fmt.Errorf("engine.diagnostics_top must be >= 1, got %d", e.DiagnosticsTop)
	}

	switch e.DirectionalStrategy {
	case "strict", "soft":
	default:
		return fmt.Errorf("engine.directional_strategy must be \"strict\" or \"soft\", got %q", e.DirectionalStrategy)
	}
	if e.DirectionalSoftMet < 0 || e.DirectionalSoftUnmet < 0 {
		return fmt.Errorf("engine directional soft multipliers must not be negative")
	}

	if err := unitRange("engine.affection.show_weight", e.Affection.ShowWeight); err != nil {
		return err
	}
	if err := unitRange("engine.affection.receive_weight", e.Affection.ReceiveWeight); err != nil {
		return err
	}
	if math.Abs(e.Affection.ShowWeight+e.Affection.ReceiveWeight-1.0) > 1e-9 {
		return fmt.Errorf("engine.affection weights must sum to 1.0")
	}

	if err := unitRange("engine.conflict.overlap_weight", e.Conflict.OverlapWeight); err != nil {
		return err
	}
	if err := unitRange("engine.conflict.matrix_weight", e.Conflict.MatrixWeight); err != nil {
		return err
	}
	if math.Abs(e.Conflict.OverlapWeight+e.Conflict.MatrixWeight-1.0) > 1e-9 {
		return fmt.Errorf("engine.conflict weights must sum to 1.0")
	}
	if err := validateMatrix(e.Conflict.Matrix); err != nil {
		return err
	}

	if err := unitRange("engine.sleep.mismatch_score", e.Sleep.MismatchScore); err != nil {
		return err
	}
	if err := unitRange("engine.sleep.both_irregular_score", e.Sleep.BothIrregularScore); err != nil {
		return err
	}

	return nil
}

func unitRange(name string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%s must be within [0,1], got %v", name, v)
	}
	return nil
}

// validateMatrix checks that the conflict matrix is symmetric with every
// entry in [0,1] and a full diagonal.
func validateMatrix(matrix map[string]map[string]float64) error {
	if len(matrix) == 0 {
		return fmt.Errorf("engine.conflict.matrix must not be empty")
	}
	for a, row := range matrix {
		if _, ok := row[a]; !ok {
			return fmt.Errorf("engine.conflict.matrix missing diagonal entry for %q", a)
		}
		for b, v := range row {
			if v < 0 || v > 1 {
				return fmt.Errorf("engine.conflict.matrix[%s][%s] must be within [0,1], got %v", a, b, v)
			}
			mirror, ok := matrix[b]
			if !ok {
				return fmt.Errorf("engine.conflict.matrix missing row for %q", b)
			}
			if mv, ok := mirror[a]; !ok || mv != v {
				return fmt.Errorf("engine.conflict.matrix is not symmetric at [%s][%s]", a, b)
			}
		}
	}
	return nil
}

// DefaultConflictMatrix is the reference compatibility table for the five
// conflict styles. Loaded once; configuration may replace it wholesale.
func DefaultConflictMatrix() map[string]map[string]float64 {
	return map[string]map[string]float64{
		"direct": {
			"direct": 1.0, "accommodating": 0.7, "avoidant": 0.3, "analytical": 0.8, "expressive": 0.6,
		},
		"accommodating": {
			"direct": 0.7, "accommodating": 1.0, "avoidant": 0.6, "analytical": 0.7, "expressive": 0.7,
		},
		"avoidant": {
			"direct": 0.3, "accommodating": 0.6, "avoidant": 1.0, "analytical": 0.5, "expressive": 0.2,
		},
		"analytical": {
			"direct": 0.8, "accommodating": 0.7, "avoidant": 0.5, "analytical": 1.0, "expressive": 0.5,
		},
		"expressive": {
			"direct": 0.6, "accommodating": 0.7, "avoidant": 0.2, "analytical": 0.5, "expressive": 1.0,
		},
	}
}

// DefaultEngine returns the reference engine tuning with every default
// applied. Tests and the tuning compare tool use it as a baseline to
// override.
func DefaultEngine() EngineConfig {
	var cfg Config
	applyDefaults(&cfg)
	return cfg.Engine
}

// GetDuration converts seconds from config to time.Duration
func GetDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

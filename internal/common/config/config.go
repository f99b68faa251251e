// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	MetricsAddr string `mapstructure:"metrics_addr"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// --- Engine Tuning ---

// EngineConfig is the single versioned tuning object threaded through every
// pipeline component. It is immutable for the duration of a run; a dry run
// with alternate tuning is a second Config value, never a mutation.
type EngineConfig struct {
	Version      string `mapstructure:"version"`
	Workers      int    `mapstructure:"workers"`
	RegistryPath string `mapstructure:"registry_path"`

	// Similarity tunables.
	NeutralScore       float64 `mapstructure:"neutral_score"`
	UncertaintyPenalty float64 `mapstructure:"uncertainty_penalty"`

	// Aggregation tunables.
	ImportanceWeights map[string]float64 `mapstructure:"importance_weights"`
	SectionWeights    map[string]float64 `mapstructure:"section_weights"`

	// Pair score and eligibility tunables.
	PairScoreAlpha float64 `mapstructure:"pair_score_alpha"`
	MinPairScore   float64 `mapstructure:"min_pair_score"`
	RelativeFloor  float64 `mapstructure:"relative_floor"`
	DiagnosticsTop int     `mapstructure:"diagnostics_top"`

	// Directional scoring strategy: "strict" (hard 0/1) or "soft"
	// (met/unmet multipliers applied to the raw numeric similarity).
	DirectionalStrategy  string  `mapstructure:"directional_strategy"`
	DirectionalSoftMet   float64 `mapstructure:"directional_soft_met"`
	DirectionalSoftUnmet float64 `mapstructure:"directional_soft_unmet"`

	Affection AffectionConfig `mapstructure:"affection"`
	Conflict  ConflictConfig  `mapstructure:"conflict"`
	Sleep     SleepConfig     `mapstructure:"sleep"`

	RunLockTTLSeconds int `mapstructure:"run_lock_ttl_seconds"`
	ResultTTLSeconds  int `mapstructure:"result_ttl_seconds"`
}

// AffectionConfig tunes the layered affection-language model.
type AffectionConfig struct {
	ShowWeight    float64 `mapstructure:"show_weight"`
	ReceiveWeight float64 `mapstructure:"receive_weight"`
}

// ConflictConfig tunes the conflict-style model. Matrix is the static
// symmetric (styleA, styleB) -> [0,1] compatibility table.
type ConflictConfig struct {
	OverlapWeight float64                       `mapstructure:"overlap_weight"`
	MatrixWeight  float64                       `mapstructure:"matrix_weight"`
	Matrix        map[string]map[string]float64 `mapstructure:"matrix"`
}

// SleepConfig tunes the sleep-schedule flexibility model.
type SleepConfig struct {
	MismatchScore      float64 `mapstructure:"mismatch_score"`
	BothIrregularScore float64 `mapstructure:"both_irregular_score"`
}

// Importance weight keys accepted in engine.importance_weights.
const (
	ImportanceNotImportant  = "not_important"
	ImportanceSomewhat      = "somewhat_important"
	ImportanceImportant     = "important"
	ImportanceVeryImportant = "very_important"
)

// Section weight keys accepted in engine.section_weights.
const (
	SectionLifestyle   = "lifestyle"
	SectionPersonality = "personality"
)

package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for join-advisor.
// Configuration can come from YAML file (config.yaml) or environment
// variables. Environment variables always override YAML values. Secrets
// (API keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8343"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	Profiler ProfilerConfig `yaml:"profiler"`
	Detector DetectorConfig `yaml:"detector"`
	Overlap  OverlapConfig  `yaml:"overlap"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Ranker   RankerConfig   `yaml:"ranker"`
	Hints    HintsConfig    `yaml:"hints"`
}

// ProfilerConfig holds field profiling settings.
type ProfilerConfig struct {
	// SampleSize is the number of leading rows used for sample cardinality.
	SampleSize int `yaml:"sample_size" env:"PROFILER_SAMPLE_SIZE" env-default:"100"`
	// IdentifierCardinalityRatio is the minimum distinct/non-null ratio for
	// a text column to be classified as an identifier.
	IdentifierCardinalityRatio float64 `yaml:"identifier_cardinality_ratio" env:"PROFILER_IDENTIFIER_CARDINALITY_RATIO" env-default:"0.8"`
}

// DetectorConfig holds candidate key detection settings.
type DetectorConfig struct {
	// MaxCandidates caps the candidate set to bound downstream work.
	MaxCandidates int `yaml:"max_candidates" env:"DETECTOR_MAX_CANDIDATES" env-default:"20"`
	// MinNameSimilarity is the minimum normalized name similarity for a
	// column pair to become a candidate.
	MinNameSimilarity float64 `yaml:"min_name_similarity" env:"DETECTOR_MIN_NAME_SIMILARITY" env-default:"0.6"`
}

// OverlapConfig holds overlap computation settings.
type OverlapConfig struct {
	// Workers bounds how many per-candidate overlap computations run in
	// parallel. Results are merged by candidate identity, so output order
	// does not depend on this value.
	Workers int `yaml:"workers" env:"OVERLAP_WORKERS" env-default:"4"`
}

// ScoringConfig holds the health score weights and flag thresholds.
// The weights are a reconstruction of the original advisor's weighting and
// are deliberately configurable rather than fixed.
type ScoringConfig struct {
	MatchRateWeight   float64 `yaml:"match_rate_weight" env:"SCORING_MATCH_RATE_WEIGHT" env-default:"0.5"`
	DateOverlapWeight float64 `yaml:"date_overlap_weight" env:"SCORING_DATE_OVERLAP_WEIGHT" env-default:"0.3"`
	DuplicationWeight float64 `yaml:"duplication_weight" env:"SCORING_DUPLICATION_WEIGHT" env-default:"0.2"`

	LowMatchRateThreshold     float64 `yaml:"low_match_rate_threshold" env:"SCORING_LOW_MATCH_RATE_THRESHOLD" env-default:"0.5"`
	DateRangePartialThreshold float64 `yaml:"date_range_partial_threshold" env:"SCORING_DATE_RANGE_PARTIAL_THRESHOLD" env-default:"0.8"`
	DuplicateKeysThreshold    float64 `yaml:"duplicate_keys_threshold" env:"SCORING_DUPLICATE_KEYS_THRESHOLD" env-default:"0.1"`
}

// RankerConfig holds suggestion ranking settings.
type RankerConfig struct {
	// MaxHintPromotion bounds how many positions an externally hinted
	// candidate can be promoted without re-scoring.
	MaxHintPromotion int `yaml:"max_hint_promotion" env:"RANKER_MAX_HINT_PROMOTION" env-default:"2"`
}

// HintsConfig holds the LLM hint collaborator settings. The collaborator is
// an untrusted, best-effort ranking signal; it is optional and disabled by
// default.
type HintsConfig struct {
	Enabled  bool   `yaml:"enabled" env:"HINTS_ENABLED" env-default:"false"`
	Provider string `yaml:"provider" env:"HINTS_PROVIDER" env-default:"openai"`
	BaseURL  string `yaml:"base_url" env:"HINTS_BASE_URL" env-default:"https://api.openai.com/v1"`
	Model    string `yaml:"model" env:"HINTS_MODEL" env-default:"gpt-4o-mini"`
	APIKey   string `yaml:"-" env:"HINTS_API_KEY"` // Secret - not in YAML

	Temperature    float64 `yaml:"temperature" env:"HINTS_TEMPERATURE" env-default:"0.2"`
	MaxSuggestions int     `yaml:"max_suggestions" env:"HINTS_MAX_SUGGESTIONS" env-default:"5"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. When no config.yaml exists (the common CLI case) configuration
// comes from environment variables and defaults alone. The version parameter
// is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// validate rejects configurations the engine cannot run with.
func (c *Config) validate() error {
	if c.Detector.MaxCandidates < 1 {
		return fmt.Errorf("detector.max_candidates must be at least 1")
	}
	if c.Overlap.Workers < 1 {
		return fmt.Errorf("overlap.workers must be at least 1")
	}
	for _, w := range []struct {
		name  string
		value float64
	}{
		{"scoring.match_rate_weight", c.Scoring.MatchRateWeight},
		{"scoring.date_overlap_weight", c.Scoring.DateOverlapWeight},
		{"scoring.duplication_weight", c.Scoring.DuplicationWeight},
	} {
		if w.value < 0 || w.value > 1 {
			return fmt.Errorf("%s must be in [0,1]", w.name)
		}
	}
	sum := c.Scoring.MatchRateWeight + c.Scoring.DateOverlapWeight + c.Scoring.DuplicationWeight
	if sum <= 0 {
		return fmt.Errorf("scoring weights must not all be zero")
	}
	if c.Ranker.MaxHintPromotion < 0 {
		return fmt.Errorf("ranker.max_hint_promotion must not be negative")
	}
	switch c.Hints.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("hints.provider must be openai or anthropic, got %q", c.Hints.Provider)
	}
	return nil
}

// Default returns a Config with all defaults applied and no file or
// environment lookup. Used by tests and library consumers.
func Default() *Config {
	return &Config{
		BindAddr: "127.0.0.1",
		Port:     "8343",
		Env:      "local",
		Version:  "dev",
		Profiler: ProfilerConfig{
			SampleSize:                 100,
			IdentifierCardinalityRatio: 0.8,
		},
		Detector: DetectorConfig{
			MaxCandidates:     20,
			MinNameSimilarity: 0.6,
		},
		Overlap: OverlapConfig{
			Workers: 4,
		},
		Scoring: ScoringConfig{
			MatchRateWeight:           0.5,
			DateOverlapWeight:         0.3,
			DuplicationWeight:         0.2,
			LowMatchRateThreshold:     0.5,
			DateRangePartialThreshold: 0.8,
			DuplicateKeysThreshold:    0.1,
		},
		Ranker: RankerConfig{
			MaxHintPromotion: 2,
		},
		Hints: HintsConfig{
			Enabled:        false,
			Provider:       "openai",
			BaseURL:        "https://api.openai.com/v1",
			Model:          "gpt-4o-mini",
			Temperature:    0.2,
			MaxSuggestions: 5,
		},
	}
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is where the binaries look for an analysis config when
// none is given on the command line.
const DefaultConfigPath = "config/analysis.defaults.json"

// Defaults applied by the Get* accessors when a field is unset.
const (
	DefaultMaxFrames        = 100
	DefaultVoiceID          = "JBFqnCBsd6RMkjVDRZzb"
	DefaultLLMModel         = "deepseek/deepseek-v3.2"
	DefaultLLMBaseURL       = "https://api.novita.ai/openai"
	DefaultOutputDir        = "results"
	DefaultBatchConcurrency = 2
)

// AnalysisConfig is the root configuration of an analysis run. Fields are
// pointers so a partial file only overrides what it names; the Get*
// methods supply defaults for the rest.
type AnalysisConfig struct {
	// Frame processing
	MaxFrames *int `json:"max_frames,omitempty" yaml:"max_frames,omitempty"`

	// Collaborators
	VoiceID    *string `json:"voice_id,omitempty" yaml:"voice_id,omitempty"`
	LLMModel   *string `json:"llm_model,omitempty" yaml:"llm_model,omitempty"`
	LLMBaseURL *string `json:"llm_base_url,omitempty" yaml:"llm_base_url,omitempty"`

	// Output
	OutputDir        *string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	BatchConcurrency *int    `json:"batch_concurrency,omitempty" yaml:"batch_concurrency,omitempty"`

	// Emotional scoring
	HappyWeight   *float64 `json:"happy_weight,omitempty" yaml:"happy_weight,omitempty"`
	NeutralWeight *float64 `json:"neutral_weight,omitempty" yaml:"neutral_weight,omitempty"`
	SadWeight     *float64 `json:"sad_weight,omitempty" yaml:"sad_weight,omitempty"`
	StressWeight  *float64 `json:"stress_weight,omitempty" yaml:"stress_weight,omitempty"`
	SadWorry      *float64 `json:"sad_worry_percent,omitempty" yaml:"sad_worry_percent,omitempty"`
	StressWorry   *float64 `json:"stress_worry_percent,omitempty" yaml:"stress_worry_percent,omitempty"`
}

// ScoringConfig holds the resolved mental health weights and worry
// thresholds. Weights multiply the percentage of frames matching each
// emotional rule; sad and stress weights are subtracted.
type ScoringConfig struct {
	HappyWeight   float64 `json:"happy_weight"`
	NeutralWeight float64 `json:"neutral_weight"`
	SadWeight     float64 `json:"sad_weight"`
	StressWeight  float64 `json:"stress_weight"`
	// Worry is raised when sad% > SadWorry or stress% > StressWorry.
	SadWorry    float64 `json:"sad_worry_percent"`
	StressWorry float64 `json:"stress_worry_percent"`
}

// DefaultScoring returns the stock heuristic weights.
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		HappyWeight:   1.0,
		NeutralWeight: 0.6,
		SadWeight:     0.8,
		StressWeight:  0.7,
		SadWorry:      40,
		StressWorry:   35,
	}
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyAnalysisConfig returns an AnalysisConfig with all fields unset.
func EmptyAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{}
}

// DefaultAnalysisConfig returns a config with every field populated with
// its default value.
func DefaultAnalysisConfig() *AnalysisConfig {
	s := DefaultScoring()
	return &AnalysisConfig{
		MaxFrames:        ptrInt(DefaultMaxFrames),
		VoiceID:          ptrString(DefaultVoiceID),
		LLMModel:         ptrString(DefaultLLMModel),
		LLMBaseURL:       ptrString(DefaultLLMBaseURL),
		OutputDir:        ptrString(DefaultOutputDir),
		BatchConcurrency: ptrInt(DefaultBatchConcurrency),
		HappyWeight:      ptrFloat64(s.HappyWeight),
		NeutralWeight:    ptrFloat64(s.NeutralWeight),
		SadWeight:        ptrFloat64(s.SadWeight),
		StressWeight:     ptrFloat64(s.StressWeight),
		SadWorry:         ptrFloat64(s.SadWorry),
		StressWorry:      ptrFloat64(s.StressWorry),
	}
}

// LoadAnalysisConfig loads an AnalysisConfig from a .json, .yaml or .yml
// file. Fields omitted from the file keep their defaults, so partial
// configs are safe.
func LoadAnalysisConfig(path string) (*AnalysisConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyAnalysisConfig()
	if ext == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *AnalysisConfig) Validate() error {
	if c.MaxFrames != nil && *c.MaxFrames < 0 {
		return fmt.Errorf("max_frames must be non-negative, got %d", *c.MaxFrames)
	}
	if c.BatchConcurrency != nil && *c.BatchConcurrency < 1 {
		return fmt.Errorf("batch_concurrency must be at least 1, got %d", *c.BatchConcurrency)
	}
	if c.LLMBaseURL != nil && *c.LLMBaseURL != "" &&
		!strings.HasPrefix(*c.LLMBaseURL, "http://") && !strings.HasPrefix(*c.LLMBaseURL, "https://") {
		return fmt.Errorf("llm_base_url must be an http(s) URL, got %q", *c.LLMBaseURL)
	}

	weights := map[string]*float64{
		"happy_weight":   c.HappyWeight,
		"neutral_weight": c.NeutralWeight,
		"sad_weight":     c.SadWeight,
		"stress_weight":  c.StressWeight,
	}
	for name, w := range weights {
		if w != nil && *w < 0 {
			return fmt.Errorf("%s must be non-negative, got %f", name, *w)
		}
	}

	thresholds := map[string]*float64{
		"sad_worry_percent":    c.SadWorry,
		"stress_worry_percent": c.StressWorry,
	}
	for name, v := range thresholds {
		if v != nil && (*v < 0 || *v > 100) {
			return fmt.Errorf("%s must be between 0 and 100, got %f", name, *v)
		}
	}

	return nil
}

// GetMaxFrames returns the frame cutoff or the default.
func (c *AnalysisConfig) GetMaxFrames() int {
	if c.MaxFrames == nil {
		return DefaultMaxFrames
	}
	return *c.MaxFrames
}

// GetVoiceID returns the speech synthesis voice or the default.
func (c *AnalysisConfig) GetVoiceID() string {
	if c.VoiceID == nil || *c.VoiceID == "" {
		return DefaultVoiceID
	}
	return *c.VoiceID
}

// GetLLMModel returns the text generation model or the default.
func (c *AnalysisConfig) GetLLMModel() string {
	if c.LLMModel == nil || *c.LLMModel == "" {
		return DefaultLLMModel
	}
	return *c.LLMModel
}

// GetLLMBaseURL returns the chat completions base URL or the default.
func (c *AnalysisConfig) GetLLMBaseURL() string {
	if c.LLMBaseURL == nil || *c.LLMBaseURL == "" {
		return DefaultLLMBaseURL
	}
	return *c.LLMBaseURL
}

// GetOutputDir returns the results directory or the default.
func (c *AnalysisConfig) GetOutputDir() string {
	if c.OutputDir == nil || *c.OutputDir == "" {
		return DefaultOutputDir
	}
	return *c.OutputDir
}

// GetBatchConcurrency returns how many videos are analysed at once.
func (c *AnalysisConfig) GetBatchConcurrency() int {
	if c.BatchConcurrency == nil {
		return DefaultBatchConcurrency
	}
	return *c.BatchConcurrency
}

// GetScoring resolves the scoring fields, falling back to DefaultScoring
// for any that are unset.
func (c *AnalysisConfig) GetScoring() ScoringConfig {
	s := DefaultScoring()
	if c.HappyWeight != nil {
		s.HappyWeight = *c.HappyWeight
	}
	if c.NeutralWeight != nil {
		s.NeutralWeight = *c.NeutralWeight
	}
	if c.SadWeight != nil {
		s.SadWeight = *c.SadWeight
	}
	if c.StressWeight != nil {
		s.StressWeight = *c.StressWeight
	}
	if c.SadWorry != nil {
		s.SadWorry = *c.SadWorry
	}
	if c.StressWorry != nil {
		s.StressWorry = *c.StressWorry
	}
	return s
}

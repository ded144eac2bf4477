// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/notesmith/internal/chunking"
	"github.com/jonathan/notesmith/internal/llm"
	"github.com/jonathan/notesmith/internal/merging"
	"github.com/jonathan/notesmith/internal/revision"
	"github.com/jonathan/notesmith/internal/templates"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	Chunking ChunkingConfig `json:"chunking,omitempty"`
	Merging  MergingConfig  `json:"merging,omitempty"`
	Quality  QualityConfig  `json:"quality,omitempty"`
	LLM      LLMConfig      `json:"llm,omitempty"`
	Pipeline PipelineConfig `json:"pipeline,omitempty"`

	Template    string `json:"template,omitempty" validate:"omitempty,oneof=detailed essence easy mindmap"`
	TranslateTo string `json:"translate_to,omitempty"`
	UseBrowser  bool   `json:"use_browser,omitempty"`
	Verbose     bool   `json:"verbose,omitempty"`
}

// ChunkingConfig bounds how transcripts are split into parts.
type ChunkingConfig struct {
	Threshold    int `json:"threshold,omitempty" validate:"min=0"`     // chunk only above this many chars
	ChunkSize    int `json:"chunk_size,omitempty" validate:"min=0"`    // max chars per chunk
	OverlapLines int `json:"overlap_lines,omitempty" validate:"min=0"` // lines repeated between adjacent chunks
}

// MergingConfig controls how part notes become the final document.
type MergingConfig struct {
	HierarchicalThreshold int    `json:"hierarchical_threshold,omitempty" validate:"min=0"`
	GroupSize             int    `json:"group_size,omitempty" validate:"omitempty,min=2"`
	Strategy              string `json:"strategy,omitempty" validate:"omitempty,oneof=auto simple thematic hierarchical"`
}

// QualityConfig controls the per-part verification gate.
type QualityConfig struct {
	// Enabled defaults to true when absent from the file.
	Enabled     *bool  `json:"enabled,omitempty"`
	Agents      bool   `json:"agents,omitempty"` // analyst/writer/critic roles instead of the single-call path
	MaxAttempts int    `json:"max_attempts,omitempty" validate:"min=0,max=10"`
	MinScore    int    `json:"min_score,omitempty" validate:"min=0,max=100"`
	Weights     string `json:"weights,omitempty" validate:"omitempty,oneof=balanced faithfulness-heavy"`
}

// IsEnabled reports whether the quality gate should run.
func (q *QualityConfig) IsEnabled() bool {
	if q.Enabled == nil {
		return true
	}
	return *q.Enabled
}

// LLMConfig carries the generation client settings. Timeout is a Go
// duration string such as "120s".
type LLMConfig struct {
	APIKey            string            `json:"api_key,omitempty"`
	Timeout           string            `json:"timeout,omitempty"`
	RequestsPerMinute float64           `json:"requests_per_minute,omitempty" validate:"min=0"`
	Models            map[string]string `json:"models,omitempty"`            // keyed by tier: lite, standard, advanced
	MaxOutputTokens   map[string]int32  `json:"max_output_tokens,omitempty"` // keyed by tier
}

// ToLLM converts the section into the generation client configuration,
// starting from the provider defaults.
func (l *LLMConfig) ToLLM() (*llm.Config, error) {
	cfg := llm.DefaultConfig()
	if l.Timeout != "" {
		d, err := time.ParseDuration(l.Timeout)
		if err != nil {
			return nil, fmt.Errorf("config error: invalid llm timeout %q: %w", l.Timeout, err)
		}
		cfg.Timeout = d
	}
	if l.RequestsPerMinute > 0 {
		cfg.RequestsPerMinute = l.RequestsPerMinute
	}
	for tier, model := range l.Models {
		cfg = cfg.WithModel(llm.ModelTier(tier), model)
	}
	for tier, tokens := range l.MaxOutputTokens {
		cfg.MaxOutputTokens[llm.ModelTier(tier)] = tokens
	}
	return cfg, nil
}

// PipelineConfig controls run-level behavior. Budget is a Go duration
// string; empty or "0" means no wall-clock limit.
type PipelineConfig struct {
	OutputDir string `json:"output_dir,omitempty"`
	Parallel  int    `json:"parallel,omitempty" validate:"min=0,max=16"`
	Budget    string `json:"budget,omitempty"`
}

// BudgetDuration returns the wall-clock limit, zero when unset.
func (p *PipelineConfig) BudgetDuration() time.Duration {
	if p.Budget == "" || p.Budget == "0" {
		return 0
	}
	d, err := time.ParseDuration(p.Budget)
	if err != nil {
		return 0
	}
	return d
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Chunking: ChunkingConfig{
			Threshold:    chunking.DefaultThreshold,
			ChunkSize:    chunking.DefaultChunkSize,
			OverlapLines: chunking.DefaultOverlapLines,
		},
		Merging: MergingConfig{
			HierarchicalThreshold: merging.DefaultHierarchicalThreshold,
			GroupSize:             merging.DefaultGroupSize,
			Strategy:              string(merging.StrategyAuto),
		},
		Quality: QualityConfig{
			MaxAttempts: revision.DefaultMaxAttempts,
			MinScore:    revision.DefaultMinScore,
			Weights:     "balanced",
		},
		LLM: LLMConfig{
			Timeout:           "120s",
			RequestsPerMinute: 10,
		},
		Pipeline: PipelineConfig{
			OutputDir: "output",
			Parallel:  1,
		},
		Template:    templates.DefaultName,
		TranslateTo: merging.DefaultTranslateTo,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

var validTiers = map[string]bool{
	string(llm.TierLite):     true,
	string(llm.TierStandard): true,
	string(llm.TierAdvanced): true,
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	// Cross-field checks the tags cannot express.
	if c.LLM.Timeout != "" {
		if _, err := time.ParseDuration(c.LLM.Timeout); err != nil {
			return fmt.Errorf("config error: invalid llm timeout %q", c.LLM.Timeout)
		}
	}
	if c.Pipeline.Budget != "" && c.Pipeline.Budget != "0" {
		if _, err := time.ParseDuration(c.Pipeline.Budget); err != nil {
			return fmt.Errorf("config error: invalid pipeline budget %q", c.Pipeline.Budget)
		}
	}
	for tier := range c.LLM.Models {
		if !validTiers[tier] {
			return fmt.Errorf("config error: unknown model tier %q (valid: lite, standard, advanced)", tier)
		}
	}
	for tier := range c.LLM.MaxOutputTokens {
		if !validTiers[tier] {
			return fmt.Errorf("config error: unknown model tier %q (valid: lite, standard, advanced)", tier)
		}
	}
	if c.Chunking.ChunkSize > 0 && c.Chunking.Threshold > 0 && c.Chunking.ChunkSize > c.Chunking.Threshold*10 {
		return fmt.Errorf("config error: 'chunk_size' is more than 10x 'threshold'; parts would defeat the threshold")
	}

	return nil
}

// MergeWithDefaults returns a new Config with zero-value fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Chunking.Threshold == 0 {
		result.Chunking.Threshold = defaults.Chunking.Threshold
	}
	if result.Chunking.ChunkSize == 0 {
		result.Chunking.ChunkSize = defaults.Chunking.ChunkSize
	}
	if result.Chunking.OverlapLines == 0 {
		result.Chunking.OverlapLines = defaults.Chunking.OverlapLines
	}

	if result.Merging.HierarchicalThreshold == 0 {
		result.Merging.HierarchicalThreshold = defaults.Merging.HierarchicalThreshold
	}
	if result.Merging.GroupSize == 0 {
		result.Merging.GroupSize = defaults.Merging.GroupSize
	}
	if result.Merging.Strategy == "" {
		result.Merging.Strategy = defaults.Merging.Strategy
	}

	if result.Quality.Enabled == nil {
		result.Quality.Enabled = defaults.Quality.Enabled
	}
	if result.Quality.MaxAttempts == 0 {
		result.Quality.MaxAttempts = defaults.Quality.MaxAttempts
	}
	if result.Quality.MinScore == 0 {
		result.Quality.MinScore = defaults.Quality.MinScore
	}
	if result.Quality.Weights == "" {
		result.Quality.Weights = defaults.Quality.Weights
	}

	if result.LLM.APIKey == "" {
		result.LLM.APIKey = defaults.LLM.APIKey
	}
	if result.LLM.Timeout == "" {
		result.LLM.Timeout = defaults.LLM.Timeout
	}
	if result.LLM.RequestsPerMinute == 0 {
		result.LLM.RequestsPerMinute = defaults.LLM.RequestsPerMinute
	}

	if result.Pipeline.OutputDir == "" {
		result.Pipeline.OutputDir = defaults.Pipeline.OutputDir
	}
	if result.Pipeline.Parallel == 0 {
		result.Pipeline.Parallel = defaults.Pipeline.Parallel
	}
	if result.Pipeline.Budget == "" {
		result.Pipeline.Budget = defaults.Pipeline.Budget
	}

	if result.Template == "" {
		result.Template = defaults.Template
	}
	if result.TranslateTo == "" {
		result.TranslateTo = defaults.TranslateTo
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

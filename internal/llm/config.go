// Package llm provides centralized LLM configuration and client abstractions.
// This package enables easy switching between model tiers and future multi-provider support.
package llm

import "time"

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: structural analysis, critique, classification
	TierLite ModelTier = "lite"
	// TierStandard is for moderate reasoning: per-chunk note synthesis
	TierStandard ModelTier = "standard"
	// TierAdvanced is for complex reasoning: thematic and hierarchical merges
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is the OpenAI provider (future)
	ProviderOpenAI Provider = "openai"
	// ProviderAnthropic is the Anthropic/Claude provider (future)
	ProviderAnthropic Provider = "anthropic"
)

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
	// MaxOutputTokens bounds the response size per tier. Merges need the
	// largest budget because they rewrite every partial note at once.
	MaxOutputTokens map[ModelTier]int32
	// Timeout applies to each individual generation call. Zero disables it.
	Timeout time.Duration
	// RequestsPerMinute throttles outbound calls. Zero disables throttling.
	RequestsPerMinute float64
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		MaxOutputTokens: map[ModelTier]int32{
			TierLite:     2048,
			TierStandard: 8192,
			TierAdvanced: 16384,
		},
		Timeout:           120 * time.Second,
		RequestsPerMinute: 10,
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return "" // No model configured
}

// GetMaxOutputTokens returns the output token budget for a tier, 0 if unset.
func (c *Config) GetMaxOutputTokens(tier ModelTier) int32 {
	if c.MaxOutputTokens == nil {
		return 0
	}
	return c.MaxOutputTokens[tier]
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Provider:          c.Provider,
		Models:            make(map[ModelTier]string),
		MaxOutputTokens:   make(map[ModelTier]int32),
		Timeout:           c.Timeout,
		RequestsPerMinute: c.RequestsPerMinute,
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	for k, v := range c.MaxOutputTokens {
		newConfig.MaxOutputTokens[k] = v
	}
	newConfig.Models[tier] = model
	return newConfig
}

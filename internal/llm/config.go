// Package llm provides centralized LLM configuration and client abstractions.
// This package enables switching between providers without touching callers.
package llm

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderOpenRouter is the OpenRouter hosted chat-completion provider (OpenAI-compatible)
	ProviderOpenRouter Provider = "openrouter"
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
)

// Default generation settings used when a request leaves them unset.
const (
	// DefaultOpenRouterBaseURL is the OpenAI-compatible API root
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	// DefaultModel is the model used for both comparison and generation
	DefaultModel = "openai/gpt-4o"
	// DefaultTemperature is the sampling temperature applied when unset
	DefaultTemperature = 0.7
)

// Config holds the provider configuration for the application
type Config struct {
	Provider Provider
	// BaseURL overrides the provider endpoint; used by tests to point at a
	// local server. Empty means the provider default.
	BaseURL string
	// Model is the default model identifier for requests that leave it unset.
	Model string
}

// DefaultConfig returns the default configuration (OpenRouter)
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderOpenRouter,
		BaseURL:  DefaultOpenRouterBaseURL,
		Model:    DefaultModel,
	}
}

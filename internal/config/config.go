// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults, environment variables,
// or must be provided via CLI flags.
type Config struct {
	// Credentials
	OpenRouterAPIKey string `json:"openrouter_api_key,omitempty"`
	RapidAPIKey      string `json:"rapid_api_key,omitempty"`
	AirtableAPIKey   string `json:"airtable_api_key,omitempty"`
	GeminiAPIKey     string `json:"gemini_api_key,omitempty"`

	// Endpoints
	LinkedInBaseURL string `json:"linkedin_base_url,omitempty" validate:"omitempty,url"`
	LLMBaseURL      string `json:"llm_base_url,omitempty" validate:"omitempty,url"`
	WebhookURL      string `json:"webhook_url,omitempty" validate:"omitempty,url"`
	DatabaseURL     string `json:"database_url,omitempty"`

	// Airtable targeting
	AirtableBaseID  string `json:"airtable_base_id,omitempty"`
	AirtableTableID string `json:"airtable_table_id,omitempty"`

	// Behavior
	Provider         string `json:"provider,omitempty" validate:"omitempty,oneof=openrouter gemini"`
	Model            string `json:"model,omitempty"`
	NotifyOnComplete bool   `json:"notify_on_complete,omitempty"`
	Verbose          bool   `json:"verbose,omitempty"`
}

var validate = validator.New()

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

// FromEnv returns a Config populated from environment variables. godotenv
// loading happens in the CLI layer before this is called.
func FromEnv() Config {
	return Config{
		OpenRouterAPIKey: os.Getenv("OPENROUTER_API_KEY"),
		RapidAPIKey:      os.Getenv("RAPID_API_KEY"),
		AirtableAPIKey:   os.Getenv("AIRTABLE_API_KEY"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		WebhookURL:       os.Getenv("WEBHOOK_URL"),
	}
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required credentials since those are enforced
// by the client constructors after merging.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			first := errs[0]
			return fmt.Errorf("config error: field '%s' failed '%s' validation", first.Field(), first.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. This is used to layer config file values over environment values.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.OpenRouterAPIKey == "" {
		result.OpenRouterAPIKey = defaults.OpenRouterAPIKey
	}
	if result.RapidAPIKey == "" {
		result.RapidAPIKey = defaults.RapidAPIKey
	}
	if result.AirtableAPIKey == "" {
		result.AirtableAPIKey = defaults.AirtableAPIKey
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.LinkedInBaseURL == "" {
		result.LinkedInBaseURL = defaults.LinkedInBaseURL
	}
	if result.LLMBaseURL == "" {
		result.LLMBaseURL = defaults.LLMBaseURL
	}
	if result.WebhookURL == "" {
		result.WebhookURL = defaults.WebhookURL
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.AirtableBaseID == "" {
		result.AirtableBaseID = defaults.AirtableBaseID
	}
	if result.AirtableTableID == "" {
		result.AirtableTableID = defaults.AirtableTableID
	}
	if result.Provider == "" {
		result.Provider = defaults.Provider
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

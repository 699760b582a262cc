package llm

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/sant0-9/heartgpt/internal/config"
)

// NewProvider creates a provider from config and a request-scoped API key.
// The provider catalog supplies the default base URL and model.
func NewProvider(cfg *config.Config, apiKey string) (Provider, error) {
	id := cfg.Provider
	if id == "" {
		id = "groq"
	}
	info := config.GetProvider(id)
	if info == nil {
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}

	model := cfg.Model
	if model == "" {
		model = info.DefaultModel
	}
	if model == "" {
		return nil, errors.New("no model configured")
	}
	if err := ValidateAPIKey(apiKey); err != nil {
		return nil, err
	}
	if info.NeedsAPIKey && apiKey == "" {
		return nil, fmt.Errorf("%s requires an API key", info.Name)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = info.BaseURL
	}
	if baseURL == "" {
		return nil, fmt.Errorf("%s provider requires base_url", id)
	}

	opts := Options{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: baseURL,
		Timeout: cfg.RequestTimeout,
		Vision:  config.SupportsVision(model),
	}

	if info.ID == "groq" {
		return NewGroqProvider(opts), nil
	}
	return NewCustomProvider(opts), nil
}

// ValidateAPIKey rejects keys that cannot travel in an Authorization header.
func ValidateAPIKey(key string) error {
	for _, r := range key {
		if unicode.IsSpace(r) || unicode.IsControl(r) || r > unicode.MaxASCII {
			return errors.New("API key contains characters that are not allowed in a header")
		}
	}
	return nil
}

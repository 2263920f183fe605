package llmfactory

import (
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/configloader"
	"github.com/go-playground/validator/v10"
)

// Config describes the set of configured LLM providers.
type Config struct {
	// Providers specifies the list of providers to use
	Providers []*ProviderConfig `json:"providers" yaml:"providers" validate:"required,dive"`
	// DefaultProvider specifies the default provider to use
	DefaultProvider string `json:"default_provider,omitempty" yaml:"default_provider,omitempty"`
	// ToolModels specifies the mapping of tools to model names.
	// key is the tool name, value is the list of preferred models.
	// Use `default: <model_name>` as the default model for tools.
	ToolModels map[string][]string `json:"tool_models,omitempty" yaml:"tool_models,omitempty"`
}

// ProviderConfig describes a single provider endpoint.
type ProviderConfig struct {
	Name string `json:"name" yaml:"name" validate:"required"`
	// Provider specifies the provider type:
	// OPENAI|GROQ|ANTHROPIC|GOOGLEAI
	Provider        string   `json:"provider" yaml:"provider" validate:"required,oneof=OPENAI GROQ ANTHROPIC GOOGLEAI"`
	Token           string   `json:"token,omitempty" yaml:"token,omitempty"`
	BaseURL         string   `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	DefaultModel    string   `json:"default_model,omitempty" yaml:"default_model,omitempty"`
	AvailableModels []string `json:"available_models,omitempty" yaml:"available_models,omitempty"`
	// Organization specifies which organization's quota and billing should be used when making API requests.
	Organization string `json:"organization,omitempty" yaml:"organization,omitempty"`
}

// FindModel returns the first preferred model the provider lists as
// available, or the provider's default model.
func (c *ProviderConfig) FindModel(models ...string) string {
	for _, model := range models {
		if slices.Contains(c.AvailableModels, model) {
			return model
		}
	}
	return c.DefaultModel
}

var validate = validator.New()

// LoadConfig from file
func LoadConfig(file string) (*Config, error) {
	cfg := new(Config)
	if file == "" {
		return cfg, nil
	}

	err := configloader.UnmarshalAndExpand(file, cfg)
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, errors.WithStack(err)
	}
	return cfg, nil
}

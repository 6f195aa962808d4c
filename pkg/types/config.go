package types

// Config represents the PawChat server configuration.
type Config struct {
	// Schema reference (for editor support)
	Schema string `json:"$schema,omitempty"`

	// Model selection, "provider/model" (e.g. "openai/gpt-4o").
	Model string `json:"model,omitempty"`

	// Provider configs keyed by provider ID ("openai", "anthropic", "ark").
	Provider map[string]ProviderConfig `json:"provider,omitempty"`

	// GenerationTimeoutSeconds bounds a single LLM call. Zero means the
	// default (15s).
	GenerationTimeoutSeconds int `json:"generationTimeoutSeconds,omitempty"`

	// PromptsPath points at an optional prompts.yaml overriding the built-in
	// prompt templates.
	PromptsPath string `json:"promptsPath,omitempty"`
}

// ProviderConfig holds configuration for a specific LLM provider.
type ProviderConfig struct {
	APIKey  string `json:"apiKey,omitempty"`
	BaseURL string `json:"baseURL,omitempty"`

	// Model/Endpoint ID (for providers like ARK that require endpoint
	// specification).
	Model string `json:"model,omitempty"`

	// Disable the provider even when credentials are present.
	Disable bool `json:"disable,omitempty"`
}

package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"

	"github.com/pawchat-ai/pawchat/pkg/types"
)

// DefaultGenerationTimeoutSeconds bounds a single LLM call when the config
// does not say otherwise.
const DefaultGenerationTimeoutSeconds = 15

// Load loads configuration from multiple sources (priority order):
// 1. Global config (~/.config/pawchat/pawchat.json[c])
// 2. Project config (pawchat.json[c] in the working directory)
// 3. PAWCHAT_CONFIG file
// 4. PAWCHAT_CONFIG_CONTENT inline JSON
// 5. Environment variables
func Load(directory string) (*types.Config, error) {
	config := &types.Config{
		Provider: make(map[string]types.ProviderConfig),
	}

	loaded := make(map[string]bool)
	loadOnce := func(path string) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return
		}
		if loaded[absPath] {
			return
		}
		if loadConfigFile(path, config) == nil {
			loaded[absPath] = true
		}
	}

	// 1. Global config
	globalDir := GetPaths().Config
	loadOnce(filepath.Join(globalDir, "pawchat.json"))
	loadOnce(filepath.Join(globalDir, "pawchat.jsonc"))

	// 2. Project config
	if directory != "" {
		loadOnce(filepath.Join(directory, "pawchat.json"))
		loadOnce(filepath.Join(directory, "pawchat.jsonc"))
	}

	// 3. Explicit config file
	if path := os.Getenv("PAWCHAT_CONFIG"); path != "" {
		loadOnce(path)
	}

	// 4. Inline config content
	if content := os.Getenv("PAWCHAT_CONFIG_CONTENT"); content != "" {
		var inline types.Config
		if err := json.Unmarshal(jsonc.ToJSON([]byte(content)), &inline); err == nil {
			mergeConfig(config, &inline)
		}
	}

	// 5. Environment variables (highest priority)
	applyEnvOverrides(config)

	if config.GenerationTimeoutSeconds <= 0 {
		config.GenerationTimeoutSeconds = DefaultGenerationTimeoutSeconds
	}

	return config, nil
}

// loadConfigFile loads a single config file. JSONC comments are allowed.
func loadConfigFile(path string, config *types.Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err // file doesn't exist, skip
	}

	data = jsonc.ToJSON(data)

	var fileConfig types.Config
	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return err
	}

	mergeConfig(config, &fileConfig)
	return nil
}

// mergeConfig merges source config into target. Later sources win.
func mergeConfig(target, source *types.Config) {
	if source.Schema != "" {
		target.Schema = source.Schema
	}
	if source.Model != "" {
		target.Model = source.Model
	}
	if source.GenerationTimeoutSeconds > 0 {
		target.GenerationTimeoutSeconds = source.GenerationTimeoutSeconds
	}
	if source.PromptsPath != "" {
		target.PromptsPath = source.PromptsPath
	}

	for name, provider := range source.Provider {
		existing := target.Provider[name]
		if provider.APIKey != "" {
			existing.APIKey = provider.APIKey
		}
		if provider.BaseURL != "" {
			existing.BaseURL = provider.BaseURL
		}
		if provider.Model != "" {
			existing.Model = provider.Model
		}
		if provider.Disable {
			existing.Disable = true
		}
		target.Provider[name] = existing
	}
}

// applyEnvOverrides applies environment variable overrides.
func applyEnvOverrides(config *types.Config) {
	providerEnvMap := map[string]string{
		"anthropic": "ANTHROPIC_API_KEY",
		"openai":    "OPENAI_API_KEY",
		"ark":       "ARK_API_KEY",
	}

	for provider, envVar := range providerEnvMap {
		key := os.Getenv(envVar)
		if key == "" {
			continue
		}
		cfg := config.Provider[provider]
		if cfg.APIKey == "" {
			cfg.APIKey = key
		}
		config.Provider[provider] = cfg
	}

	if model := os.Getenv("PAWCHAT_MODEL"); model != "" {
		config.Model = model
	}
	if path := os.Getenv("PAWCHAT_PROMPTS"); path != "" {
		config.PromptsPath = path
	}
}

package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pawchat-ai/pawchat/internal/logging"
	"github.com/pawchat-ai/pawchat/pkg/types"
)

// Registry manages all available providers.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	config    *types.Config
}

// NewRegistry creates a new provider registry.
func NewRegistry(config *types.Config) *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		config:    config,
	}
}

// Register adds a provider to the registry.
func (r *Registry) Register(provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[provider.ID()] = provider
}

// Get retrieves a provider by ID.
func (r *Registry) Get(providerID string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, ok := r.providers[providerID]
	if !ok {
		return nil, fmt.Errorf("provider not found: %s", providerID)
	}
	return provider, nil
}

// List returns all available providers.
func (r *Registry) List() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		providers = append(providers, p)
	}
	return providers
}

// Default returns the provider the configuration selects, or the first
// registered one in a fixed preference order when no selection was made.
func (r *Registry) Default() (Provider, error) {
	if r.config != nil && r.config.Model != "" {
		providerID, _ := ParseModelString(r.config.Model)
		if providerID != "" {
			return r.Get(providerID)
		}
	}

	for _, id := range []string{"anthropic", "openai", "ark"} {
		if p, err := r.Get(id); err == nil {
			return p, nil
		}
	}

	return nil, fmt.Errorf("no providers available")
}

// ParseModelString parses "provider/model" format.
func ParseModelString(s string) (providerID, modelID string) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return "", s
}

// InitializeProviders creates and registers all providers the configuration
// has credentials for. Providers that fail to initialize are skipped with a
// warning; the caller decides whether an empty registry is acceptable.
func InitializeProviders(ctx context.Context, config *types.Config) (*Registry, error) {
	registry := NewRegistry(config)
	log := logging.Component("provider")

	if cfg, ok := config.Provider["anthropic"]; ok && cfg.APIKey != "" && !cfg.Disable {
		p, err := NewAnthropicProvider(ctx, &AnthropicConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   modelFor(config, "anthropic", cfg),
		})
		if err != nil {
			log.Warn().Err(err).Msg("anthropic provider unavailable")
		} else {
			registry.Register(p)
		}
	}

	if cfg, ok := config.Provider["openai"]; ok && cfg.APIKey != "" && !cfg.Disable {
		p, err := NewOpenAIProvider(ctx, &OpenAIConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   modelFor(config, "openai", cfg),
		})
		if err != nil {
			log.Warn().Err(err).Msg("openai provider unavailable")
		} else {
			registry.Register(p)
		}
	}

	if cfg, ok := config.Provider["ark"]; ok && cfg.APIKey != "" && !cfg.Disable {
		p, err := NewArkProvider(ctx, &ArkConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   modelFor(config, "ark", cfg),
		})
		if err != nil {
			log.Warn().Err(err).Msg("ark provider unavailable")
		} else {
			registry.Register(p)
		}
	}

	return registry, nil
}

// modelFor picks the model ID for a provider: the global "provider/model"
// selection when it names this provider, otherwise the per-provider config.
func modelFor(config *types.Config, providerID string, cfg types.ProviderConfig) string {
	if config.Model != "" {
		if pid, mid := ParseModelString(config.Model); pid == providerID {
			return mid
		}
	}
	return cfg.Model
}

package provider

import (
	"context"
	"testing"

	"github.com/pawchat-ai/pawchat/pkg/types"
)

// stubProvider satisfies Provider without touching any network.
type stubProvider struct {
	id string
}

func (p stubProvider) ID() string   { return p.id }
func (p stubProvider) Name() string { return p.id }
func (p stubProvider) Generate(ctx context.Context, prompt string) (string, error) {
	return "ok.", nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry(&types.Config{})
	r.Register(stubProvider{id: "openai"})

	p, err := r.Get("openai")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if p.ID() != "openai" {
		t.Errorf("ID = %q", p.ID())
	}

	if _, err := r.Get("missing"); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestRegistry_DefaultUsesConfigModel(t *testing.T) {
	r := NewRegistry(&types.Config{Model: "ark/ep-123"})
	r.Register(stubProvider{id: "openai"})
	r.Register(stubProvider{id: "ark"})

	p, err := r.Default()
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}
	if p.ID() != "ark" {
		t.Errorf("Default = %q, want ark", p.ID())
	}
}

func TestRegistry_DefaultPreferenceOrder(t *testing.T) {
	r := NewRegistry(&types.Config{})
	r.Register(stubProvider{id: "ark"})
	r.Register(stubProvider{id: "anthropic"})

	p, err := r.Default()
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}
	if p.ID() != "anthropic" {
		t.Errorf("Default = %q, want anthropic", p.ID())
	}
}

func TestRegistry_DefaultEmpty(t *testing.T) {
	r := NewRegistry(&types.Config{})
	if _, err := r.Default(); err == nil {
		t.Error("expected error for empty registry")
	}
}

func TestParseModelString(t *testing.T) {
	tests := []struct {
		input              string
		wantProvider, want string
	}{
		{"openai/gpt-4o", "openai", "gpt-4o"},
		{"ark/ep-2024", "ark", "ep-2024"},
		{"bare-model", "", "bare-model"},
	}
	for _, tt := range tests {
		provider, model := ParseModelString(tt.input)
		if provider != tt.wantProvider || model != tt.want {
			t.Errorf("ParseModelString(%q) = (%q, %q), want (%q, %q)",
				tt.input, provider, model, tt.wantProvider, tt.want)
		}
	}
}

func TestInitializeProviders_EmptyConfig(t *testing.T) {
	reg, err := InitializeProviders(context.Background(), &types.Config{
		Provider: map[string]types.ProviderConfig{},
	})
	if err != nil {
		t.Fatalf("InitializeProviders failed: %v", err)
	}
	if got := len(reg.List()); got != 0 {
		t.Errorf("expected empty registry, got %d providers", got)
	}
}

func TestInitializeProviders_DisabledProviderSkipped(t *testing.T) {
	reg, err := InitializeProviders(context.Background(), &types.Config{
		Provider: map[string]types.ProviderConfig{
			"openai": {APIKey: "sk-test", Disable: true},
		},
	})
	if err != nil {
		t.Fatalf("InitializeProviders failed: %v", err)
	}
	if _, err := reg.Get("openai"); err == nil {
		t.Error("disabled provider should not be registered")
	}
}

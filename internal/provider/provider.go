// Package provider wraps LLM text generation behind a narrow interface using
// the Eino framework. The chat engine only ever sees Generate; every provider
// failure mode collapses into ErrUnavailable.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ErrUnavailable is returned for any provider error, timeout, or
// malformed/empty response. Callers are expected to substitute fallback text
// rather than propagate it.
var ErrUnavailable = errors.New("generation unavailable")

// Generator produces a completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Provider is a named Generator backed by a concrete LLM service.
type Provider interface {
	Generator

	// ID returns the provider identifier ("openai", "anthropic", "ark").
	ID() string

	// Name returns the human-readable provider name.
	Name() string
}

// chatModelProvider adapts an Eino chat model to the Provider interface.
type chatModelProvider struct {
	id        string
	name      string
	chatModel model.BaseChatModel
}

func newChatModelProvider(id, name string, chatModel model.BaseChatModel) *chatModelProvider {
	return &chatModelProvider{id: id, name: name, chatModel: chatModel}
}

func (p *chatModelProvider) ID() string   { return p.id }
func (p *chatModelProvider) Name() string { return p.name }

// Generate sends the prompt as a single user message and returns the trimmed
// completion text.
func (p *chatModelProvider) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := p.chatModel.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUnavailable, p.id, err)
	}

	text := strings.TrimSpace(msg.Content)
	if text == "" {
		return "", fmt.Errorf("%w: %s returned an empty completion", ErrUnavailable, p.id)
	}
	return text, nil
}

package testutil

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ScriptedGenerator is a deterministic stand-in for an LLM provider. It tells
// question prompts and reaction prompts apart by inspecting the prompt text.
type ScriptedGenerator struct {
	mu        sync.Mutex
	questions int
	reactions int
	failing   bool
}

// NewScriptedGenerator returns a generator producing numbered questions and
// reactions.
func NewScriptedGenerator() *ScriptedGenerator {
	return &ScriptedGenerator{}
}

// SetFailing toggles unconditional failure.
func (g *ScriptedGenerator) SetFailing(failing bool) {
	g.mu.Lock()
	g.failing = failing
	g.mu.Unlock()
}

// Generate implements provider.Generator.
func (g *ScriptedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failing {
		return "", errors.New("scripted failure")
	}

	// Reaction prompts embed the user's answer.
	if strings.Contains(prompt, "Answer:") {
		g.reactions++
		return fmt.Sprintf("Reaction number %d, and a lovely answer it was!", g.reactions), nil
	}

	g.questions++
	return fmt.Sprintf("Scripted question number %d about cats?", g.questions), nil
}

// Questions returns how many question prompts were served.
func (g *ScriptedGenerator) Questions() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.questions
}

// Reactions returns how many reaction prompts were served.
func (g *ScriptedGenerator) Reactions() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reactions
}

// Package prompt holds the prompt templates and fixed texts used by the chat
// engine. The built-in set can be overridden with a prompts.yaml file and hot
// reloaded while the server runs.
package prompt

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Set is one complete set of prompts and fixed texts.
type Set struct {
	// QuestionPrompt is sent to the LLM to produce the next question.
	QuestionPrompt string `yaml:"questionPrompt"`

	// ReactionPrompt is sent to the LLM to produce a short reaction to an
	// answer. It must contain two %s verbs: question, then answer.
	ReactionPrompt string `yaml:"reactionPrompt"`

	// FallbackQuestion is returned when question generation fails.
	FallbackQuestion string `yaml:"fallbackQuestion"`

	// FallbackReaction is returned when reaction generation fails or
	// produces implausible text.
	FallbackReaction string `yaml:"fallbackReaction"`

	// CompletionReaction is the reaction to the final answer.
	CompletionReaction string `yaml:"completionReaction"`

	// TerminalMessage replaces the next question once all turns are done.
	TerminalMessage string `yaml:"terminalMessage"`

	// GreetingAccept and GreetingDecline answer the opt-in keyword check.
	GreetingAccept  string `yaml:"greetingAccept"`
	GreetingDecline string `yaml:"greetingDecline"`
}

// Default returns the built-in prompt set.
func Default() Set {
	return Set{
		QuestionPrompt: "You are a friendly cat enthusiast talking to a casual cat owner or cat lover. " +
			"Ask a simple, fun, and engaging question about cats that anyone could answer. " +
			"The question should be easy to understand and not require expert knowledge. " +
			"Make it conversational, as if you're chatting with a friend about cats. " +
			"Only return the question, nothing else.",
		ReactionPrompt: "As a friendly cat enthusiast, respond to the user's answer about cats in a casual, " +
			"warm, and engaging way. Keep your response brief (1-2 sentences) and conversational, " +
			"as if chatting with a friend. Be positive and encouraging. Don't ask new questions.\n\n" +
			"Question: %s\nUser's Answer: %s\n\nYour response:",
		FallbackQuestion:   "What's your favorite thing about cats?",
		FallbackReaction:   "That's so cool! I love hearing about people's experiences with cats. Thanks for sharing!",
		CompletionReaction: "Thank you for answering all the questions!",
		TerminalMessage:    "Congratulations! You have answered all the questions. Thank you for chatting with me about cats!",
		GreetingAccept:     "Great! I'm excited to chat with you about cats. Let's start with the first question.",
		GreetingDecline: "I understand. No problem at all! I'm here whenever you're ready to chat about cats. " +
			"Feel free to come back anytime. Have a great day!",
	}
}

// ReactionFor renders the reaction prompt for a question/answer pair.
func (s Set) ReactionFor(question, answer string) string {
	return fmt.Sprintf(s.ReactionPrompt, question, answer)
}

// LoadFile reads a YAML prompt file and merges it over the built-in set.
// Missing fields keep their defaults.
func LoadFile(path string) (Set, error) {
	set := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return set, err
	}

	var override Set
	if err := yaml.Unmarshal(data, &override); err != nil {
		return set, fmt.Errorf("failed to parse prompt file: %w", err)
	}

	merge(&set, override)
	return set, nil
}

func merge(target *Set, override Set) {
	if override.QuestionPrompt != "" {
		target.QuestionPrompt = override.QuestionPrompt
	}
	if override.ReactionPrompt != "" {
		target.ReactionPrompt = override.ReactionPrompt
	}
	if override.FallbackQuestion != "" {
		target.FallbackQuestion = override.FallbackQuestion
	}
	if override.FallbackReaction != "" {
		target.FallbackReaction = override.FallbackReaction
	}
	if override.CompletionReaction != "" {
		target.CompletionReaction = override.CompletionReaction
	}
	if override.TerminalMessage != "" {
		target.TerminalMessage = override.TerminalMessage
	}
	if override.GreetingAccept != "" {
		target.GreetingAccept = override.GreetingAccept
	}
	if override.GreetingDecline != "" {
		target.GreetingDecline = override.GreetingDecline
	}
}

// Library is a concurrency-safe holder for the current prompt set. A Library
// with no override file always serves the defaults.
type Library struct {
	mu  sync.RWMutex
	set Set
}

// NewLibrary creates a Library serving the built-in prompts.
func NewLibrary() *Library {
	return &Library{set: Default()}
}

// NewLibraryFromFile creates a Library seeded from a YAML override file.
func NewLibraryFromFile(path string) (*Library, error) {
	set, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return &Library{set: set}, nil
}

// Current returns the active prompt set.
func (l *Library) Current() Set {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.set
}

// Replace swaps in a new prompt set.
func (l *Library) Replace(set Set) {
	l.mu.Lock()
	l.set = set
	l.mu.Unlock()
}

// ReloadFile re-reads the override file and swaps the result in.
func (l *Library) ReloadFile(path string) error {
	set, err := LoadFile(path)
	if err != nil {
		return err
	}
	l.Replace(set)
	return nil
}

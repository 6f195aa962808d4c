package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/pawchat-ai/pawchat/internal/event"
	"github.com/pawchat-ai/pawchat/internal/logging"
	"github.com/pawchat-ai/pawchat/internal/prompt"
	"github.com/pawchat-ai/pawchat/internal/provider"
	"github.com/pawchat-ai/pawchat/pkg/types"
)

// minReactionLength rejects generated reactions shorter than this; the
// fallback reaction is substituted instead.
const minReactionLength = 20

// Engine owns the session lifecycle. All generation failures degrade to
// fixed fallback texts; the only errors surfaced to callers are ErrNotFound,
// ErrNoPendingQuestion, and storage failures.
type Engine struct {
	store     Store
	generator provider.Generator // nil means always use fallbacks
	prompts   *prompt.Library
	bus       *event.Bus // nil means no events
	log       zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// AnswerResult is what SubmitAnswer returns: a short reaction to the answer
// and either the next question or the terminal message.
type AnswerResult struct {
	Reaction     string
	NextQuestion string
	Completed    bool
}

// NewEngine constructs the lifecycle engine. generator and bus may be nil;
// a nil generator degrades every question and reaction to its fallback text.
func NewEngine(store Store, generator provider.Generator, prompts *prompt.Library, bus *event.Bus) *Engine {
	if prompts == nil {
		prompts = prompt.NewLibrary()
	}
	return &Engine{
		store:     store,
		generator: generator,
		prompts:   prompts,
		bus:       bus,
		log:       logging.Component("engine"),
		locks:     make(map[string]*sync.Mutex),
	}
}

// lockSession serializes mutating operations per session ID, so two
// concurrent answer submissions cannot both observe nine recorded turns and
// double-trigger completion.
func (e *Engine) lockSession(id string) func() {
	e.mu.Lock()
	lock, ok := e.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[id] = lock
	}
	e.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// forgetLock drops the per-session mutex. Called once a session has moved to
// the archive and can no longer be mutated, so the lock map stays bounded by
// the number of active sessions.
func (e *Engine) forgetLock(id string) {
	e.mu.Lock()
	delete(e.locks, id)
	e.mu.Unlock()
}

func (e *Engine) publish(ev event.Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}

// Create starts a new session with a fresh identifier and no turns.
func (e *Engine) Create(ctx context.Context) (*types.Session, error) {
	now := time.Now().UTC()
	session := &types.Session{
		ID:               ulid.Make().String(),
		StartTime:        now,
		LastActivityTime: now,
		Turns:            []types.Turn{},
	}

	if err := e.store.Put(ctx, session); err != nil {
		return nil, err
	}

	e.log.Info().Str("session", session.ID).Msg("session created")
	e.publish(event.Event{Type: event.SessionCreated, Data: event.SessionCreatedData{Session: session}})

	return session, nil
}

// NextQuestion returns the next question for the session, or the terminal
// message once all turns are recorded. Generation failures degrade to the
// fixed fallback question and are never surfaced.
func (e *Engine) NextQuestion(ctx context.Context, id string) (string, error) {
	unlock := e.lockSession(id)
	defer unlock()

	session, err := e.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// A completed session lives in the archive; asking it for
			// another question keeps returning the terminal message.
			if _, archErr := e.store.GetArchived(ctx, id); archErr == nil {
				e.forgetLock(id)
				return e.prompts.Current().TerminalMessage, nil
			}
		}
		return "", err
	}

	if session.Completed() {
		// Interrupted completion: the tenth turn was recorded but the move
		// to the archive did not finish. Converge and answer terminally.
		if err := e.finishCompletion(ctx, session); err != nil {
			return "", err
		}
		return e.prompts.Current().TerminalMessage, nil
	}

	question, err := e.issueQuestion(ctx, session)
	if err != nil {
		return "", err
	}
	return question, nil
}

// issueQuestion generates (or falls back to) a question, records it as the
// session's pending question, and persists. Caller must hold the session
// lock.
func (e *Engine) issueQuestion(ctx context.Context, session *types.Session) (string, error) {
	prompts := e.prompts.Current()

	question := prompts.FallbackQuestion
	if e.generator != nil {
		generated, err := e.generator.Generate(ctx, prompts.QuestionPrompt)
		if err != nil {
			e.log.Warn().Err(err).Str("session", session.ID).Msg("question generation failed, using fallback")
		} else {
			question = strings.TrimSpace(generated)
			if !strings.HasSuffix(question, "?") {
				question += "?"
			}
		}
	}

	session.PendingQuestion = question
	session.LastActivityTime = time.Now().UTC()
	if err := e.store.Put(ctx, session); err != nil {
		return "", err
	}
	return question, nil
}

// SubmitAnswer records one turn for the session. The tenth turn completes
// the session: it is moved to the archive and the fixed completion texts are
// returned without touching the generator.
func (e *Engine) SubmitAnswer(ctx context.Context, id, answer string) (*AnswerResult, error) {
	unlock := e.lockSession(id)
	defer unlock()

	prompts := e.prompts.Current()

	session, err := e.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			if _, archErr := e.store.GetArchived(ctx, id); archErr == nil {
				e.forgetLock(id)
				return &AnswerResult{
					Reaction:     prompts.CompletionReaction,
					NextQuestion: prompts.TerminalMessage,
					Completed:    true,
				}, nil
			}
		}
		return nil, err
	}

	if session.Completed() {
		if err := e.finishCompletion(ctx, session); err != nil {
			return nil, err
		}
		return &AnswerResult{
			Reaction:     prompts.CompletionReaction,
			NextQuestion: prompts.TerminalMessage,
			Completed:    true,
		}, nil
	}

	if session.PendingQuestion == "" {
		return nil, ErrNoPendingQuestion
	}

	question := session.PendingQuestion
	session.Turns = append(session.Turns, types.Turn{Question: question, Answer: answer})
	session.PendingQuestion = ""
	session.LastActivityTime = time.Now().UTC()

	if session.Completed() {
		if err := e.finishCompletion(ctx, session); err != nil {
			return nil, err
		}
		return &AnswerResult{
			Reaction:     prompts.CompletionReaction,
			NextQuestion: prompts.TerminalMessage,
			Completed:    true,
		}, nil
	}

	if err := e.store.Put(ctx, session); err != nil {
		return nil, err
	}

	e.publish(event.Event{Type: event.TurnRecorded, Data: event.TurnRecordedData{
		SessionID: session.ID,
		Turn:      types.Turn{Question: question, Answer: answer},
		Recorded:  len(session.Turns),
	}})

	reaction := e.react(ctx, session.ID, question, answer)

	next, err := e.issueQuestion(ctx, session)
	if err != nil {
		return nil, err
	}

	return &AnswerResult{Reaction: reaction, NextQuestion: next}, nil
}

// react asks the generator for a short reaction to an answer. Failures and
// implausible completions (too short, or missing terminal punctuation) are
// replaced with the fixed fallback reaction.
func (e *Engine) react(ctx context.Context, sessionID, question, answer string) string {
	prompts := e.prompts.Current()

	if e.generator == nil {
		return prompts.FallbackReaction
	}

	generated, err := e.generator.Generate(ctx, prompts.ReactionFor(question, answer))
	if err != nil {
		e.log.Warn().Err(err).Str("session", sessionID).Msg("reaction generation failed, using fallback")
		return prompts.FallbackReaction
	}

	reaction := strings.TrimSpace(generated)
	if !plausibleReaction(reaction) {
		e.log.Debug().Str("session", sessionID).Msg("implausible reaction, using fallback")
		return prompts.FallbackReaction
	}
	return reaction
}

// plausibleReaction requires a minimum length and terminal punctuation.
func plausibleReaction(s string) bool {
	if len(s) < minReactionLength {
		return false
	}
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?")
}

// finishCompletion stamps the end time once and moves the session to the
// archive. Safe to call again on a session whose move was interrupted.
// Caller must hold the session lock.
func (e *Engine) finishCompletion(ctx context.Context, session *types.Session) error {
	if session.EndTime == nil {
		now := time.Now().UTC()
		session.EndTime = &now
	}

	if err := e.store.Complete(ctx, session); err != nil {
		return err
	}

	e.forgetLock(session.ID)

	e.log.Info().Str("session", session.ID).Int("turns", len(session.Turns)).Msg("session completed")
	archived := session.Complete()
	e.publish(event.Event{Type: event.SessionCompleted, Data: event.SessionCompletedData{Session: &archived}})
	return nil
}

// Active returns the active session for the given ID. Read-only: sessions
// that have completed (including those whose archive move is unfinished) are
// reported as not found.
func (e *Engine) Active(ctx context.Context, id string) (*types.Session, error) {
	session, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Completed() {
		return nil, ErrNotFound
	}
	return session, nil
}

// Archived returns the archived record of a completed session.
func (e *Engine) Archived(ctx context.Context, id string) (*types.CompletedSession, error) {
	return e.store.GetArchived(ctx, id)
}

// Greet answers the opt-in check before a conversation starts. Any answer
// containing an agreeable keyword continues the chat.
func (e *Engine) Greet(answer string) (message string, continueChat bool) {
	prompts := e.prompts.Current()

	lower := strings.ToLower(answer)
	for _, keyword := range []string{"yes", "sure", "okay"} {
		if strings.Contains(lower, keyword) {
			return prompts.GreetingAccept, true
		}
	}
	return prompts.GreetingDecline, false
}

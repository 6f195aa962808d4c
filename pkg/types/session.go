// Package types provides the core data types for the PawChat server.
package types

import "time"

// MaxTurns is the number of question/answer turns a session holds before it
// is completed and archived.
const MaxTurns = 10

// SessionState describes where a session is in its lifecycle.
type SessionState string

const (
	// StateNew is a session with no recorded turns.
	StateNew SessionState = "new"
	// StateInProgress is a session with 1..9 recorded turns.
	StateInProgress SessionState = "in_progress"
	// StateComplete is a session with all turns recorded. Complete sessions
	// live in the archive collection, not the active one.
	StateComplete SessionState = "complete"
)

// Turn is one question/answer pair. Turns are append-only and ordered
// chronologically.
type Turn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Session represents an active conversation.
type Session struct {
	ID               string     `json:"id"`
	StartTime        time.Time  `json:"startTime"`
	EndTime          *time.Time `json:"endTime,omitempty"`
	LastActivityTime time.Time  `json:"lastActivityTime"`

	// PendingQuestion is the question most recently issued to the client and
	// not yet answered. Empty when no question is outstanding.
	PendingQuestion string `json:"pendingQuestion,omitempty"`

	Turns []Turn `json:"turns"`
}

// State derives the lifecycle state from the recorded turns.
func (s *Session) State() SessionState {
	switch {
	case len(s.Turns) == 0:
		return StateNew
	case len(s.Turns) >= MaxTurns:
		return StateComplete
	default:
		return StateInProgress
	}
}

// Completed reports whether the session has recorded all its turns.
func (s *Session) Completed() bool {
	return len(s.Turns) >= MaxTurns
}

// CompletedSession is the immutable archive record of a finished session.
type CompletedSession struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Turns     []Turn    `json:"turns"`
}

// Complete builds the archive record for a finished session. The caller must
// have set EndTime first.
func (s *Session) Complete() CompletedSession {
	var end time.Time
	if s.EndTime != nil {
		end = *s.EndTime
	}
	turns := make([]Turn, len(s.Turns))
	copy(turns, s.Turns)
	return CompletedSession{
		ID:        s.ID,
		StartTime: s.StartTime,
		EndTime:   end,
		Turns:     turns,
	}
}

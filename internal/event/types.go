package event

import "github.com/pawchat-ai/pawchat/pkg/types"

// SessionCreatedData is the data for session.created events.
type SessionCreatedData struct {
	Session *types.Session `json:"session"`
}

// TurnRecordedData is the data for turn.recorded events.
type TurnRecordedData struct {
	SessionID string     `json:"sessionID"`
	Turn      types.Turn `json:"turn"`
	Recorded  int        `json:"recorded"` // turns recorded so far
}

// SessionCompletedData is the data for session.completed events.
type SessionCompletedData struct {
	Session *types.CompletedSession `json:"session"`
}

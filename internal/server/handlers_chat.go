package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pawchat-ai/pawchat/pkg/types"
)

type startChatResponse struct {
	SessionID string `json:"sessionID"`
	Message   string `json:"message"`
}

type questionResponse struct {
	Question string `json:"question"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type answerResponse struct {
	Success      bool   `json:"success"`
	AIResponse   string `json:"aiResponse"`
	NextQuestion string `json:"nextQuestion"`
	Completed    bool   `json:"completed"`
}

type incompleteResponse struct {
	Session *types.Session `json:"session"`
}

type greetingRequest struct {
	Answer string `json:"answer"`
}

type greetingResponse struct {
	Message      string `json:"message"`
	ContinueChat bool   `json:"continueChat"`
}

// startChat handles POST /chat/start: a new session plus its first question.
func (s *Server) startChat(w http.ResponseWriter, r *http.Request) {
	session, err := s.engine.Create(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}

	question, err := s.engine.NextQuestion(r.Context(), session.ID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, startChatResponse{
		SessionID: session.ID,
		Message:   question,
	})
}

// getQuestion handles GET /chat/question/{sessionID}. Once the session has
// completed it keeps returning the terminal message.
func (s *Server) getQuestion(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	question, err := s.engine.NextQuestion(r.Context(), sessionID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, questionResponse{Question: question})
}

// submitAnswer handles POST /chat/answer/{sessionID}.
func (s *Server) submitAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}
	if req.Answer == "" {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "answer is required")
		return
	}

	result, err := s.engine.SubmitAnswer(r.Context(), sessionID, req.Answer)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, answerResponse{
		Success:      true,
		AIResponse:   result.Reaction,
		NextQuestion: result.NextQuestion,
		Completed:    result.Completed,
	})
}

// getIncomplete handles GET /chat/incomplete/{sessionID}. It returns the
// active session so a client can resume an interrupted conversation.
func (s *Server) getIncomplete(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := s.engine.Active(r.Context(), sessionID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, incompleteResponse{Session: session})
}

// getCompleted handles GET /chat/completed/{sessionID}.
func (s *Server) getCompleted(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := s.engine.Archived(r.Context(), sessionID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// greeting handles POST /chat/greeting, the opt-in check before starting a
// conversation.
func (s *Server) greeting(w http.ResponseWriter, r *http.Request) {
	var req greetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}

	message, continueChat := s.engine.Greet(req.Answer)
	writeJSON(w, http.StatusOK, greetingResponse{
		Message:      message,
		ContinueChat: continueChat,
	})
}

// health handles GET /health.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

package server

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	r := s.router

	r.Route("/chat", func(r chi.Router) {
		r.Post("/start", s.startChat)
		r.Post("/greeting", s.greeting)

		r.Get("/question/{sessionID}", s.getQuestion)
		r.Post("/answer/{sessionID}", s.submitAnswer)
		r.Get("/incomplete/{sessionID}", s.getIncomplete)
		r.Get("/completed/{sessionID}", s.getCompleted)
	})

	// Event streaming (SSE)
	r.Get("/event", s.events)

	r.Get("/health", s.health)
}

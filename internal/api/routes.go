package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	origins := s.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", profileHeaderName},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Get("/profiles", s.handleProfiles)
	r.Post("/profiles", s.handleCreateProfile)
	r.Delete("/profiles/{id}", s.handleDeleteProfile)

	r.Group(func(r chi.Router) {
		r.Use(s.profileMiddleware)

		r.Get("/scenarios", s.handleScenarios)
		r.Get("/scenarios/{id}", s.handleScenario)

		r.Post("/attempts", s.handleStartAttempt)
		r.Get("/attempts/{id}", s.handleGetAttempt)
		r.Post("/attempts/{id}/turns", s.handleSubmitTurn)
		r.Delete("/attempts/{id}", s.handleAbandonAttempt)
		r.Get("/attempts/{id}/ws", s.handleAttemptSocket)

		r.Get("/progress", s.handleProgress)
		r.Post("/progress/reset", s.handleResetProgress)
		r.Get("/history", s.handleHistory)
	})

	return r
}

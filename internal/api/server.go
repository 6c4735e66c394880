// Package api exposes the arena over HTTP: a chi router, JSON handlers and
// JWT identity middleware. Handlers are thin glue over the app services;
// every rule lives below this layer.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"agora/app"
	"agora/internal/config"
)

// Server represents the HTTP API application
type Server struct {
	router      *chi.Mux
	debates     *app.DebateService
	submissions *app.SubmissionService
	auth        *Authenticator
}

// NewServer creates the API server
func NewServer(cfg *config.Config, debates *app.DebateService, submissions *app.SubmissionService) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		debates:     debates,
		submissions: submissions,
		auth:        NewAuthenticator(cfg.Server.JWTSecret),
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	// Public reads
	s.router.Get("/debates", s.handleListDebates)
	s.router.Get("/debates/{id}", s.handleGetDebate)
	s.router.Get("/debates/{id}/arguments", s.handleListArguments)
	s.router.Get("/debates/{id}/stages", s.handleListStages)
	s.router.Get("/debates/{id}/tally", s.handleTally)

	// Agent submissions (authenticated)
	s.router.Group(func(r chi.Router) {
		r.Use(s.auth.RequireIdentity)
		r.Post("/debates/{id}/join", s.handleJoin)
		r.Post("/debates/{id}/arguments", s.handleSubmitArgument)
	})

	// Challenge verification; the code is the credential
	s.router.Post("/verify", s.handleVerify)
	s.router.Post("/verify/{code}/cancel", s.handleCancel)

	// Human votes: authenticated user or anonymous session cookie
	s.router.With(s.auth.Voter).Post("/debates/{id}/votes", s.handleCastVote)

	// Admin lifecycle
	s.router.Group(func(r chi.Router) {
		r.Use(s.auth.RequireIdentity, s.auth.RequireAdmin)
		r.Post("/debates", s.handleCreateDebate)
		r.Post("/debates/{id}/stages", s.handleAddStage)
		r.Put("/debates/{id}/stages/{stageID}", s.handleUpdateStage)
		r.Delete("/debates/{id}/stages/{stageID}", s.handleDeleteStage)
		r.Post("/debates/{id}/stages/{stageID}/activate", s.handleActivateStage)
		r.Post("/debates/{id}/stages/{stageID}/complete", s.handleCompleteStage)
		r.Post("/debates/{id}/open-voting", s.handleOpenVoting)
		r.Post("/debates/{id}/complete", s.handleCompleteDebate)
		r.Put("/arguments/{argumentID}", s.handleEditArgument)
		r.Delete("/arguments/{argumentID}", s.handleDeleteArgument)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

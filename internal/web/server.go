// Package web serves the Valora questionnaire and recommendations in the
// browser.
package web

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/justestif/valora/internal/questionnaire"
	"github.com/justestif/valora/internal/quizstore"
)

// ServerConfig holds server configuration and collaborators.
type ServerConfig struct {
	Addr        string
	SessionTTL  time.Duration
	TemplatesFS fs.FS
	StaticFS    fs.FS

	Auth        OAuth
	Clients     ClientFactory
	Sessions    SessionManager
	Quizzes     quizstore.Store
	Recommender Recommender
	Users       UserRecorder       // optional
	Rand        questionnaire.Rand // optional, shuffles item order
}

// Server is the HTTP server for the web application.
type Server struct {
	router   chi.Router
	server   *http.Server
	handlers *Handlers
}

// NewServer creates a new web server.
func NewServer(cfg ServerConfig) (*Server, error) {
	switch {
	case cfg.Auth == nil, cfg.Clients == nil:
		return nil, errors.New("web: Spotify auth not configured")
	case cfg.Sessions == nil, cfg.Quizzes == nil:
		return nil, errors.New("web: session stores not configured")
	case cfg.Recommender == nil:
		return nil, errors.New("web: recommender not configured")
	}

	templates, err := NewTemplates(cfg.TemplatesFS)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	s := &Server{
		router:   chi.NewRouter(),
		handlers: NewHandlers(cfg, templates),
	}

	s.setupMiddleware()
	s.setupRoutes(cfg.StaticFS)

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures routes for the application.
func (s *Server) setupRoutes(staticFS fs.FS) {
	h := s.handlers

	if staticFS != nil {
		fileServer := http.FileServer(http.FS(staticFS))
		s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))
	}

	s.router.Get("/", h.Home)
	s.router.Get("/remarks", h.Remarks)

	s.router.Get("/auth/login", h.Login)
	s.router.Get("/callback", h.Callback)
	s.router.Post("/auth/logout", h.Logout)

	s.router.Route("/questionnaire", func(r chi.Router) {
		r.Get("/", h.Questionnaire)
		r.Post("/rate", h.Rate)
		r.Post("/proceed", h.Proceed)
		r.Post("/valence", h.Valence)
		r.Post("/submit", h.Submit)
	})

	s.router.Get("/recommendations", h.Recommendations)
	s.router.Post("/get_recommendations", h.GetRecommendations)
	s.router.Post("/add_all_to_playlist", h.AddAllToPlaylist)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server at http://%s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Println("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

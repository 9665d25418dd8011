package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"tailscale.com/client/tailscale"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

// Store abstracts the storage layer for HTTP handlers, so tests can run
// against a fake without Postgres.
type Store interface {
	SuggestionFeed(ctx context.Context, userID int) ([]models.ExerciseCandidate, error)
	InsertExerciseLog(ctx context.Context, row storage.ExerciseLogRow) (uuid.UUID, error)
	GetOrCreateUser(ctx context.Context, login, displayName string) (int, error)
}

// Compile-time check: *storage.DB satisfies Store.
var _ Store = (*storage.DB)(nil)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db     Store
	log    *slog.Logger
	apiKey string
	lc     *tailscale.LocalClient
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(db Store, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:     db,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetTailscale enables Tailscale identity resolution. Without it every
// request runs as the local dev user.
func (s *Server) SetTailscale(lc *tailscale.LocalClient) {
	s.lc = lc
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	// Write endpoints (API key required)
	s.router.Route("/api/v1/exercises/log", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/", s.handleLogExercise)
	})

	// Read endpoints (no auth — tsnet handles access)
	s.router.Get("/api/v1/exercises/suggestions", s.handleSuggestionFeed)
	s.router.Get("/api/v1/me", s.handleMe)
	s.router.Get("/api/v1/health", s.handleHealth)
}

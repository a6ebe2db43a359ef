package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/roomcheck/roomcheck/internal/ai"
	"github.com/roomcheck/roomcheck/internal/inspection"
	"github.com/roomcheck/roomcheck/internal/pipeline"
	"github.com/roomcheck/roomcheck/internal/queue"
	"github.com/roomcheck/roomcheck/internal/ratelimit"
	"github.com/roomcheck/roomcheck/internal/store"
)

// Processor runs one video's analyze-and-store round trip.
type Processor interface {
	Process(ctx context.Context, req pipeline.Request) (*inspection.Analysis, error)
}

// Verifier runs one checklist verification round.
type Verifier interface {
	VerifyChecklist(ctx context.Context, data []byte, contentType string, items []inspection.ChecklistItem) (*ai.VerificationResult, error)
}

type Config struct {
	Store          store.MediaStore
	Processor      Processor
	Verifier       Verifier
	Queue          *queue.Queue
	Manual         *inspection.ManualObservations
	VideosDir      string // non-empty enables static serving under /videos/
	MaxUploadBytes int64
	BaseURL        string
}

type Server struct {
	router    chi.Router
	store     store.MediaStore
	processor Processor
	verifier  Verifier
	queue     *queue.Queue
	manual    *inspection.ManualObservations
	videosDir string
	maxBytes  int64
}

func New(cfg Config) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(securityHeaders(cfg.BaseURL))

	s := &Server{
		router:    r,
		store:     cfg.Store,
		processor: cfg.Processor,
		verifier:  cfg.Verifier,
		queue:     cfg.Queue,
		manual:    cfg.Manual,
		videosDir: cfg.VideosDir,
		maxBytes:  cfg.MaxUploadBytes,
	}

	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)

	// Uploads fan out into expensive AI calls; keep the bucket small.
	uploadLimiter := ratelimit.NewLimiter(1, 5)
	s.router.Route("/api/analyses", func(r chi.Router) {
		r.Get("/", s.handleListAnalyses)
		r.With(uploadLimiter.Middleware).Post("/", s.handleCreateAnalysis)
		r.With(uploadLimiter.Middleware).Post("/batch", s.handleCreateBatch)
		r.Get("/batch/{id}", s.handleGetBatch)
		r.Delete("/{base}", s.handleDeleteAnalysis)
	})
	s.router.With(uploadLimiter.Middleware).Post("/api/verifications", s.handleVerify)

	if s.videosDir != "" {
		fileServer := http.StripPrefix("/videos/", http.FileServer(http.Dir(s.videosDir)))
		s.router.Get("/videos/*", fileServer.ServeHTTP)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

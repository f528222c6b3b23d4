// Package preview serves a built site locally for review, with build
// stats exposed for watch-mode rebuilds.
package preview

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dgallion1/notesite/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server serves the rendered site from the output directory.
type Server struct {
	router chi.Router
	stats  *pipeline.BuildStats
	log    *slog.Logger
}

// NewServer creates and configures the preview HTTP server.
func NewServer(outputDir string, stats *pipeline.BuildStats, log *slog.Logger) *Server {
	s := &Server{
		stats: stats,
		log:   log,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log))

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/stats", s.handleStats)
	r.Handle("/*", http.FileServer(http.Dir(outputDir)))

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.stats.Snapshot()); err != nil {
		s.log.Error("encode stats", "error", err)
	}
}

// Package api exposes the scraped snapshots over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alexandermaffei/matera-film-scraper/internal/model"
	"github.com/alexandermaffei/matera-film-scraper/internal/service"
	"github.com/alexandermaffei/matera-film-scraper/internal/trakt"
)

// Enricher looks up film metadata for a snapshot. Optional; a nil
// enricher makes /api/films/enriched report the missing credential.
type Enricher interface {
	Enrich(ctx context.Context, cinemas []model.Cinema) (map[string]*trakt.EnrichedFilm, error)
}

// Server is the HTTP API server.
type Server struct {
	server    *http.Server
	service   *service.Service
	enricher  Enricher
	logger    *zap.Logger
	startedAt time.Time
}

// NewServer creates the API server. The enricher may be nil.
func NewServer(port string, svc *service.Service, enricher Enricher, logger *zap.Logger) *Server {
	mux := http.NewServeMux()

	server := &Server{
		server: &http.Server{
			Addr:         ":" + port,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		service:   svc,
		enricher:  enricher,
		logger:    logger,
		startedAt: time.Now(),
	}

	mux.HandleFunc("/", server.indexHandler)
	mux.HandleFunc("/health", server.healthHandler)
	mux.HandleFunc("/api/films", server.filmsHandler)
	mux.HandleFunc("/api/films/telegram", server.telegramHandler)
	mux.HandleFunc("/api/films/enriched", server.enrichedHandler)
	mux.HandleFunc("/api/films/", server.cinemaHandler)

	return server
}

// Start runs the server until Stop is called.
func (s *Server) Start() error {
	s.logger.Info("Starting API server", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("Stopping API server")
	return s.server.Shutdown(ctx)
}

// Handler returns the route table, for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, message string) {
	s.writeJSON(w, code, map[string]string{"error": message})
}

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}

	sources := s.service.Sources()
	cinemas := make([]string, 0, len(sources))
	for _, src := range sources {
		cinemas = append(cinemas, src.Name)
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"service": "matera-film-scraper",
		"cinema":  cinemas,
		"endpoints": []string{
			"/health",
			"/api/films",
			"/api/films/telegram",
			"/api/films/enriched",
			"/api/films/{cinema}",
		},
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Truncate(time.Second).String(),
	})
}

func (s *Server) filmsHandler(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.service.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"timestamp": snapshot.Timestamp,
		"cinema":    snapshot.Cinemas,
		"statistics": map[string]int{
			"total_cinema": len(snapshot.Cinemas),
			"total_films":  snapshot.TotalFilms(),
		},
	})
}

func (s *Server) telegramHandler(w http.ResponseWriter, r *http.Request) {
	text, err := s.service.Digest(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(text)); err != nil {
		s.logger.Error("Failed to write digest", zap.Error(err))
	}
}

func (s *Server) enrichedHandler(w http.ResponseWriter, r *http.Request) {
	if s.enricher == nil {
		s.writeError(w, http.StatusServiceUnavailable, trakt.ErrMissingClientID.Error())
		return
	}

	snapshot, err := s.service.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	films, err := s.enricher.Enrich(r.Context(), snapshot.Cinemas)
	if err != nil {
		if errors.Is(err, trakt.ErrMissingClientID) {
			s.writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"timestamp": snapshot.Timestamp,
		"film":      films,
		"statistics": map[string]int{
			"total_films": len(films),
		},
	})
}

func (s *Server) cinemaHandler(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/films/")
	if name == "" {
		s.filmsHandler(w, r)
		return
	}

	snapshot, err := s.service.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	cinema := service.CinemaByName(snapshot, name)
	if cinema == nil {
		s.writeJSON(w, http.StatusNotFound, map[string]any{
			"error":     "cinema not found",
			"available": cinemaNames(snapshot),
		})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"timestamp": snapshot.Timestamp,
		"cinema":    cinema,
	})
}

func cinemaNames(snapshot *model.Snapshot) []string {
	names := make([]string, 0, len(snapshot.Cinemas))
	for _, cinema := range snapshot.Cinemas {
		names = append(names, cinema.Name)
	}
	return names
}

// Package http exposes the admin surface: liveness and Prometheus metrics.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-yt-summarizer/internal/queue"
)

type Server struct {
	port   int
	queue  *queue.RequestQueue
	server *http.Server
	log    *zerolog.Logger
}

func NewServer(port int, q *queue.RequestQueue, logger *zerolog.Logger) *Server {
	sLog := logger.With().Str("component", "AdminServer").Logger()
	return &Server{port: port, queue: q, log: &sLog}
}

func (s *Server) Start() error {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.log.Info().Int("port", s.port).Msg("admin http server listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.queue.Stats(r.Context())
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"ok","queue_size":%d,"processing":%d,"capacity":%d}`,
		stats.QueueSize, stats.ProcessingCount, stats.Capacity)
}

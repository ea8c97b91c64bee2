// Package relay implements the same-origin HTTP relay in front of the question-answering backend.
package relay

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/raphaelgruber/docchat-go/internal/metrics"
	"github.com/raphaelgruber/docchat-go/internal/models"
)

// Route paths served by the relay.
const (
	PathChat   = "/api/chat"
	PathStats  = "/api/stats"
	PathHealth = "/health"
)

// Error messages returned to relay callers.
const (
	msgInvalidType = "Invalid query type"
	msgInvalidBody = "invalid request body"
)

// maxRequestBytes bounds the accepted request body.
const maxRequestBytes = 1 << 20

// Forwarder sends a raw question body to the backend endpoint for mode.
// It returns the backend status and body; err is set only when no response was received.
type Forwarder interface {
	Forward(ctx context.Context, mode models.QueryMode, body []byte) (int, []byte, error)
}

// chatRequest is the relay's request body.
type chatRequest struct {
	Question       string           `json:"question"`
	CollectionName string           `json:"collection_name"`
	Type           models.QueryMode `json:"type"`
}

// forwardBody is what reaches the backend: the mode tag is consumed by routing.
type forwardBody struct {
	Question       string `json:"question"`
	CollectionName string `json:"collection_name"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server holds the relay dependencies.
type Server struct {
	backend        Forwarder
	metrics        *metrics.Collector
	logger         *slog.Logger
	allowedOrigins []string
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records relay timings into m and exposes them on /api/stats.
func WithMetrics(m *metrics.Collector) Option {
	return func(s *Server) { s.metrics = m }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithAllowedOrigins enables CORS for the given origins. None means same-origin only.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) { s.allowedOrigins = origins }
}

// NewServer creates a relay in front of backend.
func NewServer(backend Forwarder, opts ...Option) *Server {
	s := &Server{
		backend: backend,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the router with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(LoggingMiddleware(s.logger))
	r.Use(middleware.Recoverer)

	if len(s.allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get(PathHealth, s.handleHealth)
	r.Route("/api", func(api chi.Router) {
		api.Post("/chat", s.handleChat)
		api.Get("/stats", s.handleStats)
	})
	return r
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	failed := true
	defer func() { s.metrics.RecordTiming(metrics.OpRelay, time.Since(start), failed) }()

	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if !req.Type.Valid() {
		writeError(w, http.StatusBadRequest, msgInvalidType)
		return
	}

	body, err := json.Marshal(forwardBody{Question: req.Question, CollectionName: req.CollectionName})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	status, respBody, err := s.backend.Forward(r.Context(), req.Type, body)
	if err != nil {
		s.logger.Error("relay forward failed", "type", req.Type, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	failed = status >= http.StatusBadRequest
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(respBody); err != nil {
		s.logger.Warn("relay write failed", "error", err)
	}
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Package httpapi binds the turn pipeline to HTTP.  The shell is thin:
// request decoding, the /health probe and the Prometheus endpoint.
package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"triage-assistant/internal/triage"
	"triage-assistant/pkg"
)

// Server bundles the dependencies required by the HTTP handlers.
type Server struct {
	engine *triage.Engine
	logger *zap.Logger
	router chi.Router
}

// NewServer constructs the HTTP shell.  registry serves /metrics; it may be
// nil to disable the endpoint.
func NewServer(engine *triage.Engine, logger *zap.Logger, registry *prometheus.Registry) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{engine: engine, logger: logger}

	r := chi.NewRouter()
	r.Get("/health", s.handleHealth)
	r.Post("/api/chat", s.handleChat)
	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleChat runs one turn.  The session id defaults to "default" so a bare
// client can hold a single conversation.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var in pkg.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = in.SessionID
	}
	if sessionID == "" {
		sessionID = "default"
	}
	if in.Message == "" {
		http.Error(w, "empty message", http.StatusBadRequest)
		return
	}

	reply, err := s.engine.Turn(r.Context(), sessionID, in.Message)
	if err != nil {
		// Only programming defects propagate this far; keep the body free
		// of user text and error detail.
		s.logger.Error("chat_turn_failed", zap.String("error_type", fmt.Sprintf("%T", err)))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

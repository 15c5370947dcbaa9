package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aretw0/metamaze"
	"github.com/aretw0/metamaze/internal/logging"
	"github.com/aretw0/metamaze/pkg/domain"
	"github.com/aretw0/metamaze/pkg/maze"
	"github.com/aretw0/metamaze/pkg/mazemap"
	"github.com/aretw0/metamaze/pkg/schema"
	"github.com/aretw0/metamaze/pkg/session"
	"github.com/go-chi/chi/v5"
)

// Server exposes a session Host over HTTP.
type Server struct {
	Host    *session.Host
	Streams *StreamManager

	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics serves h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithStreams sets the StreamManager feeding SSE subscribers. Its Publish
// method is meant to be the host's diff listener, so steps taken through any
// surface reach the stream.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// CreateSessionRequest is the body of POST /sessions.
type CreateSessionRequest struct {
	Maze string `json:"maze"`
	Goal int    `json:"goal"`
}

// StepResponse is returned by POST /sessions/{id}/doors/{door}.
type StepResponse struct {
	Result *metamaze.StepResult `json:"result"`
	Diff   *domain.StateDiff    `json:"diff,omitempty"`
}

// NewServer builds a Server around host.
func NewServer(host *session.Host, opts ...Option) *Server {
	s := &Server{
		Host:   host,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}
	return s
}

// NewHandler creates the HTTP handler for host.
func NewHandler(host *session.Host, opts ...Option) http.Handler {
	return NewServer(host, opts...).Routes()
}

// Routes mounts every endpoint on a chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/mazes", s.ListMazes)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Get("/room", s.GetRoom)
			r.Post("/doors/{door}", s.ChooseDoor)
			r.Get("/plan", s.Plan)
			r.Get("/dump", s.Dump)
			r.Get("/events", s.SubscribeEvents)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "metamaze-http",
		"version": metamaze.Version,
	})
}

// ListMazes handles GET /mazes.
func (s *Server) ListMazes(w http.ResponseWriter, r *http.Request) {
	names, err := s.Host.Mazes(r.Context())
	if err != nil {
		s.writeError(w, "list mazes", err)
		return
	}
	s.writeJSON(w, http.StatusOK, names)
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Host.List(r.Context())
	if err != nil {
		s.writeError(w, "list sessions", err)
		return
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// CreateSession handles POST /sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("CreateSession: invalid request body", "error", err)
		return
	}
	if body.Maze == "" {
		http.Error(w, "maze is required", http.StatusBadRequest)
		return
	}

	state, err := s.Host.Create(r.Context(), body.Maze, body.Goal)
	if err != nil {
		s.writeError(w, "create session", err)
		return
	}
	w.Header().Set("Location", "/sessions/"+state.SessionID)
	s.writeJSON(w, http.StatusCreated, state)
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.Host.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, "get session", err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Host.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, "delete session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetRoom handles GET /sessions/{id}/room.
func (s *Server) GetRoom(w http.ResponseWriter, r *http.Request) {
	view, err := s.Host.Room(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, "get room", err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// ChooseDoor handles POST /sessions/{id}/doors/{door}.
func (s *Server) ChooseDoor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	door, err := strconv.Atoi(chi.URLParam(r, "door"))
	if err != nil {
		http.Error(w, "door must be an integer", http.StatusBadRequest)
		return
	}

	res, diff, err := s.Host.Step(r.Context(), id, door)
	if err != nil {
		s.writeError(w, "choose door", err)
		return
	}
	s.writeJSON(w, http.StatusOK, StepResponse{Result: res, Diff: diff})
}

// Plan handles GET /sessions/{id}/plan?goal=G. Without goal the session goal is used.
func (s *Server) Plan(w http.ResponseWriter, r *http.Request) {
	var goal *int
	if q := r.URL.Query().Get("goal"); q != "" {
		g, err := strconv.Atoi(q)
		if err != nil {
			http.Error(w, "goal must be an integer", http.StatusBadRequest)
			return
		}
		goal = &g
	}

	advice, err := s.Host.Plan(r.Context(), chi.URLParam(r, "id"), goal)
	if err != nil {
		s.writeError(w, "plan", err)
		return
	}
	s.writeJSON(w, http.StatusOK, advice)
}

// Dump handles GET /sessions/{id}/dump?format=text|dot.
func (s *Server) Dump(w http.ResponseWriter, r *http.Request) {
	format, err := mazemap.ParseDumpFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, "dump", err)
		return
	}

	var sb strings.Builder
	if err := s.Host.Dump(r.Context(), chi.URLParam(r, "id"), &sb, format); err != nil {
		s.writeError(w, "dump", err)
		return
	}
	contentType := "text/plain; charset=utf-8"
	if format == mazemap.DumpGraph {
		contentType = "text/vnd.graphviz; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	fmt.Fprint(w, sb.String())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "error", err)
	} else {
		s.logger.Debug(op+" rejected", "error", err, "status", status)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrMazeNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSessionExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrLockTimeout):
		return http.StatusServiceUnavailable
	case errors.Is(err, mazemap.ErrRoomMapPlanning):
		return http.StatusUnprocessableEntity
	case errors.Is(err, maze.ErrDoorOutOfRange),
		errors.Is(err, mazemap.ErrDoorOutOfRange),
		errors.Is(err, mazemap.ErrGoalOutOfRange),
		errors.Is(err, mazemap.ErrUnknownDumpFormat),
		errors.Is(err, schema.ErrInvalidConfig):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

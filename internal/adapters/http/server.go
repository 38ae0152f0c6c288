// Package http exposes the conversation service over REST plus an SSE
// state stream. Transport mechanics only; every conversational decision
// stays in the graph.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Dima11235813/wellness-clinic-agent/internal/conversation"
	"github.com/Dima11235813/wellness-clinic-agent/pkg/domain"
)

// Conversation is the slice of the service the transport needs.
type Conversation interface {
	NewThreadID() string
	StartTurn(ctx context.Context, threadID, utterance string) (*conversation.TurnResult, error)
	ResumeTurn(ctx context.Context, threadID string, payload domain.ResumePayload) (*conversation.TurnResult, error)
	Snapshot(ctx context.Context, threadID string) (*domain.State, error)
	Threads(ctx context.Context) ([]string, error)
	Watch(threadID string) (<-chan domain.State, func())
}

// Server holds the transport dependencies.
type Server struct {
	svc    Conversation
	logger *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHandler builds the HTTP routing tree over the conversation service.
func NewHandler(svc Conversation, opts ...Option) http.Handler {
	s := &Server{svc: svc, logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)}))}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Route("/threads", func(r chi.Router) {
		r.Get("/", s.listThreads)
		r.Post("/", s.createThread)
		r.Route("/{threadID}", func(r chi.Router) {
			r.Get("/state", s.getState)
			r.Post("/messages", s.postMessage)
			r.Post("/resume", s.postResume)
			r.Get("/events", s.streamEvents)
		})
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listThreads(w http.ResponseWriter, r *http.Request) {
	ids, err := s.svc.Threads(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"threads": ids})
}

func (s *Server) createThread(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusCreated, map[string]string{"thread_id": s.svc.NewThreadID()})
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	state, err := s.svc.Snapshot(r.Context(), chi.URLParam(r, "threadID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	result, err := s.svc.StartTurn(r.Context(), chi.URLParam(r, "threadID"), body.Text)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) postResume(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	payload, err := domain.DecodeResumePayload(raw)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.svc.ResumeTurn(r.Context(), chi.URLParam(r, "threadID"), payload)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// streamEvents pushes one SSE data frame per state snapshot, starting with
// the current state so late subscribers never miss the pending interrupt.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	threadID := chi.URLParam(r, "threadID")
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	states, cancel := s.svc.Watch(threadID)
	defer cancel()

	if current, err := s.svc.Snapshot(r.Context(), threadID); err == nil {
		s.writeFrame(w, flusher, *current)
	} else {
		fmt.Fprint(w, "event: ping\ndata: connected\n\n")
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case state, ok := <-states:
			if !ok {
				return
			}
			s.writeFrame(w, flusher, state)
		}
	}
}

func (s *Server) writeFrame(w http.ResponseWriter, flusher http.Flusher, state domain.State) {
	buf, err := json.Marshal(state)
	if err != nil {
		s.logger.Warn("state frame marshal failed", "thread_id", state.ThreadID, "error", err)
		return
	}
	fmt.Fprintf(w, "event: state\ndata: %s\n\n", buf)
	flusher.Flush()
}

// writeError maps the domain error taxonomy onto status codes: unknown
// thread is 404, protocol violations and mid-turn conflicts are 409,
// everything else is a plain 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var protoErr *domain.ProtocolError
	switch {
	case errors.Is(err, domain.ErrThreadNotFound):
		s.writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case errors.As(err, &protoErr),
		errors.Is(err, domain.ErrNoPendingInterrupt),
		errors.Is(err, domain.ErrTurnInProgress):
		s.writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	default:
		s.logger.Error("request failed", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("response encode failed", "error", err)
	}
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

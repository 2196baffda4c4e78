// Package server exposes the monitor operations over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	watcherrors "github.com/user/registry-watch/pkg/errors"
	"github.com/user/registry-watch/pkg/types"
)

// Monitor is the part of the monitor service the HTTP layer needs.
type Monitor interface {
	RunAll(ctx context.Context, images []types.MonitoredImage) ([]types.ImageState, error)
	RunSingle(ctx context.Context, images []types.MonitoredImage, index int) (types.CheckResult, error)
	Dismiss(image, tag string) (types.ImageState, error)
	Reset(image, tag string) (types.ImageState, error)
	States() ([]types.ImageState, error)
}

// Server wires the monitor service into an HTTP router.
type Server struct {
	monitor Monitor
	images  func() []types.MonitoredImage
	logger  *slog.Logger
}

// New creates the HTTP server. images supplies the current monitored list on
// every request so config reloads are picked up.
func New(mon Monitor, images func() []types.MonitoredImage, logger *slog.Logger) *Server {
	return &Server{
		monitor: mon,
		images:  images,
		logger:  logger,
	}
}

// Router builds the chi router with all API routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/state", s.handleStates)
		r.Post("/check", s.handleCheckAll)
		r.Post("/images/{index}/check", s.handleCheckOne)
		r.Post("/state/dismiss", s.handleDismiss)
		r.Post("/state/reset", s.handleReset)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}

func (s *Server) handleStates(w http.ResponseWriter, r *http.Request) {
	states, err := s.monitor.States()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, states)
}

func (s *Server) handleCheckAll(w http.ResponseWriter, r *http.Request) {
	states, err := s.monitor.RunAll(r.Context(), s.images())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, states)
}

func (s *Server) handleCheckOne(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "index must be an integer", http.StatusBadRequest)
		return
	}

	result, err := s.monitor.RunSingle(r.Context(), s.images(), index)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// stateRequest identifies one (image, tag) pair in dismiss/reset bodies.
type stateRequest struct {
	Image string `json:"image"`
	Tag   string `json:"tag"`
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	s.handleStateMutation(w, r, s.monitor.Dismiss)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.handleStateMutation(w, r, s.monitor.Reset)
}

func (s *Server) handleStateMutation(w http.ResponseWriter, r *http.Request, mutate func(image, tag string) (types.ImageState, error)) {
	var req stateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Image == "" {
		http.Error(w, "image is required", http.StatusBadRequest)
		return
	}

	next, err := mutate(req.Image, req.Tag)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, next)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encoding response failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, watcherrors.ErrImageNotFound) || errors.Is(err, watcherrors.ErrStateNotFound) {
		status = http.StatusNotFound
	}
	s.logger.Error("request failed", "status", status, "error", err)
	http.Error(w, err.Error(), status)
}

// Package http exposes the planner to a browser or mobile client over JSON and server-sent events.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/citywalk"
	"github.com/aretw0/citywalk/internal/logging"
	"github.com/aretw0/citywalk/pkg/adapters/locator"
	"github.com/aretw0/citywalk/pkg/domain"
	"github.com/aretw0/citywalk/pkg/ports"
)

// maxBodyBytes bounds request bodies; payloads are two short labels or two numbers.
const maxBodyBytes = 64 << 10

// Server serves the planner's view state machine.
type Server struct {
	Controller ports.Controller
	Streams    *StreamManager

	logger     *slog.Logger
	metrics    http.Handler
	corsOrigin string
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithCORSOrigin sets the allowed origin (default "*").
func WithCORSOrigin(origin string) Option {
	return func(s *Server) {
		if origin != "" {
			s.corsOrigin = origin
		}
	}
}

// NewServer creates a server for the controller.
func NewServer(ctrl ports.Controller, opts ...Option) *Server {
	s := &Server{
		Controller: ctrl,
		logger:     logging.NewNop(),
		corsOrigin: "*",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)
	return s
}

// Handler builds the router with logging, CORS and contract validation.
func (s *Server) Handler() (http.Handler, error) {
	doc, err := GetSwagger()
	if err != nil {
		return nil, err
	}
	validate, err := validationMiddleware(doc, s.logger)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(loggingMiddleware(s.logger))
	r.Use(corsMiddleware(s.corsOrigin))

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(RawSpec())
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(validate)

		r.Get("/health", s.GetHealth)
		r.Get("/info", s.GetInfo)
		r.Get("/events", s.SubscribeEvents)

		r.Get("/state", s.GetState)
		r.Post("/start", s.Start)
		r.Put("/preferences", s.SetPreferences)
		r.Post("/preferences/submit", s.SubmitPreferences)
		r.Post("/navigation/start", s.StartNavigation)
		r.Post("/back", s.Back)
		r.Post("/navigation/advance", s.Advance)
		r.Post("/navigation/map", s.OpenMap)
		r.Post("/navigation/end", s.EndNavigation)
		r.Delete("/error", s.DismissError)
	})

	return r, nil
}

// GetState handles GET /state.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Controller.Snapshot())
}

// Start handles POST /start. A body with coordinates replaces the configured locator.
func (s *Server) Start(w http.ResponseWriter, r *http.Request) {
	var body *domain.Coordinates
	if err := decodeOptional(r, &body); err != nil {
		s.badRequest(w, r, err)
		return
	}

	var (
		snap *domain.Snapshot
		err  error
	)
	if body != nil {
		snap, err = s.Controller.StartWith(r.Context(), locator.Static(*body))
	} else {
		snap, err = s.Controller.Start(r.Context())
	}
	s.respond(w, r, snap, err)
}

// SetPreferences handles PUT /preferences.
func (s *Server) SetPreferences(w http.ResponseWriter, r *http.Request) {
	var prefs *domain.UserPreferences
	if err := decodeOptional(r, &prefs); err != nil || prefs == nil {
		s.badRequest(w, r, errors.Join(err, errors.New("preferences body is required")))
		return
	}
	snap, err := s.Controller.SetPreferences(*prefs)
	s.respond(w, r, snap, err)
}

// SubmitPreferences handles POST /preferences/submit. Without a body the current selection is used.
func (s *Server) SubmitPreferences(w http.ResponseWriter, r *http.Request) {
	var prefs *domain.UserPreferences
	if err := decodeOptional(r, &prefs); err != nil {
		s.badRequest(w, r, err)
		return
	}
	if prefs == nil {
		current := s.Controller.Snapshot().Preferences
		prefs = &current
	}
	snap, err := s.Controller.Submit(r.Context(), *prefs)
	s.respond(w, r, snap, err)
}

// StartNavigation handles POST /navigation/start.
func (s *Server) StartNavigation(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Controller.StartNavigation(r.Context())
	s.respond(w, r, snap, err)
}

// Back handles POST /back.
func (s *Server) Back(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Controller.Back(r.Context())
	s.respond(w, r, snap, err)
}

// Advance handles POST /navigation/advance.
func (s *Server) Advance(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Controller.Advance(r.Context())
	s.respond(w, r, snap, err)
}

// OpenMap handles POST /navigation/map.
func (s *Server) OpenMap(w http.ResponseWriter, r *http.Request) {
	url, err := s.Controller.OpenMap(r.Context())
	if err != nil && url == "" {
		s.respond(w, r, s.Controller.Snapshot(), err)
		return
	}
	if err != nil {
		// The link is still usable by the client when the host-side launcher fails.
		s.logger.Warn("map launcher failed", "request_id", RequestID(r.Context()), "err", err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// EndNavigation handles POST /navigation/end.
func (s *Server) EndNavigation(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Controller.End(r.Context())
	s.respond(w, r, snap, err)
}

// DismissError handles DELETE /error.
func (s *Server) DismissError(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Controller.DismissError())
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "citywalk-http",
		"version":     strings.TrimSpace(citywalk.Version),
		"api_version": apiVersion,
		"session_id":  s.Controller.Snapshot().SessionID,
	})
}

// -- Helpers --

type errorResponse struct {
	Error    string           `json:"error"`
	Snapshot *domain.Snapshot `json:"snapshot,omitempty"`
}

// StatusFor maps controller errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, domain.ErrBusy), errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrWalkFinished), errors.Is(err, domain.ErrNoRoute),
		errors.Is(err, domain.ErrNoLocation):
		return http.StatusConflict
	case errors.Is(err, domain.ErrLocationUnavailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrGenerationFailed):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrInvalidPreferences), errors.Is(err, domain.ErrInvalidCoordinates):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, snap *domain.Snapshot, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, snap)
		return
	}
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("trigger failed", "request_id", RequestID(r.Context()), "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("trigger rejected", "request_id", RequestID(r.Context()), "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Snapshot: snap})
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Warn("invalid request body", "request_id", RequestID(r.Context()), "err", err)
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
}

// decodeOptional decodes a JSON body into dst, leaving it untouched when the body is empty.
func decodeOptional(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}

// Package http exposes the call engine to telephony hosts over REST. One
// session is one call; the host relays caller utterances in and speaks the
// returned responses.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Aryanpatel2001/VoiceFlow-sub001/internal/logging"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/domain"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/ports"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/session"
)

// Server routes call-lifecycle requests to the session manager.
type Server struct {
	manager  *session.Manager
	loader   ports.FlowLoader
	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMetricsGatherer mounts /metrics over the given registry.
func WithMetricsGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// NewHandler builds the HTTP routing tree.
func NewHandler(manager *session.Manager, loader ports.FlowLoader, opts ...Option) http.Handler {
	s := &Server{
		manager: manager,
		loader:  loader,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/flows", s.listFlows)
		r.Get("/flows/{flowID}", s.getFlow)
		r.Post("/sessions", s.startCall)
		r.Get("/sessions", s.listSessions)
		r.Get("/sessions/{sessionID}", s.getSession)
		r.Post("/sessions/{sessionID}/turn", s.turn)
		r.Delete("/sessions/{sessionID}", s.endCall)
	})
	return r
}

// StartCallRequest opens a new call session.
type StartCallRequest struct {
	FlowID string `json:"flow_id"`
}

// TurnRequest carries one caller utterance.
type TurnRequest struct {
	Input string `json:"input"`
}

// TurnResponse is what the host speaks and does next.
type TurnResponse struct {
	SessionID    string `json:"session_id"`
	Response     string `json:"response"`
	Action       string `json:"action"`
	TransferTo   string `json:"transfer_to,omitempty"`
	TransferType string `json:"transfer_type,omitempty"`
	Ended        bool   `json:"ended"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listFlows(w http.ResponseWriter, r *http.Request) {
	ids, err := s.loader.ListFlows(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"flows": ids})
}

func (s *Server) getFlow(w http.ResponseWriter, r *http.Request) {
	flow, err := s.loader.GetFlow(r.Context(), chi.URLParam(r, "flowID"))
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, flow)
}

func (s *Server) startCall(w http.ResponseWriter, r *http.Request) {
	var req StartCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FlowID == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("body must be JSON with a flow_id"))
		return
	}

	sess, result, err := s.manager.StartCall(r.Context(), req.FlowID)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.logger.Info("call started", "session", sess.ID, "flow", req.FlowID)
	writeJSON(w, http.StatusCreated, turnResponse(sess, result))
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.manager.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.manager.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) turn(w http.ResponseWriter, r *http.Request) {
	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.New("body must be JSON with an input"))
		return
	}

	sess, result, err := s.manager.Turn(r.Context(), chi.URLParam(r, "sessionID"), req.Input)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, turnResponse(sess, result))
}

func (s *Server) endCall(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.EndCall(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func turnResponse(sess *domain.Session, result domain.TurnResult) TurnResponse {
	return TurnResponse{
		SessionID:    sess.ID,
		Response:     result.Response,
		Action:       result.Action,
		TransferTo:   result.TransferTo,
		TransferType: result.TransferType,
		Ended:        sess.Ended,
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrFlowNotFound), errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSessionEnded):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNoStartNode):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "err", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

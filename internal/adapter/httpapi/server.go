// Package httpapi exposes the discovery engine over HTTP: health, readiness,
// metrics, the current candidate snapshot, and the engine's accepted events.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/nice-weather-discovery/internal/discovery"
	"github.com/couchcryptid/nice-weather-discovery/internal/domain"
	"github.com/couchcryptid/nice-weather-discovery/internal/viewport"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Pinger reports connectivity of one infrastructure dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server exposes the engine's HTTP endpoints.
type Server struct {
	httpServer *http.Server
	engine     *discovery.Engine
	infra      map[string]Pinger
	validate   *validator.Validate
	logger     *slog.Logger
}

// NewServer creates the HTTP server. infra maps dependency names (e.g.
// "postgres", "redis") to connectivity checks for the infrastructure status
// endpoint; dependencies running in-memory are simply absent.
func NewServer(addr string, engine *discovery.Engine, infra map[string]Pinger, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		engine:   engine,
		infra:    infra,
		validate: validator.New(),
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/candidates", s.handleCandidates)
	mux.HandleFunc("GET /api/infrastructure", s.handleInfrastructure)
	mux.HandleFunc("POST /api/location", s.handleLocation)
	mux.HandleFunc("POST /api/location/ip", s.handleLocationFromIP)
	mux.HandleFunc("POST /api/preferences", s.handlePreferences)
	mux.HandleFunc("POST /api/navigate", s.handleNavigate)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.engine.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleCandidates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.CurrentSnapshot())
}

func (s *Server) handleInfrastructure(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := make(map[string]string, len(s.infra))
	healthy := true
	for name, pinger := range s.infra {
		if err := pinger.Ping(ctx); err != nil {
			status[name] = "unreachable: " + err.Error()
			healthy = false
			continue
		}
		status[name] = "ok"
	}

	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

type locationRequest struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
	// Manual marks an explicit marker repositioning rather than a device
	// geolocation result.
	Manual bool `json:"manual"`
}

func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if !s.decode(w, r, &req) {
		return
	}

	coord := domain.Coordinate{Latitude: req.Latitude, Longitude: req.Longitude}
	var err error
	if req.Manual {
		err = s.engine.ManualOverride(r.Context(), coord)
	} else {
		err = s.engine.UseDeviceLocation(r.Context(), coord)
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, s.engine.Location())
}

func (s *Server) handleLocationFromIP(w http.ResponseWriter, r *http.Request) {
	// Session (re)initialization driven by the caller's network address.
	s.engine.Start(r.Context(), clientIP(r))
	writeJSON(w, http.StatusAccepted, s.engine.Location())
}

type preferencesRequest struct {
	Temperature   string `json:"temperature" validate:"omitempty,oneof=cold mild hot"`
	Precipitation string `json:"precipitation" validate:"omitempty,oneof=none light heavy"`
	Wind          string `json:"wind" validate:"omitempty,oneof=calm breezy windy"`
}

func (s *Server) handlePreferences(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if !s.decode(w, r, &req) {
		return
	}

	s.engine.SetPreferences(r.Context(), domain.ComfortPreferences{
		Temperature:   domain.TemperaturePreference(req.Temperature),
		Precipitation: domain.PrecipitationPreference(req.Precipitation),
		Wind:          domain.WindPreference(req.Wind),
	})
	w.WriteHeader(http.StatusAccepted)
}

type navigateRequest struct {
	Direction string `json:"direction" validate:"required,oneof=closer farther"`
}

type navigateResponse struct {
	Candidate *domain.EnrichedCandidate `json:"candidate,omitempty"`
	Outcome   string                    `json:"outcome"`
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if !s.decode(w, r, &req) {
		return
	}

	var candidate domain.EnrichedCandidate
	var err error
	if req.Direction == "closer" {
		candidate, err = s.engine.NavigateCloser()
	} else {
		candidate, err = s.engine.NavigateFarther()
	}

	resp := navigateResponse{Outcome: "moved"}
	switch {
	case err == nil:
		resp.Candidate = &candidate
	case errors.Is(err, viewport.ErrAtClosest):
		resp.Outcome = "at-closest"
		resp.Candidate = &candidate
	case errors.Is(err, viewport.ErrExpandSearch):
		resp.Outcome = "expand-search"
		resp.Candidate = &candidate
	case errors.Is(err, viewport.ErrNoMoreResults):
		resp.Outcome = "no-more-results"
		resp.Candidate = &candidate
	case errors.Is(err, viewport.ErrNoCandidates):
		resp.Outcome = "no-candidates"
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// decode unmarshals and validates a JSON request body, writing a 400 and
// returning false on any problem.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed JSON body"})
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return false
	}
	return true
}

// clientIP extracts the originating address, honoring X-Forwarded-For when a
// proxy sits in front.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

// internal/server/server.go
// Package server is the HTTP surface of the coordination layer: the review
// RPC, rider-facing ride endpoints, maps pass-through and admin reads.
package server

import (
	"context"
	"net/http"

	"ridehail-platform/internal/authz"
	"ridehail-platform/internal/common/config"
	"ridehail-platform/internal/common/errors"
	"ridehail-platform/internal/common/logger"
	"ridehail-platform/internal/maps"
	"ridehail-platform/internal/repository"
	"ridehail-platform/internal/rides"
	"ridehail-platform/internal/workflow"
)

const maxRequestBody = 1 << 20

// adminGate authorizes review and admin-read callers.
type adminGate interface {
	RequireAdmin(ctx context.Context, userID, email string) (*authz.Principal, error)
}

// mapsProvider is the slice of the maps client the handlers use.
type mapsProvider interface {
	Geocode(ctx context.Context, query string) ([]maps.Place, error)
	Directions(ctx context.Context, fromLat, fromLng, toLat, toLng float64) (*maps.Route, error)
}

// Server wires handlers to the domain services.
type Server struct {
	cfg          config.ServerConfig
	identity     identityResolver
	gate         adminGate
	orchestrator *workflow.Orchestrator
	rides        *rides.Service
	maps         mapsProvider
	applications repository.ApplicationStore
	errorHandler *errors.ErrorHandler
	logger       logger.Logger

	httpServer *http.Server
}

func New(
	cfg config.ServerConfig,
	identity identityResolver,
	gate adminGate,
	orchestrator *workflow.Orchestrator,
	rideService *rides.Service,
	mapsClient mapsProvider,
	applications repository.ApplicationStore,
	log logger.Logger,
) *Server {
	s := &Server{
		cfg:          cfg,
		identity:     identity,
		gate:         gate,
		orchestrator: orchestrator,
		rides:        rideService,
		maps:         mapsClient,
		applications: applications,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log.WithFields(map[string]interface{}{"component": "http-server"}),
	}
	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.Handler(),
		ReadTimeout:  config.GetDuration(cfg.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.WriteTimeout),
	}
	return s
}

// Handler builds the full middleware-wrapped route table. Exposed so tests
// can drive it through httptest without binding a socket.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /functions/driver-application-review", s.handleReview)

	mux.HandleFunc("POST /api/rides", s.handleCreateRide)
	mux.HandleFunc("GET /api/rides/{id}", s.handleGetRide)
	mux.HandleFunc("POST /api/rides/{id}/cancel", s.handleCancelRide)

	mux.HandleFunc("GET /api/maps/geocode", s.handleGeocode)
	mux.HandleFunc("GET /api/maps/directions", s.handleDirections)

	mux.HandleFunc("GET /admin/applications/{id}", s.handleGetApplication)

	authed := s.withIdentity(mux)

	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", s.handleHealth)
	root.Handle("/", authed)

	return withCORS(withRequestLogging(s.logger, root))
}

// Start begins serving. Blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", map[string]interface{}{
		"address": s.cfg.Address,
	})
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// Package server exposes the viability service over HTTP.
package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/rshade/solar-mining-viability/internal/config"
	"github.com/rshade/solar-mining-viability/internal/metrics"
	"github.com/rshade/solar-mining-viability/internal/viability"
)

// maxBodyBytes caps request bodies at 1 MiB.
const maxBodyBytes = 1 << 20

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	svc     *viability.Service
	cors    config.CORSConfig
	metrics *metrics.Recorder
	logger  zerolog.Logger
	now     func() time.Time
}

// New creates a Server. rec may be nil, in which case /metrics is not served.
func New(svc *viability.Service, cors config.CORSConfig, rec *metrics.Recorder, logger zerolog.Logger) *Server {
	return &Server{
		svc:     svc,
		cors:    cors,
		metrics: rec,
		logger:  logger,
		now:     time.Now,
	}
}

// apiPrefix is the path prefix of the versioned API.
const apiPrefix = "/api/v1"

// Router builds the route table behind the middleware chain. The chain wraps
// the router itself so unmatched requests (404, 405) get request IDs, access
// logs, metrics and CORS headers too.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(s.handleMethodNotAllowed)
	r.Use(s.routeMiddleware)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	// Versioned routes are registered on the root router rather than a
	// PathPrefix subrouter: mux 1.8 reports a method mismatch inside a
	// subrouter as 404.
	r.HandleFunc(apiPrefix+"/initial-data", s.handleInitialData).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/compute-equipment-budget", s.handleEquipmentBudget).Methods(http.MethodPost)
	r.HandleFunc(apiPrefix+"/compute-full-viability", s.handleFullViability).Methods(http.MethodPost)
	r.HandleFunc(apiPrefix+"/compute-budget-check", s.handleBudgetCheck).Methods(http.MethodPost)
	r.HandleFunc(apiPrefix+"/simulate-equipment", s.handleSimulateEquipment).Methods(http.MethodPost)
	r.HandleFunc(apiPrefix+"/simulate-solar", s.handleSimulateSolar).Methods(http.MethodPost)

	r.HandleFunc(apiPrefix+"/equipment/{category}", s.handleEquipment).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/regions/{code}", s.handleRegion).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/price", s.handlePrice).Methods(http.MethodGet)

	return s.requestIDMiddleware(s.accessLogMiddleware(s.recoverMiddleware(s.corsMiddleware(r))))
}

// NewHTTPServer wraps the router in an http.Server with conservative timeouts.
func (s *Server) NewHTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

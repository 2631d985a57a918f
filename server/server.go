// Copyright 2025 AxonFlow
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"logarchive/platform/connectors/registry"
	"logarchive/platform/shared/logger"
)

const (
	// HeaderRequestID carries the request id in and out of the server.
	HeaderRequestID = "X-Request-ID"
	// HeaderTenantID restricts a request to the connectors of one tenant.
	HeaderTenantID = "X-Tenant-ID"

	// DefaultMaxBodyBytes bounds execute request bodies.
	DefaultMaxBodyBytes = 1 << 20
	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = 10 * time.Second
)

// Options configures a Server. Zero values select defaults.
type Options struct {
	Logger *logger.Logger
	// Registerer receives the HTTP request metrics. Defaults to
	// prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
	// Gatherer backs GET /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
	MaxBodyBytes   int64
	// ServiceName is reported by GET /health.
	ServiceName string
}

// Server exposes a connector registry over HTTP.
type Server struct {
	registry     *registry.Registry
	logger       *logger.Logger
	router       *mux.Router
	handler      http.Handler
	requests     *prometheus.CounterVec
	maxBodyBytes int64
	serviceName  string
	startedAt    time.Time
}

// New builds the router for reg.
//
// Endpoints:
//   - GET  /health
//   - GET  /metrics
//   - GET  /api/v1/connectors
//   - POST /api/v1/connectors/{name}/execute
//   - GET  /api/v1/connectors/{name}/health
func New(reg *registry.Registry, opts Options) (*Server, error) {
	if reg == nil {
		return nil, errors.New("registry is required")
	}

	log := opts.Logger
	if log == nil {
		log = logger.New("archive-server")
	}
	registerer := opts.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	serviceName := opts.ServiceName
	if serviceName == "" {
		serviceName = "archivesearch"
	}

	requests, err := newRequestCounter(registerer)
	if err != nil {
		return nil, err
	}

	s := &Server{
		registry:     reg,
		logger:       log,
		router:       mux.NewRouter(),
		requests:     requests,
		maxBodyBytes: maxBody,
		serviceName:  serviceName,
		startedAt:    time.Now(),
	}

	s.router.Use(s.requestIDMiddleware, s.metricsMiddleware)
	s.router.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/connectors", s.listConnectorsHandler).Methods(http.MethodGet)
	api.HandleFunc("/connectors/{name}/execute", s.executeHandler).Methods(http.MethodPost)
	api.HandleFunc("/connectors/{name}/health", s.connectorHealthHandler).Methods(http.MethodGet)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", HeaderRequestID, HeaderTenantID},
		ExposedHeaders: []string{HeaderRequestID},
	})
	s.handler = c.Handler(s.router)

	return s, nil
}

// Handler returns the root handler, CORS included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Router exposes the mux router for additional routes.
func (s *Server) Router() *mux.Router {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully and disconnects every connector.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("", "Archive search server starting", map[string]interface{}{"addr": addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()

	s.logger.Info("", "Archive search server shutting down", nil)
	err := srv.Shutdown(shutdownCtx)
	s.registry.DisconnectAll(shutdownCtx)
	return err
}

func newRequestCounter(reg prometheus.Registerer) (*prometheus.CounterVec, error) {
	counter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archivesearch_http_requests_total",
			Help: "Total number of HTTP requests by route, method and status",
		},
		[]string{"route", "method", "status"},
	)
	if err := reg.Register(counter); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return counter, nil
}

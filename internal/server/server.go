// Package server is the thin HTTP face of the rate service: routing and
// JSON serialization only, no rate logic.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Deps collects the services the transport exposes.
type Deps struct {
	Lookup   PriceResolver
	Zones    ZoneLister
	Exporter RateExporter
}

// Server wraps net/http with the service routes.
type Server struct {
	http   *http.Server
	logger *slog.Logger
}

// New builds the server with all routes registered.
func New(addr string, deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /price", HandlePrice(deps.Lookup))
	mux.HandleFunc("GET /zones", HandleZones(deps.Zones))
	mux.HandleFunc("GET /export.xlsx", HandleExport(deps.Exporter))
	mux.HandleFunc("GET /healthz", HandleHealth())

	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           logRequests(mux, logger),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// ListenAndServe blocks serving requests until Shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", "addr", s.http.Addr)
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func logRequests(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Info("http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	})
}

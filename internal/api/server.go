// SPDX-License-Identifier: MIT

// Package api provides the HTTP surface over the configuration store:
// sections, options, snapshots, revision history and rendered exports.
package api

import (
	"context"
	"time"

	"net/http"

	"github.com/confkit/confkit/internal/api/middleware"
	"github.com/confkit/confkit/internal/cache"
	"github.com/confkit/confkit/internal/config"
	"github.com/confkit/confkit/internal/history"
	"github.com/confkit/confkit/internal/log"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Holder is the read/reload surface the server needs from
// config.Holder. Narrowed to an interface so tests can stub reloads.
type Holder interface {
	Current() config.Snapshot
	Reload(ctx context.Context, trigger string) error
}

// History is the revision store surface. Nil disables the endpoints.
type History interface {
	List(ctx context.Context, limit int) ([]history.Record, error)
	Get(ctx context.Context, revision string) (history.Record, bool, error)
}

// Server serves the aggregated configuration over HTTP.
type Server struct {
	holder    Holder
	hist      History
	exports   cache.Cache
	runtime   config.Runtime
	logger    zerolog.Logger
	startTime time.Time
}

// New creates a server. hist may be nil (history disabled); exports
// may be nil (no export caching).
func New(holder Holder, hist History, exports cache.Cache, runtime config.Runtime) *Server {
	return &Server{
		holder:    holder,
		hist:      hist,
		exports:   exports,
		runtime:   runtime,
		logger:    log.WithComponent("api"),
		startTime: time.Now(),
	}
}

// Routes builds the router with the full middleware chain.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(s.logger))
	r.Use(middleware.OTelHTTP(s.runtime.LogService))

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.APIRateLimit(s.runtime.RateLimit))
			r.Get("/sections", s.handleSections)
			r.Get("/sections/{name}", s.handleSection)
			r.Get("/options/{section}/{key}", s.handleOption)
			r.Get("/snapshot", s.handleSnapshot)
			r.Get("/export", s.handleExport)
			r.Get("/revisions", s.handleRevisions)
			r.Get("/revisions/{id}", s.handleRevision)
		})
		r.Group(func(r chi.Router) {
			r.Use(middleware.ReloadRateLimit())
			r.Post("/reload", s.handleReload)
		})
	})

	return r
}

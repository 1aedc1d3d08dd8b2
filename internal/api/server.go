// Package api serves chart generation, coordinate transforms and stored
// charts over HTTP.
//
// Routes:
//
//	GET    /healthz            liveness and build info
//	GET    /metrics            Prometheus metrics
//	POST   /v1/isopleths       chart definition (JSON) -> chart (json or csv)
//	POST   /v1/transform       project or unproject points
//	POST   /v1/charts          generate and store a chart
//	GET    /v1/charts          list stored charts
//	GET    /v1/charts/{id}     fetch a stored chart
//	DELETE /v1/charts/{id}     delete a stored chart
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/tephi/pkg/observability"
	"github.com/matzehuels/tephi/pkg/pipeline"
	"github.com/matzehuels/tephi/pkg/store"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 4 << 20

// Options configures a Server. Nil fields get working defaults.
type Options struct {
	Runner  *pipeline.Runner
	Store   store.Store
	Logger  *log.Logger
	Metrics http.Handler // served at /metrics; defaults to promhttp.Handler()
	Workers int          // isopleth workers per request; 0 uses the pipeline default
	Timeout time.Duration
}

// Server exposes the chart API.
type Server struct {
	httpServer *http.Server
	router     chi.Router
	runner     *pipeline.Runner
	store      store.Store
	logger     *log.Logger
	workers    int
}

// NewServer creates an HTTP server listening on addr.
func NewServer(addr string, opts Options) *Server {
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	if opts.Store == nil {
		opts.Store = store.NewMemoryStore()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = promhttp.Handler()
	}
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}

	s := &Server{
		runner:  opts.Runner,
		store:   opts.Store,
		logger:  opts.Logger,
		workers: opts.Workers,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.recoverer)
	r.Use(middleware.Timeout(opts.Timeout))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", opts.Metrics)

	s.route(r, http.MethodPost, "/v1/isopleths", s.handleIsopleths)
	s.route(r, http.MethodPost, "/v1/transform", s.handleTransform)
	s.route(r, http.MethodPost, "/v1/charts", s.handleCreateChart)
	s.route(r, http.MethodGet, "/v1/charts", s.handleListCharts)
	s.route(r, http.MethodGet, "/v1/charts/{id}", s.handleGetChart)
	s.route(r, http.MethodDelete, "/v1/charts/{id}", s.handleDeleteChart)

	s.router = r
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      opts.Timeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}
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

// ServeHTTP delegates to the router, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handlerFunc is an HTTP handler that reports failures as errors.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// route registers h under pattern with request hooks and error mapping.
// The pattern is passed to the hooks as the route label.
func (s *Server) route(r chi.Router, method, pattern string, h handlerFunc) {
	r.Method(method, pattern, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		hooks := observability.HTTP()
		ctx := req.Context()
		start := time.Now()
		hooks.OnRequest(ctx, method, pattern)

		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		if err := h(ww, req); err != nil {
			code := s.writeError(ww, req, err)
			hooks.OnError(ctx, method, pattern, code)
		}
		hooks.OnResponse(ctx, method, pattern, ww.Status(), time.Since(start))
	}))
}

// recoverer turns handler panics into 500 responses.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.Error("handler panic", "path", r.URL.Path, "panic", rec,
					"request_id", middleware.GetReqID(r.Context()))
				writeJSON(w, http.StatusInternalServerError, errorBody{Error: errorDetail{
					Code:    "INTERNAL_ERROR",
					Message: "internal error",
				}})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

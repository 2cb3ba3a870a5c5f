package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/firemesscode/drevorod/pkg/observability"
	"github.com/firemesscode/drevorod/pkg/pipeline"
	"github.com/firemesscode/drevorod/pkg/store"
)

// Options configures a [Server].
type Options struct {
	Store  store.Store
	Live   *pipeline.Live
	Runner *pipeline.Runner
	// Gate grants edit mode. Nil means [ReadOnly].
	Gate Gate
	// CORSOrigins lists allowed origins; empty disables CORS headers.
	CORSOrigins []string
	Logger      *log.Logger
}

// Server serves the tree API.
type Server struct {
	store   store.Store
	live    *pipeline.Live
	runner  *pipeline.Runner
	gate    Gate
	origins []string
	logger  *log.Logger
}

// New creates a server.
func New(opts Options) *Server {
	s := &Server{
		store:   opts.Store,
		live:    opts.Live,
		runner:  opts.Runner,
		gate:    opts.Gate,
		origins: opts.CORSOrigins,
		logger:  opts.Logger,
	}
	if s.gate == nil {
		s.gate = ReadOnly
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(s.observe)
	if len(s.origins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}).Handler)
	}

	r.Get("/healthz", s.handleHealthz)
	r.Route("/api", func(r chi.Router) {
		r.Get("/session", s.handleSession)
		r.Get("/tree", s.handleTree)
		r.Get("/tree.svg", s.handleTreeSVG)
		r.Get("/tree/{format}", s.handleTreeFormat)

		r.Route("/people", func(r chi.Router) {
			r.Get("/", s.handleListPeople)
			r.With(s.requireEdit).Post("/", s.handleCreatePerson)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetPerson)
				r.With(s.requireEdit).Patch("/", s.handleUpdatePerson)
				r.With(s.requireEdit).Delete("/", s.handleDeletePerson)
			})
		})
		r.Route("/relationships", func(r chi.Router) {
			r.Get("/", s.handleListRelationships)
			r.With(s.requireEdit).Post("/", s.handleCreateRelationship)
			r.With(s.requireEdit).Patch("/{id}", s.handleUpdateRelationship)
			r.With(s.requireEdit).Delete("/{id}", s.handleDeleteRelationship)
		})
		r.With(s.requireEdit).Post("/unions/{p1}/{p2}/children", s.handleAssignChild)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// observe reports each request to the HTTP hooks with its route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		observability.HTTP().OnResponse(r.Context(), r.Method, route, status, time.Since(start))
	})
}

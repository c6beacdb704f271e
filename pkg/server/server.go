// Package server implements the flamesplit upload service.
//
// The service is the web face of the pipeline: a form to upload a scene and
// pick a grid, and an endpoint that answers with the split scene as a file
// download.
//
// # Routes
//
//	GET  /          upload form
//	POST /          split the uploaded scene (form target)
//	POST /split     same as POST /
//	GET  /history   recent splits as JSON
//	GET  /healthz   liveness probe
//
// # Usage
//
//	srv := server.New(runner, store, logger, server.Config{MaxLevel: 4})
//	if err := srv.ListenAndServe(ctx, ":8080"); err != nil {
//	    log.Fatal(err)
//	}
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/flamesplit/pkg/history"
	"github.com/matzehuels/flamesplit/pkg/pipeline"
)

// Defaults applied by New.
const (
	DefaultMaxUploadBytes = 16 << 20
	shutdownTimeout       = 10 * time.Second
)

// Config configures request handling.
type Config struct {
	MaxLevel       int
	Policy         string
	MaxUploadBytes int64
}

// Server handles upload requests. It is safe for concurrent use.
type Server struct {
	runner  *pipeline.Runner
	history history.Store
	logger  *log.Logger
	cfg     Config
	router  chi.Router
}

// New creates a server. A nil store disables history; a nil logger uses
// log.Default.
func New(runner *pipeline.Runner, store history.Store, logger *log.Logger, cfg Config) *Server {
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	if store == nil {
		store = history.NewNullStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	if cfg.MaxLevel <= 0 {
		cfg.MaxLevel = pipeline.DefaultMaxLevel
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}

	s := &Server{
		runner:  runner,
		history: store,
		logger:  logger,
		cfg:     cfg,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleForm)
	r.Post("/", s.handleSplit)
	r.Post("/split", s.handleSplit)
	r.Get("/history", s.handleHistory)
	r.Get("/healthz", handleHealth)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

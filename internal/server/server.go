// Package server hosts the editor's HTTP API. Document endpoints accept raw
// XML in either dialect and answer with the canonical standard-dialect form;
// library endpoints expose the SQLite-backed diagram store.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/hargabyte/erd/internal/config"
	"github.com/hargabyte/erd/internal/store"
)

// Server wires the config, the diagram library, and the request logger into
// one HTTP handler.
type Server struct {
	cfg   *config.Config
	store *store.Store
	log   zerolog.Logger
}

// New creates a server. store may be nil; library endpoints then answer 503.
func New(cfg *config.Config, st *store.Store, log zerolog.Logger) *Server {
	return &Server{cfg: cfg, store: st, log: log}
}

// Router builds the chi router with all API routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Route("/api", func(api chi.Router) {
		api.Post("/diagrams/parse", s.handleParse)
		api.Post("/diagrams/export", s.handleExport)
		api.Post("/diagrams/detect", s.handleDetect)
		api.Post("/geometry/route", s.handleRoute)

		api.Route("/library", func(lib chi.Router) {
			lib.Use(s.requireStore)
			lib.Get("/", s.handleLibraryList)
			lib.Post("/", s.handleLibrarySave)
			lib.Get("/{id}", s.handleLibraryGet)
			lib.Delete("/{id}", s.handleLibraryDelete)
			lib.Get("/{id}/snapshots", s.handleSnapshotList)
			lib.Post("/{id}/snapshots", s.handleSnapshotTake)
			lib.Get("/{id}/snapshots/{snapshotId}", s.handleSnapshotGet)
		})
	})

	if s.cfg.Server.AssetDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.cfg.Server.AssetDir)))
	}

	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Server.Addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// requestLogger emits one structured line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// requireStore guards library routes when the server runs without a library.
func (s *Server) requireStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.store == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "library not available"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

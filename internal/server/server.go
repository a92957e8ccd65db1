// Package server hosts memory games over HTTP and WebSocket and serves the
// leaderboard.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/abhisek/memoria/internal/deck"
	"github.com/abhisek/memoria/internal/game"
	"github.com/abhisek/memoria/internal/scoring"
	"github.com/abhisek/memoria/internal/store"
)

const (
	// DefaultSessionTTL is how long an untouched session is kept.
	DefaultSessionTTL = 30 * time.Minute

	requestTimeout  = 10 * time.Second
	shutdownTimeout = 5 * time.Second
	maxBodyBytes    = 1 << 16
)

// Options configures a Server.
type Options struct {
	Results      store.ResultRepo
	Catalog      deck.Catalog
	Policy       scoring.Policy
	ResolveDelay time.Duration
	Difficulty   deck.Difficulty
	SessionTTL   time.Duration
	Log          zerolog.Logger
}

// Server is the HTTP game host.
type Server struct {
	router     *chi.Mux
	sessions   *Registry
	results    store.ResultRepo
	difficulty deck.Difficulty
	ttl        time.Duration
	validate   *validator.Validate
	log        zerolog.Logger
}

// New builds the router and session registry.
func New(opts Options) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		results:    opts.Results,
		difficulty: opts.Difficulty,
		ttl:        opts.SessionTTL,
		validate:   newValidator(),
		log:        opts.Log,
	}
	if !s.difficulty.Valid() {
		s.difficulty = deck.Easy
	}
	if s.ttl <= 0 {
		s.ttl = DefaultSessionTTL
	}

	s.sessions = NewRegistry(func(d deck.Difficulty) *game.Engine {
		engineOpts := []game.Option{
			game.WithPolicy(opts.Policy),
			game.WithResolveDelay(opts.ResolveDelay),
			game.WithLogger(opts.Log),
		}
		if opts.Catalog.Len() > 0 {
			engineOpts = append(engineOpts, game.WithCatalog(opts.Catalog))
		}
		return game.New(d, engineOpts...)
	})

	s.routes()
	return s
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *Server) routes() {
	r := s.router
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(chimw.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(requestTimeout))
		r.Use(chimw.AllowContentType("application/json"))

		r.Post("/games", s.handleCreateGame)
		r.Route("/games/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetGame)
			r.Delete("/", s.handleDeleteGame)
			r.Post("/flip", s.handleFlip)
			r.Post("/reset", s.handleReset)
		})

		r.Post("/results", s.handleCreateResult)
		r.Get("/leaderboard", s.handleLeaderboard)
	})

	// WebSocket connections outlive the request timeout.
	r.Get("/ws/{id}", s.handleWS)
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Sessions exposes the session registry.
func (s *Server) Sessions() *Registry {
	return s.sessions
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
// Idle sessions are swept in the background.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go s.sweep(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info().Msg("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) sweep(ctx context.Context) {
	ticker := time.NewTicker(s.ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sessions.Sweep(s.ttl); n > 0 {
				s.log.Debug().Int("removed", n).Int("live", s.sessions.Len()).Msg("idle sessions swept")
			}
		}
	}
}

// requestLogger attaches a request-scoped logger to the context and logs
// each request once it completes.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLog := log.With().Str("request_id", chimw.GetReqID(r.Context())).Logger()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(reqLog.WithContext(r.Context())))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			evt := reqLog.Info()
			if status >= http.StatusInternalServerError {
				evt = reqLog.Error()
			}
			evt.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("latency", time.Since(start)).
				Msg("http request")
		})
	}
}

// Package control implements an optional HTTP control plane over the
// sandbox factory and session store: health/metrics endpoints plus a thin
// REST surface for backend discovery and session lifecycle management.
// Nothing in spec.md requires this package — bashlet's core contract is
// satisfied entirely by the CLI and the library packages it wires
// together — but every production repo in this corpus exposes its backend
// this way, so bashlet does too.
package control

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/seantiz/bashlet/internal/sandbox"
	"github.com/seantiz/bashlet/internal/session"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 60 * time.Second
)

// Server wraps the chi router and the dependencies its handlers need.
type Server struct {
	router         *chi.Mux
	factory        *sandbox.Factory
	store          *session.Store
	logger         *slog.Logger
	addr           string
	defaultBackend string
}

// NewServer creates and configures a control-plane server. factory must
// already have every backend kind registered (see cmd/bashlet's
// registerBackends); defaultBackend is used by the execute endpoint when a
// request doesn't name one explicitly.
func NewServer(addr string, factory *sandbox.Factory, store *session.Store, defaultBackend string, logger *slog.Logger) *Server {
	s := &Server{
		router:         chi.NewRouter(),
		factory:        factory,
		store:          store,
		logger:         logger,
		addr:           addr,
		defaultBackend: defaultBackend,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(metricsMiddleware)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Handle("/metrics", metricsHandler())

	s.router.Get("/v1/backends", s.handleListBackends)

	s.router.Route("/v1/sessions", func(r chi.Router) {
		r.Get("/", s.handleListSessions)
		r.Post("/", s.handleCreateSession)
		r.Get("/{id}", s.handleGetSession)
		r.Delete("/{id}", s.handleDeleteSession)
		r.Post("/{id}/execute", s.handleExecuteSession)
	})
}

// Router returns the chi router, for tests that drive it with httptest.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Run starts the HTTP server and blocks until a shutdown signal or a fatal
// listen error.
func (s *Server) Run() error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("control server listening", "addr", s.addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.logger.Info("control server stopped")
	return nil
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Package server exposes the board over HTTP: the rendered page for signage browsers and a small JSON
// API for monitoring and manual refreshes.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/robotomize/ratesboard"
	"github.com/robotomize/ratesboard/internal/logging"
	"go.uber.org/zap"
)

const (
	DefaultAddr            = ":8080"
	DefaultReadTimeout     = 5 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// Board is the part of ratesboard.Board the server depends on
type Board interface {
	WriteHTML(w io.Writer) error
	Snapshot() *ratesboard.Snapshot
	LastReport() ratesboard.Report
	Refresh(ctx context.Context) ratesboard.Report
}

type Option func(*Server)

func WithAddr(addr string) Option {
	return func(s *Server) {
		s.addr = addr
	}
}

func WithReadTimeout(t time.Duration) Option {
	return func(s *Server) {
		s.readTimeout = t
	}
}

func WithWriteTimeout(t time.Duration) Option {
	return func(s *Server) {
		s.writeTimeout = t
	}
}

// WithShutdownTimeout set how long in-flight requests may take once the server is stopping
func WithShutdownTimeout(t time.Duration) Option {
	return func(s *Server) {
		s.shutdownTimeout = t
	}
}

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

type Server struct {
	addr            string
	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration
	logger          *zap.SugaredLogger

	board   Board
	handler http.Handler
}

func New(board Board, opts ...Option) *Server {
	s := &Server{
		addr:            DefaultAddr,
		readTimeout:     DefaultReadTimeout,
		writeTimeout:    DefaultWriteTimeout,
		shutdownTimeout: DefaultShutdownTimeout,
		logger:          logging.DefaultLogger(),
		board:           board,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.handler = s.routes()

	return s
}

func (s *Server) Addr() string {
	return s.addr
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(LoggingMiddleware(s.logger))

	r.Get("/", s.handleBoard())
	r.Get("/healthz", s.handleHealth())
	r.Route("/api", func(r chi.Router) {
		r.Get("/rates", s.handleRates())
		r.Post("/refresh", s.handleRefresh())
	})

	return r
}

// ListenAndServe listens on the configured address and serves until ctx is done
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.readTimeout,
		ReadHeaderTimeout: s.readTimeout,
		WriteTimeout:      s.writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("http server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server failed: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Infow("shutdown signal received, stopping http server")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	s.logger.Infow("http server stopped gracefully")

	return <-errCh
}

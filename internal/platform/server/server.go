// Package server owns the HTTP listener lifecycle: bind, serve and graceful
// shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	applog "github.com/janisto/hello-api/internal/platform/logging"
)

// Options configures the HTTP server. Zero values fall back to the defaults
// applied by New.
type Options struct {
	Addr              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
}

// Server wraps an http.Server whose listener is bound explicitly, so bind
// failures surface to the caller before any request is served.
type Server struct {
	http *http.Server
	ln   net.Listener
}

// New constructs a Server for handler. It does not bind until Listen.
func New(handler http.Handler, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 5 * time.Second
	}
	if opts.ReadHeaderTimeout == 0 {
		opts.ReadHeaderTimeout = 2 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	if opts.IdleTimeout == 0 {
		opts.IdleTimeout = 60 * time.Second
	}
	if opts.MaxHeaderBytes == 0 {
		opts.MaxHeaderBytes = 64 << 10 // 64 KB
	}

	return &Server{
		http: &http.Server{
			Addr:              opts.Addr,
			Handler:           handler,
			ReadTimeout:       opts.ReadTimeout,
			ReadHeaderTimeout: opts.ReadHeaderTimeout,
			WriteTimeout:      opts.WriteTimeout,
			IdleTimeout:       opts.IdleTimeout,
			MaxHeaderBytes:    opts.MaxHeaderBytes,
			ErrorLog:          zap.NewStdLog(applog.Logger()),
		},
	}
}

// Listen binds the TCP socket. The returned error wraps the underlying
// *net.OpError, so errors.Is(err, syscall.EADDRINUSE) works for a busy port.
func (s *Server) Listen() error {
	if s.ln != nil {
		return errors.New("server already listening")
	}
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.http.Addr, err)
	}
	s.ln = ln
	return nil
}

// Addr returns the bound address once Listen succeeded, otherwise the
// configured one. Useful when binding port 0.
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.http.Addr
}

// Serve accepts connections until Shutdown is called, binding first if
// Listen was not called. It returns nil after a graceful shutdown.
func (s *Server) Serve() error {
	if s.ln == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	applog.LogInfo(context.Background(), "server listening", zap.String("addr", s.Addr()))
	if err := s.http.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Run binds (unless Listen was already called), serves and shuts down
// gracefully when ctx is cancelled, waiting at most shutdownTimeout for
// in-flight requests. Bind failures are returned immediately.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	if s.ln == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.Serve()
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
		applog.LogInfo(context.Background(), "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-serveErr; err != nil {
		return err
	}
	applog.LogInfo(context.Background(), "server exited")
	return nil
}

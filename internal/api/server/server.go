// Package server runs the HTTP signing service.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/remiblancher/jades-signer/internal/api/router"
	"github.com/remiblancher/jades-signer/internal/audit"
	"github.com/remiblancher/jades-signer/internal/config"
)

// Server represents the HTTP server.
type Server struct {
	cfg     *config.Config
	version string
	audit   audit.Writer
}

// New creates a new Server.
func New(cfg *config.Config, version string, auditLog audit.Writer) *Server {
	if auditLog == nil {
		auditLog = audit.NopWriter{}
	}
	return &Server{cfg: cfg, version: version, audit: auditLog}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start() error {
	handler := router.New(&router.Config{
		Version:  s.version,
		Keystore: s.cfg.Keystore,
		AuditLog: s.audit,
	})

	srv := &http.Server{
		Addr:         s.cfg.Server.Address(),
		Handler:      handler,
		ReadTimeout:  timeoutOr(s.cfg.Server.ReadTimeout.Std(), 10*time.Second),
		WriteTimeout: timeoutOr(s.cfg.Server.WriteTimeout.Std(), 30*time.Second),
		IdleTimeout:  timeoutOr(s.cfg.Server.IdleTimeout.Std(), 60*time.Second),
	}

	if err := s.audit.Write(audit.NewEvent(audit.EventServeStarted, audit.ResultSuccess).
		WithObject(audit.Object{Type: "keystore", Path: s.cfg.Keystore.Path})); err != nil {
		return fmt.Errorf("audit write failed: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("jades signing service listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Printf("received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func timeoutOr(configured, fallback time.Duration) time.Duration {
	if configured > 0 {
		return configured
	}
	return fallback
}

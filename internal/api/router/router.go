// Package router provides HTTP routing configuration using Chi.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/remiblancher/jades-signer/internal/api/handler"
	"github.com/remiblancher/jades-signer/internal/api/middleware"
	"github.com/remiblancher/jades-signer/internal/api/service"
	"github.com/remiblancher/jades-signer/internal/audit"
	"github.com/remiblancher/jades-signer/internal/config"
)

// Config holds router configuration.
type Config struct {
	Version  string
	Keystore config.KeystoreSettings
	AuditLog audit.Writer
}

// New creates a new Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	signService := service.NewSignService(cfg.Keystore, cfg.AuditLog)

	healthHandler := handler.NewHealthHandler(cfg.Version, signService)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	signHandler := handler.NewSignHandler(signService)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/jades/sign", signHandler.Sign)
		r.Post("/jades/verify", signHandler.Verify)
	})

	return r
}

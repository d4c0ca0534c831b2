package main

import (
	"github.com/spf13/cobra"

	"github.com/remiblancher/jades-signer/internal/api/server"
	"github.com/remiblancher/jades-signer/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP signing service",
	Long: `Run an HTTP service exposing the signing pipeline.

Endpoints:
  GET  /health
  GET  /ready
  POST /api/v1/jades/sign    {"payload": {"data": "<base64>"}}
  POST /api/v1/jades/verify  {"jws": {...}}

The keystore and listen address come from the configuration file.

Examples:
  jades serve --config jades.yaml`,
	RunE: runServe,
}

// Command flags
var serveConfigPath string

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Configuration file (YAML, required)")
	_ = serveCmd.MarkFlagRequired("config")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		return err
	}

	// The flag wins; otherwise the config file may enable auditing.
	if auditLogPath == "" && cfg.AuditLog != "" {
		auditLogPath = cfg.AuditLog
	}
	auditLog, err := openAuditLog()
	if err != nil {
		return err
	}
	defer func() { _ = auditLog.Close() }()

	return server.New(cfg, version, auditLog).Start()
}

package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/remiblancher/jades-signer/internal/audit"
	"github.com/remiblancher/jades-signer/internal/config"
	"github.com/remiblancher/jades-signer/pkg/jades"
)

// resolveKeystore loads the PFX bytes and password. Flags win over the
// config file; the password always comes from the environment.
func resolveKeystore(configPath, keystoreFlag, passwordEnvFlag string) ([]byte, string, error) {
	keystorePath := keystoreFlag
	passwordEnv := passwordEnvFlag

	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, "", err
		}
		if keystorePath == "" {
			keystorePath = cfg.Keystore.Path
		}
		if passwordEnv == "" {
			passwordEnv = cfg.Keystore.PasswordEnv
		}
	}

	if keystorePath == "" {
		return nil, "", fmt.Errorf("--keystore is required (or provide --config)")
	}
	if passwordEnv == "" {
		return nil, "", fmt.Errorf("--password-env is required (or provide --config)")
	}

	pfxData, err := os.ReadFile(keystorePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read keystore: %w", err)
	}

	settings := config.KeystoreSettings{Path: keystorePath, PasswordEnv: passwordEnv}
	password, err := settings.Password()
	if err != nil {
		return nil, "", err
	}

	return pfxData, password, nil
}

// openAuditLog returns the writer for the global --audit-log flag,
// NopWriter when the flag is unset.
func openAuditLog() (audit.Writer, error) {
	if auditLogPath == "" {
		return audit.NopWriter{}, nil
	}
	return audit.NewFileWriter(auditLogPath)
}

// writeSignSuccess records a completed signature in the audit log.
func writeSignSuccess(w audit.Writer, result *jades.Result) error {
	leaf := result.Chain.Leaf()
	event := audit.NewEvent(audit.EventSign, audit.ResultSuccess).
		WithObject(audit.Object{
			Type:    "jws",
			Serial:  hex.EncodeToString(leaf.SerialNumber.Bytes()),
			Subject: leaf.Subject.String(),
		}).
		WithContext(audit.Context{
			Algorithm:   result.Header.Algorithm,
			SigningTime: result.Header.SigningTime,
			ChainLen:    result.Chain.Len(),
		})
	if err := w.Write(event); err != nil {
		return fmt.Errorf("audit write failed: %w", err)
	}
	return nil
}

// writeSignFailure records a failed signing session in the audit log.
func writeSignFailure(w audit.Writer, cause error) error {
	event := audit.NewEvent(audit.EventSign, audit.ResultFailure).
		WithContext(audit.Context{Reason: cause.Error()})
	if err := w.Write(event); err != nil {
		return fmt.Errorf("audit write failed: %w", err)
	}
	return nil
}

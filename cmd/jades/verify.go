package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/remiblancher/jades-signer/internal/audit"
	"github.com/remiblancher/jades-signer/pkg/jades"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <jws-file>",
	Short: "Verify a signed JWS object",
	Long: `Verify a JWS General JSON Serialization object produced by jades sign.

Checked: exactly one signature, a complete Baseline-B protected header
with sigT declared critical, x5t#S256 matching the x5c leaf, chain
coherence of x5c, and the RSA-SHA256 signature itself.

Not checked: certificate trust, revocation, expiry.

Examples:
  jades verify order-signed.json`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read JWS file: %w", err)
	}

	auditLog, err := openAuditLog()
	if err != nil {
		return err
	}
	defer func() { _ = auditLog.Close() }()

	result, err := jades.Verify(raw)

	auditResult := audit.ResultSuccess
	reason := ""
	if err != nil {
		auditResult = audit.ResultFailure
		reason = err.Error()
	}
	event := audit.NewEvent(audit.EventVerify, auditResult).
		WithObject(audit.Object{Type: "jws", Path: args[0]}).
		WithContext(audit.Context{Reason: reason})
	if auditErr := auditLog.Write(event); auditErr != nil {
		return fmt.Errorf("audit write failed: %w", auditErr)
	}

	if err != nil {
		if errors.Is(err, jades.ErrInvalidSignature) || errors.Is(err, jades.ErrMalformedObject) {
			return fmt.Errorf("verification failed: %w", err)
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Signature valid\n")
	fmt.Fprintf(cmd.OutOrStdout(), "  Signer:       %s\n", result.Signer)
	fmt.Fprintf(cmd.OutOrStdout(), "  Signing time: %s\n", result.SigningTime)
	fmt.Fprintf(cmd.OutOrStdout(), "  Chain length: %d\n", result.ChainLen)
	return nil
}

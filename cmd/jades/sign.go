package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/remiblancher/jades-signer/pkg/jades"
)

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign a JSON payload with a PKCS#12 keystore",
	Long: `Sign a JSON payload into a JWS General JSON Serialization object.

The payload must be valid JSON. The output object embeds the payload,
the JAdES-Baseline-B protected header and the RSA-SHA256 signature.

Examples:
  # Sign to a file
  jades sign --keystore signer.pfx --password-env PFX_PASSWORD \
      --payload order.json --out order-signed.json

  # Sign to stdout, compact JSON
  jades sign --keystore signer.pfx --password-env PFX_PASSWORD \
      --payload order.json --compact

  # Take keystore settings from a config file
  jades sign --config jades.yaml --payload order.json --out signed.json`,
	RunE: runSign,
}

// Command flags
var (
	signKeystore    string
	signPasswordEnv string
	signPayload     string
	signOutput      string
	signConfigPath  string
	signCompact     bool
)

func init() {
	signCmd.Flags().StringVar(&signKeystore, "keystore", "", "PKCS#12 keystore file (PFX)")
	signCmd.Flags().StringVar(&signPasswordEnv, "password-env", "", "Environment variable holding the keystore password")
	signCmd.Flags().StringVar(&signPayload, "payload", "", "JSON payload file to sign (required)")
	signCmd.Flags().StringVarP(&signOutput, "out", "o", "", "Output file (stdout when omitted)")
	signCmd.Flags().StringVar(&signConfigPath, "config", "", "Configuration file (YAML)")
	signCmd.Flags().BoolVar(&signCompact, "compact", false, "Emit compact JSON instead of pretty-printed")

	_ = signCmd.MarkFlagRequired("payload")
}

func runSign(cmd *cobra.Command, args []string) error {
	pfxData, password, err := resolveKeystore(signConfigPath, signKeystore, signPasswordEnv)
	if err != nil {
		return err
	}

	payload, err := os.ReadFile(signPayload)
	if err != nil {
		return fmt.Errorf("failed to read payload: %w", err)
	}
	if !json.Valid(payload) {
		return fmt.Errorf("payload %s is not valid JSON", signPayload)
	}

	auditLog, err := openAuditLog()
	if err != nil {
		return err
	}
	defer func() { _ = auditLog.Close() }()

	result, err := jades.Sign(cmd.Context(), pfxData, password, payload, nil)
	if err != nil {
		if auditErr := writeSignFailure(auditLog, err); auditErr != nil {
			return auditErr
		}
		return err
	}
	if err := writeSignSuccess(auditLog, result); err != nil {
		return err
	}

	var out []byte
	if signCompact {
		out, err = result.Envelope.JSON()
	} else {
		out, err = result.Envelope.IndentJSON()
	}
	if err != nil {
		return fmt.Errorf("failed to serialize JWS: %w", err)
	}

	if signOutput == "" {
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}
	if err := os.WriteFile(signOutput, append(out, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	leaf := result.Chain.Leaf()
	fmt.Fprintf(cmd.OutOrStdout(), "Signed %s with %s (sigT %s)\n",
		signPayload, leaf.Subject.String(), result.Header.SigningTime)
	return nil
}

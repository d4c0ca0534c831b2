// Command jades produces JAdES-Baseline-B detached signatures
// (ETSI TS 119 182-1) for JSON payloads from a PKCS#12 keystore.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build-time variables (injected by GoReleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags
var auditLogPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "jades",
	Short: "JAdES-Baseline-B detached signing for JSON payloads",
	Long: `jades signs arbitrary JSON payloads into JWS General JSON Serialization
objects conforming to JAdES-Baseline-B (ETSI TS 119 182-1).

The signing certificate, its chain and the private key come from a
PKCS#12 (PFX) keystore. The password is never passed on the command
line; name the environment variable that carries it instead.

The protected header carries the certificate identification required by
Baseline-B: kid (RFC 5035 IssuerSerial), x5t#S256, x5c and the critical
sigT claimed signing time.

Examples:
  # Sign a payload
  jades sign --keystore signer.pfx --password-env PFX_PASSWORD \
      --payload order.json --out order-signed.json

  # Verify a signed object
  jades verify order-signed.json

  # Show what a keystore would sign with
  jades inspect --keystore signer.pfx --password-env PFX_PASSWORD

  # Run the HTTP signing service
  jades serve --config jades.yaml`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&auditLogPath, "audit-log", "", "Audit log file (JSONL, hash-chained)")

	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(serveCmd)
}

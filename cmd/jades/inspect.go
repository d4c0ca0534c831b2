package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/remiblancher/jades-signer/internal/audit"
	jadesint "github.com/remiblancher/jades-signer/internal/jades"
	"github.com/remiblancher/jades-signer/internal/keystore"
	"github.com/remiblancher/jades-signer/internal/x509util"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the chain and signing identity of a keystore",
	Long: `Inspect a PKCS#12 keystore: the ordered certificate chain, the
selected signing certificate, its thumbprint and the kid (IssuerSerial)
value a signature would carry.

Examples:
  jades inspect --keystore signer.pfx --password-env PFX_PASSWORD`,
	RunE: runInspect,
}

// Command flags
var (
	inspectKeystore    string
	inspectPasswordEnv string
	inspectConfigPath  string
)

func init() {
	inspectCmd.Flags().StringVar(&inspectKeystore, "keystore", "", "PKCS#12 keystore file (PFX)")
	inspectCmd.Flags().StringVar(&inspectPasswordEnv, "password-env", "", "Environment variable holding the keystore password")
	inspectCmd.Flags().StringVar(&inspectConfigPath, "config", "", "Configuration file (YAML)")
}

func runInspect(cmd *cobra.Command, args []string) error {
	pfxData, password, err := resolveKeystore(inspectConfigPath, inspectKeystore, inspectPasswordEnv)
	if err != nil {
		return err
	}

	auditLog, err := openAuditLog()
	if err != nil {
		return err
	}
	defer func() { _ = auditLog.Close() }()

	chain, key, err := keystore.Extract(pfxData, password)
	if err != nil {
		return err
	}
	// The key is not needed for inspection.
	key.Destroy()

	leaf := chain.Leaf()
	event := audit.NewEvent(audit.EventKeystoreLoaded, audit.ResultSuccess).
		WithObject(audit.Object{
			Type:    "keystore",
			Serial:  hex.EncodeToString(leaf.SerialNumber.Bytes()),
			Subject: leaf.Subject.String(),
		}).
		WithContext(audit.Context{ChainLen: chain.Len()})
	if auditErr := auditLog.Write(event); auditErr != nil {
		return fmt.Errorf("audit write failed: %w", auditErr)
	}
	kid, err := jadesint.EncodeIssuerSerial(leaf)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Certificate chain (%d, leaf first):\n", chain.Len())
	for i, cert := range chain.Certificates() {
		marker := " "
		if cert == leaf {
			marker = "*"
		}
		fmt.Fprintf(out, "  %s [%d] %s\n", marker, i, cert.Subject.String())
		fmt.Fprintf(out, "        issuer: %s\n", cert.Issuer.String())
	}

	fmt.Fprintf(out, "Signing certificate:\n")
	fmt.Fprintf(out, "  Subject:  %s\n", leaf.Subject.String())
	fmt.Fprintf(out, "  Serial:   %s\n", hex.EncodeToString(leaf.SerialNumber.Bytes()))
	fmt.Fprintf(out, "  x5t#S256: %s\n", x509util.SHA256Thumbprint(leaf))
	fmt.Fprintf(out, "  kid:      %s\n", kid)
	return nil
}

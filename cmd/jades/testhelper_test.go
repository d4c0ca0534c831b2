package main

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"software.sslmate.com/src/go-pkcs12"
)

// Note: t.Parallel() is not used because Cobra commands share global flag state.
// Running tests in parallel causes race conditions with flag access.

const (
	testPassword    = "cli-test-password"
	testPasswordEnv = "JADES_CLI_TEST_PASSWORD"
)

// executeCommand executes a Cobra command with the given args and returns output.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	err = root.Execute()
	return buf.String(), err
}

// testContext holds test resources.
type testContext struct {
	t       *testing.T
	tempDir string
}

// newTestContext creates a new test context with a temp directory.
func newTestContext(t *testing.T) *testContext {
	t.Helper()
	dir, err := os.MkdirTemp("", "jades-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return &testContext{t: t, tempDir: dir}
}

// path returns a path within the temp directory.
func (tc *testContext) path(name string) string {
	return filepath.Join(tc.tempDir, name)
}

// writeFile writes content to a file in the temp directory.
func (tc *testContext) writeFile(name, content string) string {
	tc.t.Helper()
	path := tc.path(name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		tc.t.Fatalf("Failed to write file %s: %v", name, err)
	}
	return path
}

// setupKeystore writes the shared PFX fixture to a file and sets the
// password environment variable for the test.
func (tc *testContext) setupKeystore() string {
	tc.t.Helper()
	pfxOnce.Do(func() {
		pfxData, pfxErr = buildPFX()
	})
	if pfxErr != nil {
		tc.t.Fatalf("Failed to build PFX fixture: %v", pfxErr)
	}

	path := tc.path("signer.p12")
	if err := os.WriteFile(path, pfxData, 0600); err != nil {
		tc.t.Fatalf("Failed to write keystore: %v", err)
	}
	tc.t.Setenv(testPasswordEnv, testPassword)
	return path
}

var (
	pfxOnce sync.Once
	pfxData []byte
	pfxErr  error
)

// buildPFX creates a PFX holding an RSA leaf issued by a test CA.
func buildPFX() ([]byte, error) {
	caKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	leafKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}

	caTmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "CLI Test CA", Organization: []string{"Test Org"}},
		NotBefore:             time.Now().Add(-1 * time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	caDER, err := x509.CreateCertificate(rand.Reader, caTmpl, caTmpl, &caKey.PublicKey, caKey)
	if err != nil {
		return nil, err
	}
	caCert, err := x509.ParseCertificate(caDER)
	if err != nil {
		return nil, err
	}

	leafTmpl := &x509.Certificate{
		SerialNumber: big.NewInt(4660),
		Subject:      pkix.Name{CommonName: "CLI Test Signer", Organization: []string{"Test Org"}},
		NotBefore:    time.Now().Add(-1 * time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	leafDER, err := x509.CreateCertificate(rand.Reader, leafTmpl, caCert, &leafKey.PublicKey, caKey)
	if err != nil {
		return nil, err
	}
	leafCert, err := x509.ParseCertificate(leafDER)
	if err != nil {
		return nil, err
	}

	return pkcs12.Modern.Encode(leafKey, leafCert, []*x509.Certificate{caCert}, testPassword)
}

// resetFlags resets all command flags to their default values.
// This is needed because Cobra retains flag values between test runs.
func resetFlags() {
	auditLogPath = ""

	signKeystore = ""
	signPasswordEnv = ""
	signPayload = ""
	signOutput = ""
	signConfigPath = ""
	signCompact = false

	inspectKeystore = ""
	inspectPasswordEnv = ""
	inspectConfigPath = ""

	serveConfigPath = ""
}

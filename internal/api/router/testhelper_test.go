package router

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"software.sslmate.com/src/go-pkcs12"

	"github.com/remiblancher/jades-signer/internal/audit"
	"github.com/remiblancher/jades-signer/internal/config"
)

const (
	testPassword    = "api-test-password"
	testPasswordEnv = "JADES_API_TEST_PASSWORD"
)

var (
	pfxOnce sync.Once
	pfxData []byte
	pfxErr  error
)

// testServer wires the full router against a PFX fixture on disk, the
// way serve mode does.
func testServer(t *testing.T) http.Handler {
	t.Helper()

	pfxOnce.Do(func() {
		pfxData, pfxErr = buildPFX()
	})
	if pfxErr != nil {
		t.Fatalf("building PFX fixture: %v", pfxErr)
	}

	path := filepath.Join(t.TempDir(), "signer.p12")
	if err := os.WriteFile(path, pfxData, 0o600); err != nil {
		t.Fatalf("writing PFX fixture: %v", err)
	}
	t.Setenv(testPasswordEnv, testPassword)

	return New(&Config{
		Version:  "test",
		Keystore: config.KeystoreSettings{Path: path, PasswordEnv: testPasswordEnv},
		AuditLog: audit.NopWriter{},
	})
}

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
		Subject:               pkix.Name{CommonName: "API Test CA", Organization: []string{"Test Org"}},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		BasicConstraintsValid: true,
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign,
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
		SerialNumber: big.NewInt(77),
		Subject:      pkix.Name{CommonName: "API Test Signer", Organization: []string{"Test Org"}},
		NotBefore:    time.Now().Add(-time.Hour),
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

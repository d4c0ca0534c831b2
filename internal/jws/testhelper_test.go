package jws

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"sync"
	"testing"
	"time"

	"software.sslmate.com/src/go-pkcs12"

	"github.com/remiblancher/jades-signer/internal/jades"
	"github.com/remiblancher/jades-signer/internal/keystore"
)

// fixedInstant is the claimed signing time used across the package
// tests, chosen with a sub-second component to exercise truncation.
var fixedInstant = time.Date(2024, 3, 1, 10, 15, 30, 123000000, time.UTC)

// fixture carries a signing-ready chain, key and assembled header.
type fixture struct {
	chain  *keystore.Chain
	key    *keystore.PrivateKey
	header *jades.ProtectedHeader
}

var (
	fixtureOnce sync.Once
	fixtureVal  *fixture
	fixtureErr  error
)

func loadFixture(t *testing.T) *fixture {
	t.Helper()
	fixtureOnce.Do(func() {
		fixtureVal, fixtureErr = buildFixture()
	})
	if fixtureErr != nil {
		t.Fatalf("building fixture: %v", fixtureErr)
	}
	return fixtureVal
}

func buildFixture() (*fixture, error) {
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
		Subject:               pkix.Name{CommonName: "Test Issuing CA", Organization: []string{"Test Org"}},
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
		SerialNumber: big.NewInt(42),
		Subject:      pkix.Name{CommonName: "Test Signer", Organization: []string{"Test Org"}},
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

	pfx, err := pkcs12.Modern.Encode(leafKey, leafCert, []*x509.Certificate{caCert}, "fixture")
	if err != nil {
		return nil, err
	}
	chain, key, err := keystore.Extract(pfx, "fixture")
	if err != nil {
		return nil, err
	}

	header, err := jades.AssembleHeader(chain, chain.Leaf(), fixedInstant)
	if err != nil {
		return nil, err
	}

	return &fixture{chain: chain, key: key, header: header}, nil
}

package keystore

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"sync"
	"testing"
	"time"

	"software.sslmate.com/src/go-pkcs12"
)

const testPassword = "test-password"

// testChain is a three-level RSA hierarchy shared by the package tests.
// RSA key generation is expensive, so it runs once.
type testChain struct {
	rootCert *x509.Certificate
	intCert  *x509.Certificate
	leafCert *x509.Certificate
	leafKey  *rsa.PrivateKey
}

var (
	chainOnce    sync.Once
	chainFixture *testChain
	chainErr     error
)

func fixtureChain(t *testing.T) *testChain {
	t.Helper()
	chainOnce.Do(func() {
		chainFixture, chainErr = buildChain()
	})
	if chainErr != nil {
		t.Fatalf("building test chain: %v", chainErr)
	}
	return chainFixture
}

func buildChain() (*testChain, error) {
	rootKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	intKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	leafKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}

	rootCert, err := issueCert(certTemplate("Test Root CA", 1, true), nil, &rootKey.PublicKey, rootKey)
	if err != nil {
		return nil, err
	}
	intCert, err := issueCert(certTemplate("Test Issuing CA", 2, true), rootCert, &intKey.PublicKey, rootKey)
	if err != nil {
		return nil, err
	}
	leafCert, err := issueCert(certTemplate("Test Signer", 3, false), intCert, &leafKey.PublicKey, intKey)
	if err != nil {
		return nil, err
	}

	return &testChain{
		rootCert: rootCert,
		intCert:  intCert,
		leafCert: leafCert,
		leafKey:  leafKey,
	}, nil
}

func certTemplate(cn string, serial int64, isCA bool) *x509.Certificate {
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(serial),
		Subject:               pkix.Name{CommonName: cn, Organization: []string{"Test Org"}},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		BasicConstraintsValid: true,
		IsCA:                  isCA,
	}
	if isCA {
		tmpl.KeyUsage = x509.KeyUsageCertSign
	} else {
		tmpl.KeyUsage = x509.KeyUsageDigitalSignature
	}
	return tmpl
}

func issueCert(tmpl, parent *x509.Certificate, pub crypto.PublicKey, signer crypto.Signer) (*x509.Certificate, error) {
	if parent == nil {
		parent = tmpl
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, parent, pub, signer)
	if err != nil {
		return nil, err
	}
	return x509.ParseCertificate(der)
}

// fixturePFX encodes the shared chain into a PFX blob. The CA
// certificates are passed in the given order so ordering behavior can
// be exercised.
func fixturePFX(t *testing.T, caCerts []*x509.Certificate) []byte {
	t.Helper()
	tc := fixtureChain(t)
	pfx, err := pkcs12.Modern.Encode(tc.leafKey, tc.leafCert, caCerts, testPassword)
	if err != nil {
		t.Fatalf("encoding PFX: %v", err)
	}
	return pfx
}

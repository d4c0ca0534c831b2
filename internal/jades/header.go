package jades

import (
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/remiblancher/jades-signer/internal/der"
	"github.com/remiblancher/jades-signer/internal/keystore"
	"github.com/remiblancher/jades-signer/internal/x509util"
)

// Fixed protected header values for JAdES-Baseline-B with RSA-SHA256.
const (
	AlgorithmRS256  = "RS256"
	ContentTypeJSON = "json"
	HeaderTypeJOSE  = "jose+json"

	// HeaderSigningTime is the JAdES claimed signing time member. It
	// is not a registered JWS header name and therefore must be
	// declared critical.
	HeaderSigningTime = "sigT"
)

// ProtectedHeader holds the JAdES-Baseline-B protected header members.
// It is constructed once per signing session and passed whole to the
// signing collaborator.
type ProtectedHeader struct {
	Algorithm      string   // alg
	ContentType    string   // cty
	Type           string   // typ
	KeyID          string   // kid: base64 DER IssuerSerial
	CertThumbprint string   // x5t#S256: URL-safe base64, no padding
	CertChain      []string // x5c: standard base64 DER, leaf first
	SigningTime    string   // sigT: RFC 3339 UTC, seconds precision
	Critical       []string // crit
}

// AssembleHeader derives the protected header from the certificate
// chain, the signing certificate and the given instant. The clock is
// read by the caller exactly once; every other input is deterministic.
func AssembleHeader(chain *keystore.Chain, signingCert *x509.Certificate, now time.Time) (*ProtectedHeader, error) {
	kid, err := EncodeIssuerSerial(signingCert)
	if err != nil {
		return nil, NewSignError("issuer-serial", err)
	}

	digest, err := hex.DecodeString(x509util.SHA256Thumbprint(signingCert))
	if err != nil {
		return nil, NewSignError("assemble", fmt.Errorf("invalid thumbprint: %w", err))
	}

	certs := chain.Certificates()
	x5c := make([]string, 0, len(certs))
	for _, cert := range certs {
		x5c = append(x5c, der.EncodeBase64(x509util.DERBytes(cert)))
	}

	return &ProtectedHeader{
		Algorithm:      AlgorithmRS256,
		ContentType:    ContentTypeJSON,
		Type:           HeaderTypeJOSE,
		KeyID:          kid,
		CertThumbprint: base64.RawURLEncoding.EncodeToString(digest),
		CertChain:      x5c,
		SigningTime:    formatSigningTime(now),
		Critical:       []string{HeaderSigningTime},
	}, nil
}

// formatSigningTime renders sigT: ISO-8601 UTC with the sub-second
// component truncated and the trailing Z preserved.
func formatSigningTime(now time.Time) string {
	return now.UTC().Truncate(time.Second).Format(time.RFC3339)
}

package jws

import (
	"bytes"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/remiblancher/jades-signer/internal/jades"
)

// VerifyResult describes a successfully verified JWS object.
type VerifyResult struct {
	// Signer is the subject DN of the signing certificate.
	Signer string

	// SigningTime is the claimed sigT value.
	SigningTime string

	// ChainLen is the number of certificates carried in x5c.
	ChainLen int
}

// protectedHeader is the decoded protected header of one signature.
type protectedHeader struct {
	Algorithm      string   `json:"alg"`
	ContentType    string   `json:"cty"`
	Type           string   `json:"typ"`
	KeyID          string   `json:"kid"`
	CertThumbprint string   `json:"x5t#S256"`
	CertChain      []string `json:"x5c"`
	SigningTime    string   `json:"sigT"`
	Critical       []string `json:"crit"`
}

// Verify checks a JWS General JSON Serialization object produced by
// Sign: exactly one signature, a complete JAdES-Baseline-B header with
// sigT declared critical, a coherent x5c chain, and a valid RSA-SHA256
// signature over the signing input by the x5c leaf.
//
// Trust is not evaluated: no CA validation, revocation or expiry
// checking happens here.
func Verify(raw []byte) (*VerifyResult, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedObject, err)
	}
	if len(env.Signatures) != 1 {
		return nil, fmt.Errorf("%w: expected exactly one signature, got %d", ErrMalformedObject, len(env.Signatures))
	}

	sig := env.Signatures[0]
	headerJSON, err := base64.RawURLEncoding.DecodeString(sig.Protected)
	if err != nil {
		return nil, fmt.Errorf("%w: protected header: %v", ErrMalformedObject, err)
	}
	var hdr protectedHeader
	if err := json.Unmarshal(headerJSON, &hdr); err != nil {
		return nil, fmt.Errorf("%w: protected header: %v", ErrMalformedObject, err)
	}

	if err := checkHeader(&hdr); err != nil {
		return nil, err
	}

	chain, err := decodeChain(hdr.CertChain)
	if err != nil {
		return nil, err
	}
	leaf := chain[0]

	sum := sha256.Sum256(leaf.Raw)
	if base64.RawURLEncoding.EncodeToString(sum[:]) != hdr.CertThumbprint {
		return nil, fmt.Errorf("%w: x5t#S256 does not match x5c leaf", ErrInvalidSignature)
	}

	signature, err := base64.RawURLEncoding.DecodeString(sig.Signature)
	if err != nil {
		return nil, fmt.Errorf("%w: signature: %v", ErrMalformedObject, err)
	}

	pub, ok := leaf.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: leaf certificate key is %T, want RSA", ErrInvalidSignature, leaf.PublicKey)
	}

	signingInput := sig.Protected + "." + env.Payload
	digest := sha256.Sum256([]byte(signingInput))
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], signature); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	return &VerifyResult{
		Signer:      leaf.Subject.String(),
		SigningTime: hdr.SigningTime,
		ChainLen:    len(chain),
	}, nil
}

// checkHeader enforces the Baseline-B header constraints.
func checkHeader(hdr *protectedHeader) error {
	if hdr.Algorithm != jades.AlgorithmRS256 {
		return fmt.Errorf("%w: alg %q, want %q", ErrMalformedObject, hdr.Algorithm, jades.AlgorithmRS256)
	}
	if len(hdr.Critical) != 1 || hdr.Critical[0] != jades.HeaderSigningTime {
		return fmt.Errorf("%w: crit must declare exactly %q", ErrMalformedObject, jades.HeaderSigningTime)
	}
	if hdr.SigningTime == "" {
		return fmt.Errorf("%w: missing sigT", ErrMalformedObject)
	}
	if hdr.CertThumbprint == "" {
		return fmt.Errorf("%w: missing x5t#S256", ErrMalformedObject)
	}
	if len(hdr.CertChain) == 0 {
		return fmt.Errorf("%w: missing x5c", ErrMalformedObject)
	}
	return nil
}

// decodeChain parses the x5c member and checks that each certificate
// is issued by its successor.
func decodeChain(x5c []string) ([]*x509.Certificate, error) {
	chain := make([]*x509.Certificate, 0, len(x5c))
	for i, encoded := range x5c {
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("%w: x5c[%d]: %v", ErrMalformedObject, i, err)
		}
		cert, err := x509.ParseCertificate(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: x5c[%d]: %v", ErrMalformedObject, i, err)
		}
		chain = append(chain, cert)
	}
	for i := 0; i < len(chain)-1; i++ {
		if !bytes.Equal(chain[i].RawIssuer, chain[i+1].RawSubject) {
			return nil, fmt.Errorf("%w: x5c[%d] is not issued by x5c[%d]", ErrMalformedObject, i, i+1)
		}
	}
	return chain, nil
}

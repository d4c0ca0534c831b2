// Package jws produces and verifies JWS objects in the General JSON
// Serialization (RFC 7515 Section 7.2.1). The signature itself is
// delegated to go-jose; this package maps the JAdES protected header
// onto the signer and re-shapes the result into the general form.
package jws

import (
	"context"
	"crypto"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jose "gopkg.in/square/go-jose.v2"

	"github.com/remiblancher/jades-signer/internal/jades"
)

// Sentinel errors for JWS handling.
var (
	// ErrMalformedObject indicates input that is not a JWS General
	// JSON Serialization object.
	ErrMalformedObject = errors.New("jws: malformed JWS object")

	// ErrInvalidSignature indicates signature verification failed.
	ErrInvalidSignature = errors.New("jws: invalid signature")
)

// Envelope is a JWS object in General JSON Serialization.
type Envelope struct {
	Payload    string      `json:"payload"`
	Signatures []Signature `json:"signatures"`
}

// Signature is one signature entry of the general serialization.
type Signature struct {
	Protected string `json:"protected"`
	Signature string `json:"signature"`
}

// JSON returns the envelope as compact JSON.
func (e *Envelope) JSON() ([]byte, error) {
	return json.Marshal(e)
}

// IndentJSON returns the envelope pretty-printed for console output.
func (e *Envelope) IndentJSON() ([]byte, error) {
	return json.MarshalIndent(e, "", "  ")
}

// Sign signs payload with the private key under the given protected
// header and returns the general serialization. The header is applied
// whole; nothing is added or defaulted here, so a header the assembler
// did not produce never reaches the wire.
func Sign(ctx context.Context, payload []byte, key crypto.Signer, header *jades.ProtectedHeader) (*Envelope, error) {
	if header.Algorithm != jades.AlgorithmRS256 {
		return nil, fmt.Errorf("unsupported algorithm %q", header.Algorithm)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := (&jose.SignerOptions{}).
		WithType(jose.ContentType(header.Type)).
		WithContentType(jose.ContentType(header.ContentType)).
		WithCritical(header.Critical...).
		WithHeader(jose.HeaderKey("kid"), header.KeyID).
		WithHeader(jose.HeaderKey("x5t#S256"), header.CertThumbprint).
		WithHeader(jose.HeaderKey("x5c"), header.CertChain).
		WithHeader(jose.HeaderKey(jades.HeaderSigningTime), header.SigningTime)

	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.RS256, Key: key}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create signer: %w", err)
	}

	obj, err := signer.Sign(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to sign payload: %w", err)
	}

	// go-jose flattens single-signature objects; the compact form
	// carries the same three segments, so build the general
	// serialization from it.
	compact, err := obj.CompactSerialize()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize signature: %w", err)
	}
	parts := strings.Split(compact, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: unexpected compact form", ErrMalformedObject)
	}

	return &Envelope{
		Payload: parts[1],
		Signatures: []Signature{
			{Protected: parts[0], Signature: parts[2]},
		},
	}, nil
}

// Package jades is the public API for producing JAdES-Baseline-B
// detached signatures (ETSI TS 119 182-1) from a PKCS#12 keystore.
//
// The pipeline is strictly sequential: PKCS#12 extraction, protected
// header assembly, JWS signing. Every failure is fatal to the session;
// there is no partial output.
package jades

import (
	"context"
	"time"

	jadesint "github.com/remiblancher/jades-signer/internal/jades"
	"github.com/remiblancher/jades-signer/internal/jws"
	"github.com/remiblancher/jades-signer/internal/keystore"
)

// Re-exported types.
type (
	// ProtectedHeader holds the JAdES protected header members.
	ProtectedHeader = jadesint.ProtectedHeader

	// SignError reports which pipeline stage failed.
	SignError = jadesint.SignError

	// Chain is a leaf-first certificate chain.
	Chain = keystore.Chain

	// Envelope is a JWS General JSON Serialization object.
	Envelope = jws.Envelope

	// VerifyResult describes a verified JWS object.
	VerifyResult = jws.VerifyResult
)

// Re-exported sentinel errors; check with errors.Is().
var (
	ErrInvalidPassword    = keystore.ErrInvalidPassword
	ErrMalformedContainer = keystore.ErrMalformedContainer
	ErrNoPrivateKey       = keystore.ErrNoPrivateKey
	ErrKeyConversion      = keystore.ErrKeyConversion
	ErrInvalidSignature   = jws.ErrInvalidSignature
	ErrMalformedObject    = jws.ErrMalformedObject
)

// Options controls a signing session.
type Options struct {
	// Clock supplies the signing time. time.Now when nil.
	Clock func() time.Time
}

// Result is the outcome of a completed signing session.
type Result struct {
	Envelope *Envelope
	Header   *ProtectedHeader
	Chain    *Chain
}

// Sign runs one detached signing session: extract the chain and key
// from the PFX blob, assemble the protected header, sign the payload.
// The private key exists only for the duration of the call and is
// zeroed on every exit path.
func Sign(ctx context.Context, pfxData []byte, password string, payload []byte, opts *Options) (*Result, error) {
	chain, key, err := keystore.Extract(pfxData, password)
	if err != nil {
		return nil, jadesint.NewSignError("extract", err)
	}
	defer key.Destroy()

	clock := time.Now
	if opts != nil && opts.Clock != nil {
		clock = opts.Clock
	}

	header, err := jadesint.AssembleHeader(chain, chain.Leaf(), clock())
	if err != nil {
		return nil, err
	}

	env, err := jws.Sign(ctx, payload, key.Signer(), header)
	if err != nil {
		return nil, jadesint.NewSignError("sign", err)
	}

	return &Result{Envelope: env, Header: header, Chain: chain}, nil
}

// Verify checks a JWS object produced by Sign: header completeness,
// critical-member declaration, x5c coherence and the RSA signature.
// No trust evaluation is performed.
func Verify(raw []byte) (*VerifyResult, error) {
	return jws.Verify(raw)
}

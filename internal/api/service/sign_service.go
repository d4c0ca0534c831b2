// Package service provides business logic for the REST API.
package service

import (
	"context"
	"crypto/x509"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/remiblancher/jades-signer/internal/api/dto"
	"github.com/remiblancher/jades-signer/internal/audit"
	"github.com/remiblancher/jades-signer/internal/config"
	"github.com/remiblancher/jades-signer/internal/x509util"
	"github.com/remiblancher/jades-signer/pkg/jades"
)

// SignService signs payloads with the server's configured keystore.
// The keystore is read per request; nothing key-related is cached.
type SignService struct {
	keystore config.KeystoreSettings
	auditLog audit.Writer
}

// NewSignService creates a new SignService.
func NewSignService(keystore config.KeystoreSettings, auditLog audit.Writer) *SignService {
	if auditLog == nil {
		auditLog = audit.NopWriter{}
	}
	return &SignService{keystore: keystore, auditLog: auditLog}
}

// Sign produces a JAdES detached signature over the request payload.
func (s *SignService) Sign(ctx context.Context, req *dto.SignRequest) (*dto.SignResponse, error) {
	payload, err := req.Payload.Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}

	pfxData, err := os.ReadFile(s.keystore.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keystore: %w", err)
	}
	password, err := s.keystore.Password()
	if err != nil {
		return nil, err
	}

	result, err := jades.Sign(ctx, pfxData, password, payload, nil)
	if err != nil {
		if auditErr := s.auditLog.Write(failureEvent(s.keystore.Path, err)); auditErr != nil {
			return nil, fmt.Errorf("audit write failed: %w", auditErr)
		}
		return nil, err
	}

	leaf := result.Chain.Leaf()
	if auditErr := s.auditLog.Write(successEvent(leaf.Subject.String(), serialHex(leaf), result)); auditErr != nil {
		return nil, fmt.Errorf("audit write failed: %w", auditErr)
	}

	jwsJSON, err := result.Envelope.JSON()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize JWS: %w", err)
	}

	return &dto.SignResponse{
		JWS:         jwsJSON,
		SigningTime: result.Header.SigningTime,
		Signer: dto.SignerInfo{
			Subject:    leaf.Subject.String(),
			Issuer:     leaf.Issuer.String(),
			Serial:     serialHex(leaf),
			Thumbprint: x509util.SHA256Thumbprint(leaf),
		},
		ChainLen: result.Chain.Len(),
	}, nil
}

// Verify checks a JWS object. Verification failures are reported in
// the response, not as errors; only transport-level problems error.
func (s *SignService) Verify(ctx context.Context, req *dto.VerifyRequest) (*dto.VerifyResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := jades.Verify(req.JWS)
	if err != nil {
		event := audit.NewEvent(audit.EventVerify, audit.ResultFailure).
			WithObject(audit.Object{Type: "jws"}).
			WithContext(audit.Context{Reason: err.Error()})
		if auditErr := s.auditLog.Write(event); auditErr != nil {
			return nil, fmt.Errorf("audit write failed: %w", auditErr)
		}
		return &dto.VerifyResponse{Valid: false, Reason: err.Error()}, nil
	}

	event := audit.NewEvent(audit.EventVerify, audit.ResultSuccess).
		WithObject(audit.Object{Type: "jws", Subject: result.Signer}).
		WithContext(audit.Context{SigningTime: result.SigningTime, ChainLen: result.ChainLen})
	if auditErr := s.auditLog.Write(event); auditErr != nil {
		return nil, fmt.Errorf("audit write failed: %w", auditErr)
	}
	return &dto.VerifyResponse{
		Valid:       true,
		Signer:      result.Signer,
		SigningTime: result.SigningTime,
		ChainLen:    result.ChainLen,
	}, nil
}

// Ready reports whether the service can sign: the keystore file is
// readable and the password variable is set.
func (s *SignService) Ready() map[string]bool {
	checks := map[string]bool{}

	_, err := os.Stat(s.keystore.Path)
	checks["keystore"] = err == nil

	_, err = s.keystore.Password()
	checks["password"] = err == nil

	return checks
}

func serialHex(cert *x509.Certificate) string {
	return hex.EncodeToString(cert.SerialNumber.Bytes())
}

// successEvent builds the audit record for a completed signature.
func successEvent(subject, serial string, result *jades.Result) *audit.Event {
	return audit.NewEvent(audit.EventSign, audit.ResultSuccess).
		WithObject(audit.Object{Type: "jws", Serial: serial, Subject: subject}).
		WithContext(audit.Context{
			Algorithm:   result.Header.Algorithm,
			SigningTime: result.Header.SigningTime,
			ChainLen:    result.Chain.Len(),
		})
}

// failureEvent builds the audit record for a failed signing session.
func failureEvent(keystorePath string, err error) *audit.Event {
	return audit.NewEvent(audit.EventSign, audit.ResultFailure).
		WithObject(audit.Object{Type: "keystore", Path: keystorePath}).
		WithContext(audit.Context{Reason: err.Error()})
}

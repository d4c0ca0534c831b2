// Package jades derives the JAdES-Baseline-B protected header for a
// detached JWS signature (ETSI TS 119 182-1).
package jades

import "fmt"

// SignError reports which pipeline stage a signing session failed in.
// It supports errors.Is() and errors.As() through Unwrap.
type SignError struct {
	Stage string // "extract", "issuer-serial", "assemble", "sign"
	Err   error
}

// Error implements the error interface.
func (e *SignError) Error() string {
	return fmt.Sprintf("jades %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *SignError) Unwrap() error { return e.Err }

// NewSignError creates a SignError for the given stage.
func NewSignError(stage string, err error) *SignError {
	return &SignError{Stage: stage, Err: err}
}

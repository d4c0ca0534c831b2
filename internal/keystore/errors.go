package keystore

import "errors"

// Sentinel errors for PKCS#12 extraction.
// Use errors.Is() to check for these errors through the error chain.
var (
	// ErrInvalidPassword indicates the PFX password is wrong.
	ErrInvalidPassword = errors.New("keystore: invalid password")

	// ErrMalformedContainer indicates the PFX blob is not a parseable
	// PKCS#12 container.
	ErrMalformedContainer = errors.New("keystore: malformed PKCS#12 container")

	// ErrNoPrivateKey indicates the container holds no shrouded
	// private-key bag.
	ErrNoPrivateKey = errors.New("keystore: no private key in container")

	// ErrKeyConversion indicates the private key could not be brought
	// into the PKCS#8 form the signer requires.
	ErrKeyConversion = errors.New("keystore: key conversion failed")
)

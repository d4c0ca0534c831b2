package keystore

import (
	"encoding/asn1"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// oidDataContent is the PKCS#7 id-data content type carried by the
// authSafe of an unsigned PFX (RFC 7292 Section 4).
var oidDataContent = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 1}

// checkEnvelope validates the outer PFX structure before any
// decryption is attempted:
//
//	PFX ::= SEQUENCE { version INTEGER {v3(3)}, authSafe ContentInfo, macData OPTIONAL }
//
// This separates a truncated or non-PKCS#12 blob from a wrong
// password, which only surfaces later during bag decryption.
func checkEnvelope(pfxData []byte) error {
	input := cryptobyte.String(pfxData)

	var pfx cryptobyte.String
	if !input.ReadASN1(&pfx, cryptobyte_asn1.SEQUENCE) {
		return fmt.Errorf("%w: not a DER SEQUENCE", ErrMalformedContainer)
	}

	var version int
	if !pfx.ReadASN1Integer(&version) {
		return fmt.Errorf("%w: missing version", ErrMalformedContainer)
	}
	if version != 3 {
		return fmt.Errorf("%w: unsupported PFX version %d", ErrMalformedContainer, version)
	}

	var contentInfo cryptobyte.String
	if !pfx.ReadASN1(&contentInfo, cryptobyte_asn1.SEQUENCE) {
		return fmt.Errorf("%w: missing authSafe", ErrMalformedContainer)
	}

	var contentType asn1.ObjectIdentifier
	if !contentInfo.ReadASN1ObjectIdentifier(&contentType) {
		return fmt.Errorf("%w: missing authSafe content type", ErrMalformedContainer)
	}
	if !contentType.Equal(oidDataContent) {
		return fmt.Errorf("%w: unexpected authSafe content type %s", ErrMalformedContainer, contentType)
	}

	return nil
}

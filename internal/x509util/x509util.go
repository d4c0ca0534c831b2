package x509util

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/asn1"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
)

// ErrUnknownOID indicates an issuer attribute whose type OID is not in
// the registry. An issuer with unknown attributes cannot be encoded
// into an IssuerSerial, so this is fatal to the signing session.
var ErrUnknownOID = errors.New("x509util: unknown attribute OID")

// IssuerAttribute is one issuer RDN attribute. Tag preserves the ASN.1
// string type of the original value (PrintableString, UTF8String, ...)
// so the attribute can be re-encoded byte-identically.
type IssuerAttribute struct {
	Type  asn1.ObjectIdentifier
	Value []byte
	Tag   int
}

// Raw decode targets for an RDNSequence. The Value stays an
// asn1.RawValue so the original string tag and content octets survive;
// pkix.RDNSequence would decode the value and lose both.
type rawAttributeTypeAndValue struct {
	Type  asn1.ObjectIdentifier
	Value asn1.RawValue
}

// The SET suffix tells encoding/asn1 to expect SET OF.
type rawRelativeDistinguishedNameSET []rawAttributeTypeAndValue

type rawRDNSequence []rawRelativeDistinguishedNameSET

// IssuerAttributes returns the issuer RDN attributes of a certificate
// in their encoded order. Attributes lacking a type or a value are
// skipped; an attribute with an unregistered type OID fails with
// ErrUnknownOID.
func IssuerAttributes(cert *x509.Certificate) ([]IssuerAttribute, error) {
	var rdns rawRDNSequence
	rest, err := asn1.Unmarshal(cert.RawIssuer, &rdns)
	if err != nil {
		return nil, fmt.Errorf("failed to parse issuer name: %w", err)
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("failed to parse issuer name: %d trailing bytes", len(rest))
	}

	var attrs []IssuerAttribute
	for _, rdn := range rdns {
		for _, atv := range rdn {
			if len(atv.Type) == 0 || len(atv.Value.Bytes) == 0 {
				continue
			}
			if _, ok := AttributeName(atv.Type); !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownOID, atv.Type.String())
			}
			attrs = append(attrs, IssuerAttribute{
				Type:  atv.Type,
				Value: atv.Value.Bytes,
				Tag:   atv.Value.Tag,
			})
		}
	}
	return attrs, nil
}

// SerialNumberBytes returns the certificate serial number as minimal
// two's-complement big-endian content octets for an ASN.1 INTEGER.
// A leading zero octet is kept only when needed to keep a positive
// serial positive. Negative serials violate RFC 5280 4.1.2.2 but
// still parse, so they are encoded faithfully rather than silently
// turned positive.
func SerialNumberBytes(cert *x509.Certificate) []byte {
	n := cert.SerialNumber
	if n.Sign() < 0 {
		return negativeIntegerBytes(n)
	}

	b := n.Bytes()
	if len(b) == 0 {
		return []byte{0}
	}
	if b[0]&0x80 != 0 {
		b = append([]byte{0}, b...)
	}
	return b
}

// negativeIntegerBytes encodes a negative value as the shortest
// two's-complement octet string: 2^(8L) + n for the smallest L with
// n >= -2^(8L-1).
func negativeIntegerBytes(n *big.Int) []byte {
	mag := new(big.Int).Neg(n)

	length := (mag.BitLen() + 7) / 8
	if length == 0 {
		length = 1
	}
	limit := new(big.Int).Lsh(big.NewInt(1), uint(8*length-1))
	if mag.Cmp(limit) > 0 {
		length++
	}

	rep := new(big.Int).Lsh(big.NewInt(1), uint(8*length))
	rep.Add(rep, n)
	return rep.Bytes()
}

// DERBytes returns the certificate in DER form, without PEM framing.
func DERBytes(cert *x509.Certificate) []byte {
	return cert.Raw
}

// SHA256Thumbprint returns the lowercase hex SHA-256 digest of the
// certificate's DER encoding.
func SHA256Thumbprint(cert *x509.Certificate) string {
	sum := sha256.Sum256(cert.Raw)
	return hex.EncodeToString(sum[:])
}

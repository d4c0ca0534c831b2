package jades

import (
	"crypto/x509"

	"github.com/remiblancher/jades-signer/internal/der"
	"github.com/remiblancher/jades-signer/internal/x509util"
)

// BuildIssuerSerial assembles the RFC 5035 IssuerSerial value
// identifying a certificate by issuer name and serial number:
//
//	IssuerSerial ::= SEQUENCE {
//	    issuer       GeneralNames,
//	    serialNumber CertificateSerialNumber }
//
// The issuer is carried as the directoryName GeneralName variant,
// which is context tag [4] wrapping the RDN sequence. Identical
// certificate input always yields an identical tree.
func BuildIssuerSerial(cert *x509.Certificate) (der.Node, error) {
	attrs, err := x509util.IssuerAttributes(cert)
	if err != nil {
		return der.Node{}, err
	}

	rdns := make([]der.Node, 0, len(attrs))
	for _, attr := range attrs {
		oid, err := der.ObjectIdentifier(attr.Type.String())
		if err != nil {
			return der.Node{}, err
		}
		value := der.Raw(der.ClassUniversal, attr.Tag, false, attr.Value)
		rdns = append(rdns, der.Set(der.Sequence(oid, value)))
	}

	issuer := der.Sequence(rdns...)
	generalNames := der.Sequence(der.ContextSpecific(4, issuer))
	serial := der.Integer(x509util.SerialNumberBytes(cert))

	return der.Sequence(generalNames, serial), nil
}

// EncodeIssuerSerial returns the standard base64 of the DER-encoded
// IssuerSerial of a certificate. This is the value of the "kid"
// protected header member.
func EncodeIssuerSerial(cert *x509.Certificate) (string, error) {
	node, err := BuildIssuerSerial(cert)
	if err != nil {
		return "", err
	}
	encoded, err := der.Encode(node)
	if err != nil {
		return "", err
	}
	return der.EncodeBase64(encoded), nil
}

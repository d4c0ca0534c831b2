// Package x509util reads the X.509 certificate attributes needed to
// identify a signing certificate: issuer RDNs, serial number, DER
// encoding and digest.
package x509util

import (
	"encoding/asn1"
)

// Directory name attribute OIDs (RFC 4519, RFC 5280 Annex A).
var (
	OIDAttributeCommonName       = asn1.ObjectIdentifier{2, 5, 4, 3}
	OIDAttributeSurname          = asn1.ObjectIdentifier{2, 5, 4, 4}
	OIDAttributeSerialNumber     = asn1.ObjectIdentifier{2, 5, 4, 5}
	OIDAttributeCountry          = asn1.ObjectIdentifier{2, 5, 4, 6}
	OIDAttributeLocality         = asn1.ObjectIdentifier{2, 5, 4, 7}
	OIDAttributeProvince         = asn1.ObjectIdentifier{2, 5, 4, 8}
	OIDAttributeStreetAddress    = asn1.ObjectIdentifier{2, 5, 4, 9}
	OIDAttributeOrganization     = asn1.ObjectIdentifier{2, 5, 4, 10}
	OIDAttributeOrganizationUnit = asn1.ObjectIdentifier{2, 5, 4, 11}
	OIDAttributeTitle            = asn1.ObjectIdentifier{2, 5, 4, 12}
	OIDAttributePostalCode       = asn1.ObjectIdentifier{2, 5, 4, 17}
	OIDAttributeGivenName        = asn1.ObjectIdentifier{2, 5, 4, 42}
	OIDAttributePseudonym        = asn1.ObjectIdentifier{2, 5, 4, 65}
	OIDAttributeOrganizationID   = asn1.ObjectIdentifier{2, 5, 4, 97}

	OIDAttributeUserID          = asn1.ObjectIdentifier{0, 9, 2342, 19200300, 100, 1, 1}
	OIDAttributeDomainComponent = asn1.ObjectIdentifier{0, 9, 2342, 19200300, 100, 1, 25}

	OIDAttributeEmailAddress = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 1}
)

// attributeNames maps registered attribute OIDs to their short names.
var attributeNames = map[string]string{
	OIDAttributeCommonName.String():       "CN",
	OIDAttributeSurname.String():          "SN",
	OIDAttributeSerialNumber.String():     "SERIALNUMBER",
	OIDAttributeCountry.String():          "C",
	OIDAttributeLocality.String():         "L",
	OIDAttributeProvince.String():         "ST",
	OIDAttributeStreetAddress.String():    "STREET",
	OIDAttributeOrganization.String():     "O",
	OIDAttributeOrganizationUnit.String(): "OU",
	OIDAttributeTitle.String():            "T",
	OIDAttributePostalCode.String():       "POSTALCODE",
	OIDAttributeGivenName.String():        "GN",
	OIDAttributePseudonym.String():        "PSEUDONYM",
	OIDAttributeOrganizationID.String():   "ORGANIZATIONIDENTIFIER",
	OIDAttributeUserID.String():           "UID",
	OIDAttributeDomainComponent.String():  "DC",
	OIDAttributeEmailAddress.String():     "EMAILADDRESS",
}

// AttributeName returns the registered short name for a directory name
// attribute OID. The second return value reports whether the OID is
// registered.
func AttributeName(oid asn1.ObjectIdentifier) (string, bool) {
	name, ok := attributeNames[oid.String()]
	return name, ok
}

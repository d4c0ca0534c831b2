package keystore

import (
	"bytes"
	"crypto/x509"
)

// orderChain sorts certificates child-first, root-last over the
// issued-by relation: on every pass the first remaining certificate
// that issues no other remaining certificate is placed next.
//
// The relation is a partial order. Incomparable certificates keep
// their encounter order, which also terminates the loop on degenerate
// inputs (cross-signed pairs, unrelated certificates).
func orderChain(certs []*x509.Certificate) []*x509.Certificate {
	remaining := make([]*x509.Certificate, len(certs))
	copy(remaining, certs)

	ordered := make([]*x509.Certificate, 0, len(certs))
	for len(remaining) > 0 {
		next := 0
		for i, cert := range remaining {
			if !issuesAny(cert, remaining) {
				next = i
				break
			}
		}
		ordered = append(ordered, remaining[next])
		remaining = append(remaining[:next], remaining[next+1:]...)
	}
	return ordered
}

// issuesAny reports whether cert is the issuer of any other
// certificate in the set. A self-signed certificate does not count as
// issuing itself.
func issuesAny(cert *x509.Certificate, set []*x509.Certificate) bool {
	for _, other := range set {
		if other == cert {
			continue
		}
		if issuedBy(other, cert) {
			return true
		}
	}
	return false
}

// issuedBy reports whether child names issuer as its issuer. The
// comparison is over the raw DER names, no trust evaluation happens.
func issuedBy(child, issuer *x509.Certificate) bool {
	return bytes.Equal(child.RawIssuer, issuer.RawSubject)
}

// Package keystore extracts an ordered certificate chain and a
// signing-ready private key from a PKCS#12 (PFX) container.
package keystore

import (
	"crypto"
	"crypto/rsa"
	"crypto/x509"
	"errors"
	"fmt"

	"software.sslmate.com/src/go-pkcs12"
)

// Chain is an ordered certificate chain, leaf first, root last.
// It is built once per signing session and never mutated.
type Chain struct {
	certs []*x509.Certificate
}

// Certificates returns the chain elements in leaf-first order.
func (c *Chain) Certificates() []*x509.Certificate {
	return c.certs
}

// Len returns the number of certificates in the chain.
func (c *Chain) Len() int {
	return len(c.certs)
}

// Leaf returns the signing certificate: the unique chain element that
// issues no other element. The predicate is applied over the whole
// chain rather than trusting position zero, so a chain that failed to
// sort fully still yields the right certificate.
func (c *Chain) Leaf() *x509.Certificate {
	for _, cert := range c.certs {
		if !issuesAny(cert, c.certs) {
			return cert
		}
	}
	if len(c.certs) > 0 {
		return c.certs[0]
	}
	return nil
}

// PrivateKey holds the signing key for exactly one session. It must
// never be logged or serialized, and Destroy must run on every exit
// path once the signature is produced.
type PrivateKey struct {
	key   *rsa.PrivateKey
	pkcs8 []byte
}

// Signer returns the key as a crypto.Signer.
func (k *PrivateKey) Signer() crypto.Signer {
	return k.key
}

// PKCS8 returns the key in PKCS#8 DER form.
func (k *PrivateKey) PKCS8() []byte {
	return k.pkcs8
}

// Destroy zeroes the key material. The PrivateKey is unusable after.
func (k *PrivateKey) Destroy() {
	if k == nil {
		return
	}
	for i := range k.pkcs8 {
		k.pkcs8[i] = 0
	}
	k.pkcs8 = nil
	if k.key != nil {
		k.key.D.SetInt64(0)
		for _, p := range k.key.Primes {
			p.SetInt64(0)
		}
		k.key.Precomputed = rsa.PrecomputedValues{}
		k.key = nil
	}
}

// Extract parses a PFX blob with the given password and returns the
// ordered certificate chain and the private key. The input bytes are
// never mutated.
func Extract(pfxData []byte, password string) (*Chain, *PrivateKey, error) {
	if err := checkEnvelope(pfxData); err != nil {
		return nil, nil, err
	}

	key, leaf, caCerts, err := pkcs12.DecodeChain(pfxData, password)
	if err != nil {
		if errors.Is(err, pkcs12.ErrIncorrectPassword) {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidPassword, err)
		}
		// A truststore-only container parses fine but has no
		// shrouded key bag.
		if _, tsErr := pkcs12.DecodeTrustStore(pfxData, password); tsErr == nil {
			return nil, nil, ErrNoPrivateKey
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedContainer, err)
	}
	if key == nil {
		return nil, nil, ErrNoPrivateKey
	}

	certs := make([]*x509.Certificate, 0, 1+len(caCerts))
	certs = append(certs, leaf)
	certs = append(certs, caCerts...)
	chain := &Chain{certs: orderChain(certs)}

	pk, err := newPrivateKey(key)
	if err != nil {
		return nil, nil, err
	}
	return chain, pk, nil
}

// newPrivateKey converts the decoded key into its PKCS#8 signing form.
// Only RSA keys are supported.
func newPrivateKey(key interface{}) (*PrivateKey, error) {
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported key type %T", ErrKeyConversion, key)
	}
	pkcs8, err := x509.MarshalPKCS8PrivateKey(rsaKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyConversion, err)
	}
	return &PrivateKey{key: rsaKey, pkcs8: pkcs8}, nil
}

// Package der builds ASN.1 value trees and serializes them to
// canonical DER (ITU-T X.690 Distinguished Encoding Rules).
//
// Nodes are plain values with no knowledge of certificates or any
// higher-level structure. A tree is built bottom-up from the
// constructors in this package and consumed by Encode.
package der

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Class identifies the tag class of an ASN.1 node.
type Class int

// ASN.1 tag classes.
const (
	ClassUniversal       Class = 0
	ClassApplication     Class = 1
	ClassContextSpecific Class = 2
	ClassPrivate         Class = 3
)

// Universal type tags used by this package.
const (
	TagInteger          = 2
	TagOctetString      = 4
	TagObjectIdentifier = 6
	TagSequence         = 16
	TagSet              = 17
)

// ErrEncoding indicates a value that cannot be represented in DER,
// such as a malformed OID string or an overlong length field.
var ErrEncoding = errors.New("der: encoding error")

// Node is a tagged ASN.1 value. A primitive node carries Content;
// a constructed node carries Children. Nodes are immutable by
// convention: build once, encode, discard.
type Node struct {
	Class       Class
	Tag         int
	Constructed bool
	Content     []byte
	Children    []Node
}

// Sequence returns a constructed UNIVERSAL SEQUENCE node.
func Sequence(children ...Node) Node {
	return Node{Class: ClassUniversal, Tag: TagSequence, Constructed: true, Children: children}
}

// Set returns a constructed UNIVERSAL SET node.
func Set(children ...Node) Node {
	return Node{Class: ClassUniversal, Tag: TagSet, Constructed: true, Children: children}
}

// Integer returns a primitive INTEGER node. The content octets must
// already be in minimal two's-complement big-endian form.
func Integer(content []byte) Node {
	return Node{Class: ClassUniversal, Tag: TagInteger, Content: content}
}

// ContextSpecific returns a constructed context-specific node with the
// given tag number wrapping the children.
func ContextSpecific(tag int, children ...Node) Node {
	return Node{Class: ClassContextSpecific, Tag: tag, Constructed: true, Children: children}
}

// Raw returns a node with an explicit class, tag and raw content.
func Raw(class Class, tag int, constructed bool, content []byte) Node {
	return Node{Class: class, Tag: tag, Constructed: constructed, Content: content}
}

// ObjectIdentifier parses a dotted-decimal OID string into a primitive
// OBJECT IDENTIFIER node. It fails with ErrEncoding if the string is
// not a valid OID.
func ObjectIdentifier(oid string) (Node, error) {
	content, err := encodeOID(oid)
	if err != nil {
		return Node{}, err
	}
	return Node{Class: ClassUniversal, Tag: TagObjectIdentifier, Content: content}, nil
}

// encodeOID converts a dotted-decimal OID to its DER content octets.
func encodeOID(s string) ([]byte, error) {
	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: OID %q must have at least two arcs", ErrEncoding, s)
	}

	arcs := make([]uint64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: OID %q has invalid arc %q", ErrEncoding, s, p)
		}
		arcs[i] = v
	}

	// X.690 8.19: the first two arcs combine into one value, which
	// constrains arc 1 to 0..2 and arc 2 to 0..39 unless arc 1 is 2.
	if arcs[0] > 2 {
		return nil, fmt.Errorf("%w: OID %q first arc must be 0, 1 or 2", ErrEncoding, s)
	}
	if arcs[0] < 2 && arcs[1] >= 40 {
		return nil, fmt.Errorf("%w: OID %q second arc must be below 40", ErrEncoding, s)
	}

	out := appendBase128(nil, arcs[0]*40+arcs[1])
	for _, arc := range arcs[2:] {
		out = appendBase128(out, arc)
	}
	return out, nil
}

// appendBase128 appends v in big-endian base-128 with continuation bits.
func appendBase128(dst []byte, v uint64) []byte {
	n := 1
	for x := v >> 7; x > 0; x >>= 7 {
		n++
	}
	for i := n - 1; i >= 0; i-- {
		b := byte(v>>(uint(i)*7)) & 0x7f
		if i > 0 {
			b |= 0x80
		}
		dst = append(dst, b)
	}
	return dst
}

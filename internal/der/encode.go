package der

import (
	"encoding/base64"
	"fmt"
)

// maxTagNumber is the highest tag encodable in a single identifier
// octet. High-tag-number forms are never needed by this module.
const maxTagNumber = 30

// Encode serializes a node tree to canonical DER bytes. Lengths are
// definite and computed bottom-up from the children.
func Encode(n Node) ([]byte, error) {
	if n.Tag < 0 || n.Tag > maxTagNumber {
		return nil, fmt.Errorf("%w: tag number %d out of range", ErrEncoding, n.Tag)
	}

	content, err := encodeContent(n)
	if err != nil {
		return nil, err
	}

	identifier := byte(n.Class)<<6 | byte(n.Tag)
	if n.Constructed || len(n.Children) > 0 {
		identifier |= 0x20
	}

	length, err := encodeLength(len(content))
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 1+len(length)+len(content))
	out = append(out, identifier)
	out = append(out, length...)
	out = append(out, content...)
	return out, nil
}

// encodeContent returns the content octets: the concatenated encodings
// of the children for a constructed node, the raw content otherwise.
func encodeContent(n Node) ([]byte, error) {
	if len(n.Children) == 0 {
		return n.Content, nil
	}
	var content []byte
	for _, child := range n.Children {
		enc, err := Encode(child)
		if err != nil {
			return nil, err
		}
		content = append(content, enc...)
	}
	return content, nil
}

// encodeLength produces the definite-length octets for a content
// length, short form below 128, long form above.
func encodeLength(length int) ([]byte, error) {
	if length < 0 {
		return nil, fmt.Errorf("%w: negative content length", ErrEncoding)
	}
	if length < 0x80 {
		return []byte{byte(length)}, nil
	}

	var octets []byte
	for v := length; v > 0; v >>= 8 {
		octets = append([]byte{byte(v)}, octets...)
	}
	if len(octets) > 126 {
		return nil, fmt.Errorf("%w: content length overflows length field", ErrEncoding)
	}
	return append([]byte{0x80 | byte(len(octets))}, octets...), nil
}

// EncodeBase64 returns the standard base64 encoding of raw bytes.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

package dto

import "encoding/json"

// SignRequest asks the server to sign a payload with its configured
// keystore.
type SignRequest struct {
	// Payload is the content to sign.
	Payload BinaryData `json:"payload"`
}

// SignerInfo identifies the certificate a signature was made with.
type SignerInfo struct {
	Subject    string `json:"subject"`
	Issuer     string `json:"issuer"`
	Serial     string `json:"serial"`
	Thumbprint string `json:"thumbprint"` // hex SHA-256 over DER
}

// SignResponse carries the signed JWS object.
type SignResponse struct {
	// JWS is the General JSON Serialization object.
	JWS json.RawMessage `json:"jws"`

	// SigningTime is the sigT header value.
	SigningTime string `json:"signing_time"`

	// Signer describes the signing certificate.
	Signer SignerInfo `json:"signer"`

	// ChainLen is the number of certificates in x5c.
	ChainLen int `json:"chain_len"`
}

// VerifyRequest asks the server to verify a JWS object.
type VerifyRequest struct {
	// JWS is the General JSON Serialization object to check.
	JWS json.RawMessage `json:"jws"`
}

// VerifyResponse reports the verification outcome.
type VerifyResponse struct {
	Valid       bool   `json:"valid"`
	Signer      string `json:"signer,omitempty"`
	SigningTime string `json:"signing_time,omitempty"`
	ChainLen    int    `json:"chain_len,omitempty"`
	Reason      string `json:"reason,omitempty"` // set when invalid
}

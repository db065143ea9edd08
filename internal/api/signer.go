package api

import (
	"crypto/sha1" //nolint:gosec // the remote API defines its signature over SHA-1
	"encoding/base64"
	"encoding/hex"
	"math/big"
	"time"
)

const (
	// SignatureHeader carries the per-request authentication token.
	SignatureHeader = "X-Api-Signature"

	// DefaultUserAgent is hashed into every signature and sent as User-Agent.
	DefaultUserAgent = "Rackspace Management Interface"

	// TimestampLayout is yyyyMMddHHmmss.
	TimestampLayout = "20060102150405"
)

// Credentials identify the API caller. They are fixed for the lifetime of a client.
type Credentials struct {
	APIKey    string
	SecretKey string
}

// Signer computes X-Api-Signature header values.
//
// The signature is the SHA-1 hex digest of apiKey+userAgent+timestamp+secretKey,
// read back as an unsigned big integer and base64 encoded from its minimal
// big-endian bytes. A digest with leading zero bytes therefore encodes to fewer
// than 20 bytes.
type Signer struct {
	Credentials Credentials
	UserAgent   string
}

// NewSigner returns a signer using DefaultUserAgent.
func NewSigner(creds Credentials) Signer {
	return Signer{Credentials: creds, UserAgent: DefaultUserAgent}
}

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Digest returns the base64 signature component for timestamp.
func (s Signer) Digest(timestamp string) string {
	sum := sha1.Sum([]byte(s.Credentials.APIKey + s.userAgent() + timestamp + s.Credentials.SecretKey)) //nolint:gosec
	n, _ := new(big.Int).SetString(hex.EncodeToString(sum[:]), 16)
	return base64.StdEncoding.EncodeToString(n.Bytes())
}

// HeaderValue returns apiKey:timestamp:digest for an explicit timestamp.
func (s Signer) HeaderValue(timestamp string) string {
	return s.Credentials.APIKey + ":" + timestamp + ":" + s.Digest(timestamp)
}

// Sign returns the header value for the instant t.
func (s Signer) Sign(t time.Time) string {
	return s.HeaderValue(FormatTimestamp(t))
}

func (s Signer) userAgent() string {
	if s.UserAgent == "" {
		return DefaultUserAgent
	}
	return s.UserAgent
}

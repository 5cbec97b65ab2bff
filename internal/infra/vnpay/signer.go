package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"strings"
)

// Sign computes the HMAC-SHA512 of data keyed by secret and returns the
// lowercase hex digest. The primitive is fully deterministic: timestamps
// belong in the parameter set, never in here.
func Sign(secret, data string) string {
	h := hmac.New(sha512.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifySignature recomputes the digest for data and compares it to the
// provided one in constant time. Gateways are inconsistent about hex casing,
// so the provided digest is lowercased first. A mismatch is a plain false,
// not an error: the caller surfaces it as an authentication failure.
func VerifySignature(secret, data, provided string) bool {
	expected := Sign(secret, data)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(provided)))
}

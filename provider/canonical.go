package provider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// BuildCanonicalString concatenates the fields in the given order with no separator.
// Gateways sign this exact byte sequence, so callers own the field order.
func BuildCanonicalString(fields ...string) string {
	return strings.Join(fields, "")
}

// HMACSHA256 returns the raw HMAC-SHA256 of message under key
func HMACSHA256(key, message []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return mac.Sum(nil)
}

// SignBase64 returns base64(HMAC-SHA256(key, message))
func SignBase64(key, message string) string {
	return base64.StdEncoding.EncodeToString(HMACSHA256([]byte(key), []byte(message)))
}

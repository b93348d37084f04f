package provider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildCanonicalString(t *testing.T) {
	tests := []struct {
		name     string
		fields   []string
		expected string
	}{
		{"ordered_concat", []string{"123", "1.2.3.4", "OID1", "a@b.c", "100"}, "1231.2.3.4OID1a@b.c100"},
		{"empty_fields_kept", []string{"a", "", "b"}, "ab"},
		{"no_fields", nil, ""},
		{"whitespace_preserved", []string{" a", "b "}, " ab "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildCanonicalString(tt.fields...))
		})
	}
}

func TestBuildCanonicalString_OrderSensitive(t *testing.T) {
	a := BuildCanonicalString("merchant", "10.0.0.1", "OID", "x@y.z")
	b := BuildCanonicalString("merchant", "OID", "10.0.0.1", "x@y.z")
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, SignBase64("key", a), SignBase64("key", b))
}

func TestHMACSHA256_KnownVector(t *testing.T) {
	// RFC 4231 test case 2
	sum := HMACSHA256([]byte("Jefe"), []byte("what do ya want for nothing?"))
	assert.Equal(t, "5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843", hex.EncodeToString(sum))
}

func TestSignBase64(t *testing.T) {
	mac := hmac.New(sha256.New, []byte("merchant-key"))
	mac.Write([]byte("payloadsalt"))
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	assert.Equal(t, expected, SignBase64("merchant-key", "payloadsalt"))
	assert.Equal(t, SignBase64("k", "m"), SignBase64("k", "m"), "signing is deterministic")
}

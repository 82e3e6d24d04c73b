package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
)

const (
	// SaltSize is the number of random bytes prefixed to every secret.
	SaltSize = 16

	digestSize = sha256.Size
	secretSize = SaltSize + digestSize
)

// HashPassword returns base64(salt || sha256(salt || password)). The salt
// travels inside the secret, so nothing else has to be stored.
//
// A single SHA-256 pass has no work factor. The format is kept as-is so that
// already stored secrets continue to verify.
func HashPassword(password string) (string, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	digest := saltedDigest(salt, password)

	out := make([]byte, 0, secretSize)
	out = append(out, salt...)
	out = append(out, digest[:]...)

	return base64.StdEncoding.EncodeToString(out), nil
}

// VerifyPassword reports whether password matches a secret produced by
// HashPassword. Malformed secrets simply fail verification.
func VerifyPassword(password string, secret string) bool {
	raw, err := base64.StdEncoding.DecodeString(secret)
	if err != nil || len(raw) != secretSize {
		return false
	}

	expected := saltedDigest(raw[:SaltSize], password)
	return subtle.ConstantTimeCompare(expected[:], raw[SaltSize:]) == 1
}

func saltedDigest(salt []byte, password string) [digestSize]byte {
	buf := make([]byte, 0, len(salt)+len(password))
	buf = append(buf, salt...)
	buf = append(buf, password...)
	return sha256.Sum256(buf)
}

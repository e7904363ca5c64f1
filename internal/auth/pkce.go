package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// maxVerifierLen is the RFC 7636 upper bound on a code verifier.
const maxVerifierLen = 128

// GenerateVerifier returns a fresh PKCE code verifier: 96 random bytes,
// base64url without padding, which lands exactly on the 128-character
// ceiling.
func GenerateVerifier() (string, error) {
	buf := make([]byte, 96)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate code verifier: %w", err)
	}
	verifier := base64.RawURLEncoding.EncodeToString(buf)
	if len(verifier) > maxVerifierLen {
		verifier = verifier[:maxVerifierLen]
	}
	return verifier, nil
}

// Challenge derives the S256 code challenge for a verifier: SHA-256,
// base64url, padding stripped.
func Challenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
)

// newCodeVerifier generates a PKCE code verifier: 40 random bytes, base64url
// encoded, stripped down to the unreserved alphanumeric subset.
func newCodeVerifier() (string, error) {
	buf := make([]byte, 40)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate code verifier: %w", err)
	}
	encoded := base64.URLEncoding.EncodeToString(buf)

	var b strings.Builder
	for _, r := range encoded {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

// codeChallenge derives the S256 challenge: base64url(sha256(verifier)), unpadded.
func codeChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

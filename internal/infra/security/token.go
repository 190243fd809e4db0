package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const defaultTokenBytes = 32

// RandomTokenGenerator mints opaque session tokens from crypto/rand,
// URL-safe base64 without padding.
type RandomTokenGenerator struct {
	Size int
}

func (g RandomTokenGenerator) NewToken() (string, error) {
	size := g.Size
	if size <= 0 {
		size = defaultTokenBytes
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("security: token entropy: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

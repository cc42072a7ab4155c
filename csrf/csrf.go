package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// DefaultTokenBytes is the entropy of a generated token before encoding.
const DefaultTokenBytes = 32

// ErrTokenGeneration reports a CSPRNG failure.
var ErrTokenGeneration = errors.New("csrf token generation failed")

// Guard generates and validates double-submit tokens. The zero value is
// not usable; construct with [NewGuard].
type Guard struct {
	tokenBytes int
}

// NewGuard creates a Guard producing tokens of tokenBytes entropy.
// Values below DefaultTokenBytes are raised to it.
func NewGuard(tokenBytes int) *Guard {
	if tokenBytes < DefaultTokenBytes {
		tokenBytes = DefaultTokenBytes
	}
	return &Guard{tokenBytes: tokenBytes}
}

// Generate returns a new opaque token, URL-safe base64 encoded.
func (g *Guard) Generate() (string, error) {
	buf := make([]byte, g.tokenBytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Validate reports whether the client-supplied copy matches the
// cookie-delivered copy. Both must be non-empty and exactly equal.
func (g *Guard) Validate(supplied, cookie string) bool {
	if supplied == "" || cookie == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(supplied), []byte(cookie)) == 1
}

package token

import (
	"crypto/rand"
	"fmt"
)

// alphabet is the 62-symbol set used for the random suffix. It is URL- and
// header-safe without escaping.
const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// SecureToken is a freshly generated credential still holding its plaintext.
// It lives for a single issuance cycle: hash it, hand the plaintext to the
// caller once, and let it go. Keeping one around breaks the contract that a
// secret is disclosed exactly once.
type SecureToken struct {
	plaintext string
}

// Generate draws a new token from crypto/rand.
//
// The suffix is sampled uniformly over the alphabet via rejection sampling,
// so no symbol is favored. If the system entropy source fails, Generate
// returns the error as-is; callers must abort issuance rather than retry or
// fall back to a weaker source, because a failing OS RNG indicates a deeper
// system fault.
func Generate() (*SecureToken, error) {
	suffix, err := secureAlphanumeric(SecretLength)
	if err != nil {
		return nil, err
	}

	return &SecureToken{plaintext: Prefix + suffix}, nil
}

// Plaintext returns the secret to disclose to the owner, exactly once.
func (t *SecureToken) Plaintext() string {
	return t.plaintext
}

// Hashed returns the persistable form of this token.
func (t *SecureToken) Hashed() HashedToken {
	return Digest(t.plaintext)
}

func secureAlphanumeric(n int) (string, error) {
	out := make([]byte, 0, n)

	// Accept only bytes below the largest multiple of len(alphabet) so the
	// modulo keeps the distribution uniform.
	const limit = byte(256 - 256%len(alphabet))

	buf := make([]byte, n)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("token: read entropy: %w", err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == n {
				break
			}
		}
	}

	return string(out), nil
}

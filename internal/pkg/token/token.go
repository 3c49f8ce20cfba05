package token

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Prefix namespaces every credential this registry issues. It lets the
// authentication layer discard foreign strings before hashing them, and it
// leaves room for additional credential classes later on.
//
// NEVER CHANGE THE PREFIX OF EXISTING TOKENS. Stored digests cover the
// prefixed plaintext, so changing it implicitly revokes every outstanding
// token in production.
const Prefix = "cio"

// SecretLength is the number of random characters following the prefix.
const SecretLength = 32

// DigestSize is the exact width of the hashed form, and of the BYTEA column
// that stores it.
const DigestSize = sha256.Size

// ErrMalformedDigest is returned when a stored value does not have the
// expected digest width. It signals column corruption or a digest written by
// an incompatible hash scheme, never a normal miss.
var ErrMalformedDigest = errors.New("token: stored digest is not exactly 32 bytes")

// HashedToken is the persisted form of a credential: the SHA-256 digest of
// the full plaintext, prefix included. The zero value matches no token.
//
// No salt is involved. The plaintext already carries ~190 bits of entropy,
// so input uniqueness makes per-credential salts unnecessary and keeps the
// digest usable as an equality-lookup key.
type HashedToken struct {
	sha256 [DigestSize]byte
}

// Digest computes the hashed form of a plaintext. Identical input always
// yields an identical digest; that property is what the store's equality
// lookup relies on.
func Digest(plaintext string) HashedToken {
	return HashedToken{sha256: sha256.Sum256([]byte(plaintext))}
}

// Parse recognizes a candidate credential taken from an inbound request.
//
// It reports false for any string that does not start with Prefix, without
// spending a hash computation on it. This is recognition, not verification:
// a true result only says the input belongs to this credential class, and
// actual validity is decided by looking the digest up in the store.
func Parse(plaintext string) (HashedToken, bool) {
	if !strings.HasPrefix(plaintext, Prefix) {
		return HashedToken{}, false
	}
	return Digest(plaintext), true
}

// FromBytes reconstructs a HashedToken from a stored column value.
//
// Anything other than exactly DigestSize bytes fails with
// ErrMalformedDigest; a short or long value is never truncated or padded.
func FromBytes(b []byte) (HashedToken, error) {
	if len(b) != DigestSize {
		return HashedToken{}, fmt.Errorf("%w: got %d", ErrMalformedDigest, len(b))
	}

	var t HashedToken
	copy(t.sha256[:], b)
	return t, nil
}

// Bytes returns the raw digest for writing into the storage column.
func (t HashedToken) Bytes() []byte {
	out := make([]byte, DigestSize)
	copy(out, t.sha256[:])
	return out
}

// Equal compares two digests in constant time.
func (t HashedToken) Equal(other HashedToken) bool {
	return subtle.ConstantTimeCompare(t.sha256[:], other.sha256[:]) == 1
}

// String renders a fixed placeholder. Digest bytes never appear in logs or
// debug output: combined with a known plaintext shape they could still aid
// an offline attack.
func (t HashedToken) String() string {
	return "HashedToken"
}

// Format implements fmt.Formatter so that every verb, including %x, %v,
// %+v and %#v, renders the placeholder instead of the digest.
func (t HashedToken) Format(f fmt.State, _ rune) {
	io.WriteString(f, "HashedToken") //nolint:errcheck // best-effort formatting
}

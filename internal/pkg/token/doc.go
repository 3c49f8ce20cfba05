// Package token implements the opaque bearer credentials used to
// authenticate registry API calls.
//
// A token exists in exactly two forms. The plaintext form is shown to its
// owner once, at creation time, and is never stored. The hashed form is the
// SHA-256 digest of the full plaintext and is the only form that may cross
// into persistent storage. The mapping is strictly one-way: a stored digest
// can be compared against, never decoded.
//
// Every function in this package is pure and safe for concurrent use; the
// only side effect anywhere is the generator's read from crypto/rand.
package token

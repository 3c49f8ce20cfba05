package token

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateShape(t *testing.T) {
	for range 50 {
		tok, err := Generate()
		require.NoError(t, err)

		plain := tok.Plaintext()
		assert.True(t, strings.HasPrefix(plain, Prefix))
		assert.Len(t, plain, len(Prefix)+SecretLength)

		for _, r := range plain[len(Prefix):] {
			assert.Contains(t, alphabet, string(r))
		}
	}
}

func TestGenerateAndParseAgree(t *testing.T) {
	tok, err := Generate()
	require.NoError(t, err)

	want := sha256.Sum256([]byte(tok.Plaintext()))
	assert.Equal(t, want[:], tok.Hashed().Bytes())

	parsed, ok := Parse(tok.Plaintext())
	require.True(t, ok, "failed to parse back the token")
	assert.True(t, parsed.Equal(tok.Hashed()))
	assert.Equal(t, tok.Hashed().Bytes(), parsed.Bytes())
}

func TestDigestDeterministic(t *testing.T) {
	assert.Equal(t, Digest("cioabc").Bytes(), Digest("cioabc").Bytes())
	assert.NotEqual(t, Digest("cioabc").Bytes(), Digest("cioabd").Bytes())

	seen := make(map[string]struct{})
	for range 200 {
		tok, err := Generate()
		require.NoError(t, err)

		k := hex.EncodeToString(tok.Hashed().Bytes())
		_, dup := seen[k]
		require.False(t, dup, "digest collision")
		seen[k] = struct{}{}
	}
}

func TestParseRejectsForeignInput(t *testing.T) {
	for _, in := range []string{"", "nokind", "wrong-prefix-abc", "CIOuppercase", "ci", "bearer cio"} {
		_, ok := Parse(in)
		assert.False(t, ok, "input %q must not be recognized", in)
	}
}

func TestParseAcceptsPrefixOnly(t *testing.T) {
	// Recognition is only about the prefix; validity is the store's problem.
	got, ok := Parse(Prefix)
	require.True(t, ok)
	assert.True(t, got.Equal(Digest(Prefix)))
}

func TestFromBytesWidthCheck(t *testing.T) {
	valid := Digest("cio" + strings.Repeat("a", SecretLength))

	got, err := FromBytes(valid.Bytes())
	require.NoError(t, err)
	assert.True(t, got.Equal(valid))

	for _, n := range []int{0, 1, 31, 33, 64} {
		_, err := FromBytes(make([]byte, n))
		assert.ErrorIs(t, err, ErrMalformedDigest, "width %d must be rejected", n)
	}
}

func TestRenderingNeverLeaks(t *testing.T) {
	tok, err := Generate()
	require.NoError(t, err)

	hashed := tok.Hashed()
	hexDigest := hex.EncodeToString(hashed.Bytes())

	for _, rendered := range []string{
		fmt.Sprint(hashed),
		fmt.Sprintf("%v", hashed),
		fmt.Sprintf("%+v", hashed),
		fmt.Sprintf("%#v", hashed),
		fmt.Sprintf("%s", hashed),
		fmt.Sprintf("%x", hashed),
		fmt.Sprintf("%q", hashed),
		hashed.String(),
	} {
		assert.Equal(t, "HashedToken", rendered)
		assert.NotContains(t, rendered, hexDigest)
		assert.NotContains(t, rendered, tok.Plaintext())
	}
}

func TestEndToEndLookupScenario(t *testing.T) {
	// Issuance: generate, keep only the hashed form.
	tok, err := Generate()
	require.NoError(t, err)
	stored := tok.Hashed().Bytes() // what the BYTEA column holds

	// Verification: a request arrives carrying the plaintext.
	candidate, ok := Parse(tok.Plaintext())
	require.True(t, ok)

	fromStore, err := FromBytes(stored)
	require.NoError(t, err)
	assert.True(t, candidate.Equal(fromStore), "lookup must succeed")

	// A foreign credential never reaches hashing or the store.
	_, ok = Parse("wrong-prefix-abc")
	assert.False(t, ok)
}

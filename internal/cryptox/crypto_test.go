package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	h := HashPassword("secret1")
	require.True(t, IsArgon2Hash(h))
	assert.Len(t, strings.Split(h, "$"), 6)

	ok, err := VerifyPassword(h, "secret1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(h, "secret2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_UniqueSalt(t *testing.T) {
	assert.NotEqual(t, HashPassword("same"), HashPassword("same"))
}

func TestVerifyPassword_Malformed(t *testing.T) {
	for _, enc := range []string{
		"",
		"plain",
		"$argon2i$v=19$m=65536,t=1,p=4$c2FsdA$a2V5",
		"$argon2id$v=1$m=65536,t=1,p=4$c2FsdA$a2V5",
		"$argon2id$v=19$bad$c2FsdA$a2V5",
		"$argon2id$v=19$m=65536,t=1,p=4$!!!$a2V5",
		"$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$",
	} {
		_, err := VerifyPassword(enc, "x")
		assert.ErrorIs(t, err, ErrMalformedHash, enc)
	}
}

func TestLegacyHash(t *testing.T) {
	// sha256("abc")
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", LegacyHash("ab", "c"))

	h := LegacyHash("secret", "pepper")
	assert.True(t, VerifyLegacy(h, "secret", "pepper"))
	assert.True(t, VerifyLegacy(strings.ToUpper(h), "secret", "pepper"))
	assert.False(t, VerifyLegacy(h, "secret", "salt"))
	assert.False(t, IsArgon2Hash(h))
}

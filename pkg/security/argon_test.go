package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArgon() *ArgonHash {
	return &ArgonHash{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

func TestArgonRoundTrip(t *testing.T) {
	a := testArgon()

	hash, err := a.GenerateFromPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"))

	ok, err := a.VerifyPasswd("correct horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.VerifyPasswd("wrong horse", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgonSaltsDiffer(t *testing.T) {
	a := testArgon()

	h1, err := a.GenerateFromPassword("same password")
	require.NoError(t, err)
	h2, err := a.GenerateFromPassword("same password")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestArgonParamsComeFromHash(t *testing.T) {
	hash, err := testArgon().GenerateFromPassword("correct horse")
	require.NoError(t, err)

	// A verifier configured differently still reads the stored parameters
	ok, err := New().VerifyPasswd("correct horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestArgonInvalidHash(t *testing.T) {
	a := testArgon()

	for _, h := range []string{
		"",
		"plain",
		"$bcrypt$v=19$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$garbage$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5",
	} {
		_, err := a.VerifyPasswd("x", h)
		assert.ErrorIs(t, err, ErrInvalidHash, h)
	}
}

package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap parameters keep the suite fast; production uses DefaultArgon2Params
var testArgon2Params = Argon2Params{Memory: 1024, Iterations: 1, Threads: 1, SaltLen: 16, KeyLen: 32}

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	h := NewPasswordHasher(testArgon2Params)

	hash, err := h.Hash("correct horse battery")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"))

	ok, err := h.Verify(hash, "correct horse battery")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(hash, "wrong password")
	require.NoError(t, err, "a mismatch is not an error")
	assert.False(t, ok)
}

func TestPasswordHasher_SaltsDiffer(t *testing.T) {
	h := NewPasswordHasher(testArgon2Params)

	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestPasswordHasher_DefaultParamsEncoding(t *testing.T) {
	assert.Equal(t, uint32(64*1024), DefaultArgon2Params.Memory)
	assert.Equal(t, uint32(3), DefaultArgon2Params.Iterations)
	assert.Equal(t, uint8(1), DefaultArgon2Params.Threads)
}

func TestPasswordHasher_VerifyMalformed(t *testing.T) {
	h := NewPasswordHasher(testArgon2Params)

	for _, hash := range []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$aGFzaA",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=3,p=0$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=0,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=0,t=3,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=4294967295,t=3,p=1$c2FsdA$aGFzaA",
	} {
		var ok bool
		var err error
		require.NotPanics(t, func() { ok, err = h.Verify(hash, "pw") }, "hash %q", hash)
		assert.ErrorIs(t, err, ErrMalformedHash, "hash %q", hash)
		assert.False(t, ok)
	}
}

package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_HashAndVerify(t *testing.T) {
	h := NewHasher(MinCost)

	digest, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", digest)
	assert.True(t, strings.HasPrefix(digest, "$2"))

	assert.True(t, h.Verify("secret1", digest))
	assert.False(t, h.Verify("secret2", digest))
	assert.False(t, h.Verify("secret1", ""))
}

func TestHasher_RejectsEmptyInput(t *testing.T) {
	h := NewHasher(MinCost)

	_, err := h.Hash("")
	assert.Error(t, err)
}

func TestHasher_EnforcesCostFloor(t *testing.T) {
	h := NewHasher(4)

	digest, err := h.Hash("password")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cost, MinCost)
}

func TestFingerprint(t *testing.T) {
	fp := Fingerprint("raw-reset-token")

	assert.Len(t, fp, 64)
	assert.Equal(t, fp, Fingerprint("raw-reset-token"))
	assert.NotEqual(t, fp, Fingerprint("other-token"))

	assert.True(t, VerifyFingerprint("raw-reset-token", fp))
	assert.False(t, VerifyFingerprint("other-token", fp))
	assert.False(t, VerifyFingerprint("raw-reset-token", ""))
}

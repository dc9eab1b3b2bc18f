package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct-horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", hash)

	assert.True(t, Verify("correct-horse", hash))
	assert.False(t, Verify("wrong-horse", hash))
	assert.False(t, Verify("", hash))
	assert.False(t, Verify("correct-horse", ""))
}

func TestHashRejectsShortPasswords(t *testing.T) {
	_, err := Hash("short")
	assert.ErrorIs(t, err, ErrTooShort)
}

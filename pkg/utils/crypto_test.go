package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecureCompare(t *testing.T) {
	t.Run("Empty secret disables authentication", func(t *testing.T) {
		assert.True(t, SecureCompare("", ""))
		assert.True(t, SecureCompare("anything", ""))
	})

	t.Run("Matching token passes", func(t *testing.T) {
		assert.True(t, SecureCompare("secret", "secret"))
	})

	t.Run("Wrong token fails", func(t *testing.T) {
		assert.False(t, SecureCompare("wrong", "secret"))
	})

	t.Run("Mismatched lengths fail without panicking", func(t *testing.T) {
		assert.False(t, SecureCompare("s", "secret"))
		assert.False(t, SecureCompare("secret-and-then-some", "secret"))
		assert.False(t, SecureCompare("", "secret"))
	})
}

func TestGenerateID(t *testing.T) {
	id1, err := GenerateID()
	require.NoError(t, err)
	assert.Len(t, id1, 32)

	id2, err := GenerateID()
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)
}

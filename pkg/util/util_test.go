package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "secret123", hash)

	assert.True(t, CheckPassword("secret123", hash))
	assert.False(t, CheckPassword("wrong", hash))
	assert.False(t, CheckPassword("secret123", "not-a-hash"))
}

func TestGenerateSessionToken(t *testing.T) {
	t.Parallel()

	a := GenerateSessionToken()
	b := GenerateSessionToken()

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestGenerateConversationID(t *testing.T) {
	t.Parallel()

	id := GenerateConversationID()
	assert.Len(t, id, 32)
	assert.NotContains(t, id, "-")
	assert.NotEqual(t, id, GenerateConversationID())
}

func TestHashToken(t *testing.T) {
	t.Parallel()

	// 同一输入的摘要稳定
	assert.Equal(t, HashToken("some-token"), HashToken("some-token"))
	assert.NotEqual(t, HashToken("some-token"), HashToken("other-token"))
	assert.Len(t, HashToken("some-token"), 64)
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "abcdefg...", TruncateString("abcdefghijk", 10))
	assert.Equal(t, "ab", TruncateString("abcdef", 2))
}

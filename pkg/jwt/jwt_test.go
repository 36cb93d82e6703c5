package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()

	svc := NewJWTService("test-secret-key-of-sufficient-size", time.Hour)

	token, err := svc.GenerateToken(42, "alice@example.com", "admin", "Alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)

	assert.EqualValues(t, 42, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, "coredex", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestValidateExpiredToken(t *testing.T) {
	t.Parallel()

	svc := NewJWTService("test-secret-key-of-sufficient-size", -time.Minute)

	token, err := svc.GenerateToken(1, "a@b.c", "user", "A")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTamperedToken(t *testing.T) {
	t.Parallel()

	svc := NewJWTService("test-secret-key-of-sufficient-size", time.Hour)
	other := NewJWTService("another-secret-key-entirely-here", time.Hour)

	token, err := other.GenerateToken(1, "a@b.c", "user", "A")
	require.NoError(t, err)

	// 其他密钥签出来的令牌不被接受
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// 随便什么字符串也不行
	_, err = svc.ValidateToken("definitely.not.ajwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

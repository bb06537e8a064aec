package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, expiresAt, err := GenerateToken(42, "zhangsan", false)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// 默认有效期 24 小时
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expiresAt, time.Minute)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserId)
	assert.Equal(t, "zhangsan", claims.Username)
	assert.Equal(t, "access", claims.Type)
	assert.Equal(t, Issuer, claims.Issuer)
	assert.Contains(t, claims.Audience, Audience)
}

func TestGenerateTokenRemember(t *testing.T) {
	_, expiresAt, err := GenerateToken(42, "zhangsan", true)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), expiresAt, time.Minute)
}

func TestParseTokenInvalid(t *testing.T) {
	_, err := ParseToken("not-a-token")
	assert.Error(t, err)

	// 换密钥后旧 Token 失效
	token, _, err := GenerateToken(42, "zhangsan", false)
	require.NoError(t, err)

	SetSecret("another-secret")
	defer SetSecret("market-service-jwt-secret-key-2024")

	_, err = ParseToken(token)
	assert.Error(t, err)
}

package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// 默认密钥，生产环境通过配置文件或 JWT_SECRET 覆盖
var jwtKey = []byte("market-service-jwt-secret-key-2024")

const (
	Issuer   = "market-service"
	Audience = "market-client"
)

// SetSecret 由启动流程注入签名密钥
func SetSecret(secret string) {
	if secret != "" {
		jwtKey = []byte(secret)
	}
}

type Claims struct {
	UserId   int64  `json:"userId"`
	Username string `json:"username"`
	Type     string `json:"type"` // 目前固定为 access
	jwt.RegisteredClaims
}

// GenerateToken 生成 Token
// remember 为 true 时有效期 30 天，否则 24 小时
func GenerateToken(userId int64, username string, remember bool) (string, time.Time, error) {
	ttl := 24 * time.Hour
	if remember {
		ttl = 30 * 24 * time.Hour
	}
	expiresAt := time.Now().Add(ttl)

	claims := &Claims{
		UserId:   userId,
		Username: username,
		Type:     "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{Audience},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtKey)
	return signed, expiresAt, err
}

// ParseToken 解析 Token
func ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtKey, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

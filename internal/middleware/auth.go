package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/RCodeTree/market-service/internal/service"
	"github.com/RCodeTree/market-service/pkg/jwt"
	"github.com/RCodeTree/market-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func extractToken(ctx *gin.Context) string {
	auth := ctx.GetHeader("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Auth 登录鉴权
// 校验 Bearer Token，并检查它是否已被登出拉黑
func Auth(rdb *redis.Client) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := extractToken(ctx)
		if token == "" {
			response.Error(ctx, http.StatusUnauthorized, "未登录或登录已过期")
			ctx.Abort()
			return
		}

		claims, err := jwt.ParseToken(token)
		if err != nil {
			response.Error(ctx, http.StatusUnauthorized, "未登录或登录已过期")
			ctx.Abort()
			return
		}

		if rdb != nil {
			exists, err := rdb.Exists(ctx.Request.Context(), service.TokenBlacklistKey(token)).Result()
			if err != nil {
				// Redis 故障时放行，不让鉴权依赖缓存可用性
				log.Printf("查询 Token 黑名单失败: %v", err)
			} else if exists > 0 {
				response.Error(ctx, http.StatusUnauthorized, "登录已失效，请重新登录")
				ctx.Abort()
				return
			}
		}

		ctx.Set("userId", claims.UserId)
		ctx.Set("username", claims.Username)
		ctx.Set("claims", claims)
		ctx.Set("token", token)
		ctx.Next()
	}
}

// OptionalAuth 可选鉴权
// Token 有效则注入用户信息，无效或缺失时按游客处理
func OptionalAuth(rdb *redis.Client) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := extractToken(ctx)
		if token == "" {
			ctx.Next()
			return
		}

		claims, err := jwt.ParseToken(token)
		if err != nil {
			ctx.Next()
			return
		}

		if rdb != nil {
			exists, err := rdb.Exists(ctx.Request.Context(), service.TokenBlacklistKey(token)).Result()
			if err == nil && exists > 0 {
				ctx.Next()
				return
			}
		}

		ctx.Set("userId", claims.UserId)
		ctx.Set("username", claims.Username)
		ctx.Set("claims", claims)
		ctx.Set("token", token)
		ctx.Next()
	}
}

// UserID 从上下文里取当前登录用户 ID
func UserID(ctx *gin.Context) (int64, bool) {
	v, ok := ctx.Get("userId")
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

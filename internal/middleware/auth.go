// Package middleware 提供 HTTP 请求的中间件
// 包括 JWT 认证、CORS 跨域、日志记录等
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"coredex-server/internal/cache"
	"coredex-server/internal/model"
	"coredex-server/pkg/jwt"
	"coredex-server/pkg/response"
	"coredex-server/pkg/util"
)

// identityKey 上下文中存放调用方身份的键
const identityKey = "identity"

// tokenKey 上下文中存放原始令牌的键，登出时用来计算黑名单哈希
const tokenKey = "token"

// Identity 一次请求的调用方身份，来自验证通过的 JWT
type Identity struct {
	UserID int64
	Email  string
	Role   string
	Name   string
}

// IsAdmin 判断调用方是否为管理员
func (i Identity) IsAdmin() bool {
	return i.Role == model.RoleAdmin
}

// extractToken 从请求中取出令牌
// 优先读 Authorization 头（允许带 Bearer 前缀），
// 其次读 token 查询参数（浏览器原生 EventSource/WebSocket 无法自定义请求头）
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return c.Query("token")
	}
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return authHeader
}

// resolveIdentity 验证令牌并解析身份
// 返回 false 表示令牌缺失、无效或已被拉黑
func resolveIdentity(c *gin.Context, jwtService *jwt.JWTService, redisCache *cache.RedisCache) (Identity, string, bool) {
	tokenString := extractToken(c)
	if tokenString == "" {
		return Identity{}, "", false
	}

	claims, err := jwtService.ValidateToken(tokenString)
	if err != nil {
		return Identity{}, "", false
	}

	// 登出过的令牌在黑名单里，视为无效
	if redisCache.IsTokenBlacklisted(c.Request.Context(), util.HashToken(tokenString)) {
		return Identity{}, "", false
	}

	return Identity{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
		Name:   claims.Name,
	}, tokenString, true
}

// AuthMiddleware 创建 JWT 认证中间件
// 验证请求携带的令牌，并将调用方身份存入上下文
// 参数:
//   - jwtService: JWT 服务实例，用于解析和验证 Token
//   - redisCache: Redis 缓存实例，用于检查 Token 黑名单
//
// 返回:
//   - gin.HandlerFunc: Gin 中间件函数
func AuthMiddleware(jwtService *jwt.JWTService, redisCache *cache.RedisCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, tokenString, ok := resolveIdentity(c, jwtService, redisCache)
		if !ok {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		c.Set(identityKey, identity)
		c.Set(tokenKey, tokenString)
		c.Next()
	}
}

// OptionalAuthMiddleware 创建可选的 JWT 认证中间件
// 与 AuthMiddleware 类似，但不强制要求认证：
// 令牌有效时身份进入上下文，缺失或无效时按匿名请求继续处理
func OptionalAuthMiddleware(jwtService *jwt.JWTService, redisCache *cache.RedisCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity, tokenString, ok := resolveIdentity(c, jwtService, redisCache); ok {
			c.Set(identityKey, identity)
			c.Set(tokenKey, tokenString)
		}
		c.Next()
	}
}

// AdminMiddleware 创建管理员权限中间件
// 必须在 AuthMiddleware 之后使用
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok || !identity.IsAdmin() {
			response.Forbidden(c, "需要管理员权限")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetIdentity 从上下文取出调用方身份
// 匿名请求返回 (Identity{}, false)
func GetIdentity(c *gin.Context) (Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return Identity{}, false
	}
	identity, ok := value.(Identity)
	return identity, ok
}

// GetToken 从上下文取出原始令牌
func GetToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}

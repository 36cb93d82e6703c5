// Package jwt 提供 JWT Token 的生成和验证功能
// JWT (JSON Web Token) 是每个请求上"调用者是谁"的唯一判定依据
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// 定义错误类型
var (
	ErrInvalidToken = errors.New("invalid token")     // Token 无效
	ErrExpiredToken = errors.New("token has expired") // Token 已过期
)

// UserClaims 用户 JWT 的声明（Payload）
// 携带用户身份和角色，签发后独立于 user_sessions 表验证
type UserClaims struct {
	UserID               int64  `json:"user_id"` // 用户 ID
	Email                string `json:"email"`   // 邮箱
	Role                 string `json:"role"`    // 角色：user / admin
	Name                 string `json:"name"`    // 昵称
	jwt.RegisteredClaims        // 标准声明（过期时间等）
}

// JWTService 提供 JWT 相关操作
type JWTService struct {
	secret []byte        // JWT 签名密钥
	expire time.Duration // Token 过期时间
}

// NewJWTService 创建 JWTService 实例
// 参数:
//   - secret: JWT 签名密钥，至少 32 个字符
//   - expire: Token 过期时间（默认配置为 7 天）
//
// 返回:
//   - *JWTService: JWT 服务实例
func NewJWTService(secret string, expire time.Duration) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		expire: expire,
	}
}

// GenerateToken 生成用户 Token
// 参数:
//   - userID: 用户 ID
//   - email: 邮箱
//   - role: 角色
//   - name: 昵称
//
// 返回:
//   - string: JWT Token 字符串
//   - error: 生成错误
func (s *JWTService) GenerateToken(userID int64, email, role, name string) (string, error) {
	claims := UserClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			// ExpiresAt: Token 过期时间
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.expire)),
			// IssuedAt: Token 签发时间
			IssuedAt: jwt.NewNumericDate(time.Now()),
			// NotBefore: Token 生效时间（设为现在）
			NotBefore: jwt.NewNumericDate(time.Now()),
			// Issuer: 签发者标识
			Issuer: "coredex",
		},
	}

	// jwt.SigningMethodHS256: 使用 HMAC SHA256 算法签名
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken 验证用户 Token
// 参数:
//   - tokenString: JWT Token 字符串
//
// 返回:
//   - *UserClaims: Token 中的声明信息
//   - error: 验证错误（无效或已过期）
func (s *JWTService) ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		// 验证签名算法，确保使用的是我们期望的 HMAC
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})

	if err != nil {
		// 检查是否是过期错误
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// GetExpire 获取 Token 过期时间
func (s *JWTService) GetExpire() time.Duration {
	return s.expire
}

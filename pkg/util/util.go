// Package util 提供通用工具函数
package util

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword 使用 bcrypt 哈希密码
// bcrypt 是一种专门为密码哈希设计的算法，自动添加盐值
// 参数:
//   - password: 明文密码
//
// 返回:
//   - string: 密码哈希值
//   - error: 哈希错误
func HashPassword(password string) (string, error) {
	// bcrypt.DefaultCost 是默认的计算成本（10）
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword 验证密码是否匹配
// 比较由 bcrypt 完成，耗时与输入无关
// 参数:
//   - password: 用户输入的明文密码
//   - hash: 数据库中存储的哈希值
//
// 返回:
//   - bool: 是否匹配
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateSessionToken 生成不透明的会话令牌
// 64 字符的随机十六进制字符串
// 返回:
//   - string: 会话令牌
func GenerateSessionToken() string {
	// 32 字节 = 64 个十六进制字符
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// GenerateConversationID 生成对话分组键
// 客户端未提供 session_id 时使用
// 返回:
//   - string: UUID 字符串（不含连字符）
func GenerateConversationID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// HashToken 计算令牌的 SHA256 摘要
// 黑名单里只存摘要，避免完整令牌落到 Redis
// 参数:
//   - token: JWT 令牌原文
//
// 返回:
//   - string: 十六进制摘要
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// NormalizeEmail 归一化邮箱地址
// 去除首尾空白并统一转为小写，写库和查询前都要先做这一步
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// TruncateString 截断字符串到指定长度
// 如果字符串超过指定长度，截断并添加 "..."
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// Int64Ptr 返回 int64 的指针
// 用于可选字段的赋值
func Int64Ptr(i int64) *int64 {
	return &i
}

// Package model 定义了与数据库表对应的数据结构
package model

import (
	"time"
)

// UserSession 会话模型
// 对应数据库表 user_sessions
// 登录/注册时生成一条不透明的会话令牌记录
// 注意：API 认证依赖的是 JWT，而不是这张表；
// 会话行只做登录记录和后台管理，写入失败不影响登录流程
type UserSession struct {
	// ID 会话唯一标识，自增主键
	ID int64 `gorm:"primaryKey" json:"id"`

	// UserID 所属用户ID，外键关联 users.id
	UserID int64 `gorm:"index;not null" json:"user_id"`

	// SessionToken 不透明的会话令牌，64 位十六进制字符串，全局唯一
	SessionToken string `gorm:"size:128;uniqueIndex;not null" json:"session_token"`

	// CreatedAt 创建时间
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// ExpiresAt 过期时间
	ExpiresAt time.Time `json:"expires_at"`
}

// TableName 指定表名
func (UserSession) TableName() string {
	return "user_sessions"
}

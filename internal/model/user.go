// Package model 定义了与数据库表对应的数据结构
package model

import (
	"time"
)

// 用户角色常量
const (
	RoleUser  = "user"  // 普通用户
	RoleAdmin = "admin" // 管理员
)

// User 用户模型
// 对应数据库表 users
// 存储用户的基本信息，包括认证凭据和角色
type User struct {
	// ID 用户唯一标识，自增主键
	ID int64 `gorm:"primaryKey" json:"id"`

	// Name 用户昵称
	Name string `gorm:"size:100;not null" json:"name"`

	// Email 用户邮箱，用于登录，全局唯一
	// 写入前统一转为小写
	Email string `gorm:"size:100;uniqueIndex;not null" json:"email"`

	// PasswordHash 密码的 bcrypt 哈希值
	// 永远不要存储明文密码！
	PasswordHash string `gorm:"size:255;not null" json:"-"` // json:"-" 表示序列化时忽略此字段

	// Role 用户角色：user / admin
	Role string `gorm:"size:20;default:user;not null" json:"role"`

	// CreatedAt 创建时间，由 GORM 自动填充
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// LastLogin 最近一次登录时间
	// 使用指针类型表示可以为 NULL（从未登录过）
	LastLogin *time.Time `json:"last_login,omitempty"`

	// IsActive 账号是否启用
	IsActive bool `gorm:"default:true" json:"is_active"`
}

// TableName 指定表名
// GORM 会使用这个方法返回的表名，而不是默认的复数形式
func (User) TableName() string {
	return "users"
}

// IsAdmin 判断用户是否是管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

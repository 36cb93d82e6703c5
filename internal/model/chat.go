// Package model 定义了与数据库表对应的数据结构
package model

import (
	"time"
)

// ChatTurn 聊天记录模型
// 对应数据库表 chat_history
// 一次聊天调用写入一条（用户消息 + AI 回复）
// 相同 session_id 的记录按时间排列构成一段完整对话
type ChatTurn struct {
	// ID 记录唯一标识，自增主键
	ID int64 `gorm:"primaryKey" json:"id"`

	// UserID 所属用户ID，匿名聊天为 NULL
	UserID *int64 `gorm:"index" json:"user_id"`

	// SessionID 对话分组键，由客户端提供
	// 客户端未提供时由服务端生成一个 UUID
	SessionID string `gorm:"size:64;index" json:"session_id"`

	// UserMessage 用户发送的消息
	UserMessage string `gorm:"type:text;not null" json:"user_message"`

	// AIResponse AI 的回复内容
	AIResponse string `gorm:"type:text;not null" json:"ai_response"`

	// CreatedAt 创建时间
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName 指定表名
func (ChatTurn) TableName() string {
	return "chat_history"
}

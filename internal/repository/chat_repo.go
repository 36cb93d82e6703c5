// Package repository 提供数据访问层的实现
package repository

import (
	"context"

	"gorm.io/gorm"

	"coredex-server/internal/model"
)

// ChatRepository 聊天记录数据访问层
type ChatRepository struct {
	db *gorm.DB
}

// NewChatRepository 创建 ChatRepository 实例
func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// Create 创建新聊天记录
// 参数:
//   - ctx: 上下文
//   - turn: 记录对象，ID 和 CreatedAt 会被自动填充
//
// 返回:
//   - error: 数据库错误
func (r *ChatRepository) Create(ctx context.Context, turn *model.ChatTurn) error {
	return r.db.WithContext(ctx).Create(turn).Error
}

// ListByUser 获取用户的全部聊天记录
// 按创建时间倒序，服务层再按 session_id 分组成对话
// 参数:
//   - ctx: 上下文
//   - userID: 用户ID
//
// 返回:
//   - []model.ChatTurn: 记录列表
//   - error: 数据库错误
func (r *ChatRepository) ListByUser(ctx context.Context, userID int64) ([]model.ChatTurn, error) {
	var turns []model.ChatTurn
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&turns).Error
	return turns, err
}

// ListRecent 获取全局最近的聊天记录
// 匿名访问时使用
// 参数:
//   - ctx: 上下文
//   - limit: 最大返回条数
func (r *ChatRepository) ListRecent(ctx context.Context, limit int) ([]model.ChatTurn, error) {
	var turns []model.ChatTurn
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&turns).Error
	return turns, err
}

// ListBySession 获取某个对话的全部记录
// 按创建时间正序（最早的在前），方便展示对话
// 参数:
//   - ctx: 上下文
//   - userID: 用户ID
//   - sessionID: 对话分组键
func (r *ChatRepository) ListBySession(ctx context.Context, userID int64, sessionID string) ([]model.ChatTurn, error) {
	var turns []model.ChatTurn
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		Order("created_at ASC").
		Find(&turns).Error
	return turns, err
}

// DeleteBySession 删除某个对话的全部记录
// 限定在请求用户名下
// 返回:
//   - int64: 删除的行数
//   - error: 数据库错误
func (r *ChatRepository) DeleteBySession(ctx context.Context, userID int64, sessionID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		Delete(&model.ChatTurn{})
	return result.RowsAffected, result.Error
}

// DeleteByUserID 删除用户的全部聊天记录
// 返回:
//   - int64: 删除的行数
//   - error: 数据库错误
func (r *ChatRepository) DeleteByUserID(ctx context.Context, userID int64) (int64, error) {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.ChatTurn{})
	return result.RowsAffected, result.Error
}

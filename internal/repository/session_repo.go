// Package repository 提供数据访问层的实现
package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"coredex-server/internal/model"
)

// SessionRepository 会话数据访问层
// 会话行只是登录记录：认证走 JWT，不查这张表
type SessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository 创建 SessionRepository 实例
func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create 创建新会话
// 登录/注册时调用，写入失败由调用方记日志，不影响登录流程
// 参数:
//   - ctx: 上下文
//   - session: 会话对象，ID 和 CreatedAt 会被自动填充
//
// 返回:
//   - error: 数据库错误
func (r *SessionRepository) Create(ctx context.Context, session *model.UserSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// DeleteByUserID 删除用户的所有会话
// 登出时调用
// 参数:
//   - ctx: 上下文
//   - userID: 用户ID
//
// 返回:
//   - error: 数据库错误
func (r *SessionRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.UserSession{}).Error
}

// DeleteExpired 清理已过期的会话行
// 后台维护任务使用
// 返回:
//   - int64: 删除的行数
//   - error: 数据库错误
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&model.UserSession{})
	return result.RowsAffected, result.Error
}

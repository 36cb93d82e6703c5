// Package repository 提供数据访问层的实现
// 封装所有与数据库的交互操作
package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"coredex-server/internal/model"
)

// UserRepository 用户数据访问层
// 负责用户相关的所有数据库操作
type UserRepository struct {
	db *gorm.DB // GORM 数据库连接实例
}

// NewUserRepository 创建 UserRepository 实例
// 参数:
//   - db: GORM 数据库连接
//
// 返回:
//   - *UserRepository: 用户仓库实例
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create 创建新用户
// 参数:
//   - ctx: 上下文，用于控制请求生命周期
//   - user: 用户对象，ID 字段会被自动填充
//
// 返回:
//   - error: 如果邮箱重复，会返回错误
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID 根据 ID 获取用户
// 参数:
//   - ctx: 上下文
//   - id: 用户ID
//
// 返回:
//   - *model.User: 用户对象，如果未找到返回 nil
//   - error: 数据库错误（不包括记录未找到）
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		// "记录未找到"不当作错误，返回 nil
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail 根据邮箱获取用户
// 用于登录验证和注册检查，调用方需先归一化邮箱
// 参数:
//   - ctx: 上下文
//   - email: 邮箱地址（小写）
//
// 返回:
//   - *model.User: 用户对象，如果未找到返回 nil
//   - error: 数据库错误
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// ExistsByEmail 检查邮箱是否已存在
// 参数:
//   - ctx: 上下文
//   - email: 邮箱（小写）
//
// 返回:
//   - bool: 是否存在
//   - error: 数据库错误
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// ExistsByEmailExcept 检查邮箱是否被其他用户占用
// 资料更新和后台编辑时使用：排除用户自己
// 参数:
//   - ctx: 上下文
//   - email: 邮箱（小写）
//   - excludeID: 要排除的用户ID
//
// 返回:
//   - bool: 是否被占用
//   - error: 数据库错误
func (r *UserRepository) ExistsByEmailExcept(ctx context.Context, email string, excludeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ? AND id != ?", email, excludeID).
		Count(&count).Error
	return count > 0, err
}

// Update 更新用户信息
// Save 会更新所有字段
// 参数:
//   - ctx: 上下文
//   - user: 包含要更新字段的用户对象，必须包含 ID
//
// 返回:
//   - error: 数据库错误
func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// UpdateFields 更新用户的指定字段
// 参数:
//   - ctx: 上下文
//   - id: 用户ID
//   - fields: 要更新的字段映射，如 map[string]interface{}{"name": "xxx"}
//
// 返回:
//   - error: 数据库错误
func (r *UserRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

// UpdateLastLogin 记录最近登录时间
// 参数:
//   - ctx: 上下文
//   - id: 用户ID
//   - at: 登录时间
//
// 返回:
//   - error: 数据库错误
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("last_login", at).Error
}

// CountAll 统计用户总数
func (r *UserRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error
	return count, err
}

// AdminUserRow 后台用户列表的一行
// 用户基本信息加上该用户的分析记录数
type AdminUserRow struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Role          string     `json:"role"`
	CreatedAt     time.Time  `json:"created_at"`
	LastLogin     *time.Time `json:"last_login"`
	AnalysisCount int64      `json:"analysis_count"`
}

// ListWithAnalysisCount 获取所有用户及各自的分析记录数
// 后台用户管理页使用，按创建时间倒序
// 返回:
//   - []AdminUserRow: 用户列表
//   - error: 数据库错误
func (r *UserRepository) ListWithAnalysisCount(ctx context.Context) ([]AdminUserRow, error) {
	var rows []AdminUserRow
	err := r.db.WithContext(ctx).
		Table("users u").
		Select("u.id, u.name, u.email, u.role, u.created_at, u.last_login, COUNT(a.id) AS analysis_count").
		Joins("LEFT JOIN analysis_history a ON u.id = a.user_id").
		Group("u.id, u.name, u.email, u.role, u.created_at, u.last_login").
		Order("u.created_at DESC").
		Scan(&rows).Error
	return rows, err
}

// DeleteCascade 删除用户及其所有关联数据
// 分析记录、聊天记录、会话行和用户行在同一个事务内删除，
// 不会因中途失败留下孤儿数据
// 参数:
//   - ctx: 上下文
//   - id: 用户ID
//
// 返回:
//   - error: 数据库错误（事务内任一步失败则整体回滚）
func (r *UserRepository) DeleteCascade(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&model.Analysis{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.ChatTurn{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.UserSession{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.User{}, id).Error
	})
}

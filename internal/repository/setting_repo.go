// Package repository 提供数据访问层的实现
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"coredex-server/internal/model"
)

// SettingRepository 系统设置数据访问层
type SettingRepository struct {
	db *gorm.DB
}

// NewSettingRepository 创建 SettingRepository 实例
func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// Get 根据键获取设置项
// 参数:
//   - ctx: 上下文
//   - key: 设置项的键
//
// 返回:
//   - *model.SystemSetting: 设置项，如果未找到返回 nil
//   - error: 数据库错误
func (r *SettingRepository) Get(ctx context.Context, key string) (*model.SystemSetting, error) {
	var setting model.SystemSetting
	err := r.db.WithContext(ctx).Where("setting_key = ?", key).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &setting, nil
}

// List 获取所有设置项
// 按键排序，后台设置页使用
func (r *SettingRepository) List(ctx context.Context) ([]model.SystemSetting, error) {
	var settings []model.SystemSetting
	err := r.db.WithContext(ctx).Order("setting_key ASC").Find(&settings).Error
	return settings, err
}

// UpdateValue 更新设置项的值
// 返回:
//   - int64: 更新的行数（0 表示键不存在）
//   - error: 数据库错误
func (r *SettingRepository) UpdateValue(ctx context.Context, key, value string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.SystemSetting{}).
		Where("setting_key = ?", key).
		Update("setting_value", value)
	return result.RowsAffected, result.Error
}

// CreateIfAbsent 键不存在时写入设置项
// 首次启动播种默认值时使用，已存在的键保持原值不动
// 返回:
//   - error: 数据库错误
func (r *SettingRepository) CreateIfAbsent(ctx context.Context, setting *model.SystemSetting) error {
	existing, err := r.Get(ctx, setting.SettingKey)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	return r.db.WithContext(ctx).Create(setting).Error
}

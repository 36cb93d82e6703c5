// Package model 定义了与数据库表对应的数据结构
package model

import (
	"time"
)

// SystemSetting 系统设置模型
// 对应数据库表 system_settings
// 进程级配置项（如功能开关），按 key 读写，首次启动时写入默认值
type SystemSetting struct {
	// ID 记录唯一标识，自增主键
	ID int64 `gorm:"primaryKey" json:"id"`

	// SettingKey 设置项的键，全局唯一
	SettingKey string `gorm:"size:100;uniqueIndex;not null" json:"setting_key"`

	// SettingValue 设置项的值，统一存为字符串
	SettingValue string `gorm:"size:500" json:"setting_value"`

	// Description 设置项说明
	Description string `gorm:"size:500" json:"description"`

	// UpdatedAt 更新时间，由 GORM 自动更新
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (SystemSetting) TableName() string {
	return "system_settings"
}

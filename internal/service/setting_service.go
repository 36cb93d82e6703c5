package service

import (
	"context"
	"errors"
	"log"

	"coredex-server/internal/model"
	"coredex-server/internal/repository"
)

// 业务错误定义
var (
	ErrSettingNotFound = errors.New("配置项不存在")
	ErrSettingRequired = errors.New("配置键和配置值不能为空")
)

// SettingService 系统配置服务
type SettingService struct {
	settingRepo *repository.SettingRepository
}

// NewSettingService 创建 SettingService 实例
func NewSettingService(settingRepo *repository.SettingRepository) *SettingService {
	return &SettingService{settingRepo: settingRepo}
}

// List 查询全部配置项
func (s *SettingService) List(ctx context.Context) ([]model.SystemSetting, error) {
	return s.settingRepo.List(ctx)
}

// Get 按键查询配置项
func (s *SettingService) Get(ctx context.Context, key string) (*model.SystemSetting, error) {
	setting, err := s.settingRepo.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, ErrSettingNotFound
	}
	return setting, nil
}

// Update 更新配置项的值，键必须已存在
func (s *SettingService) Update(ctx context.Context, key, value string) error {
	if key == "" || value == "" {
		return ErrSettingRequired
	}
	affected, err := s.settingRepo.UpdateValue(ctx, key, value)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSettingNotFound
	}
	return nil
}

// SeedDefaults 写入缺失的默认配置项，已存在的键保持不变
// 启动时调用，可以重复执行
func (s *SettingService) SeedDefaults(ctx context.Context) error {
	defaults := []model.SystemSetting{
		{SettingKey: "system_name", SettingValue: "COREDEX AI News Analyzer", Description: "Name of the application"},
		{SettingKey: "max_analysis_length", SettingValue: "10000", Description: "Maximum character length for analysis"},
		{SettingKey: "analysis_timeout", SettingValue: "30000", Description: "Timeout for analysis requests in milliseconds"},
		{SettingKey: "allow_registration", SettingValue: "true", Description: "Whether new user registration is allowed"},
		{SettingKey: "maintenance_mode", SettingValue: "false", Description: "System maintenance mode"},
		{SettingKey: "version", SettingValue: "2.0.0", Description: "System version"},
	}

	for i := range defaults {
		if err := s.settingRepo.CreateIfAbsent(ctx, &defaults[i]); err != nil {
			log.Printf("[ERROR] setting: failed to seed %s: %v", defaults[i].SettingKey, err)
			return err
		}
	}
	return nil
}

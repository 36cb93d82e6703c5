package service

import (
	"context"
	"errors"

	"coredex-server/internal/model"
	"coredex-server/internal/repository"
	"coredex-server/pkg/util"
)

// 业务错误定义
var (
	ErrUserNotFound     = errors.New("用户不存在")
	ErrEmailTaken       = errors.New("邮箱已被其他用户使用")
	ErrPasswordTooShort = errors.New("新密码长度不能少于 6 个字符")
	ErrWrongPassword    = errors.New("当前密码不正确")
)

// UserService 用户资料服务
type UserService struct {
	userRepo *repository.UserRepository
}

// NewUserService 创建 UserService 实例
func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetProfile 查询用户资料
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile 更新用户名和邮箱
// 新邮箱不能被其他用户占用
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, name, email string) (*model.User, error) {
	if name == "" || email == "" {
		return nil, ErrFieldsRequired
	}

	email = util.NormalizeEmail(email)

	taken, err := s.userRepo.ExistsByEmailExcept(ctx, email, userID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	user.Name = name
	user.Email = email
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword 修改密码
// 需要先验证当前密码，新密码至少 6 个字符
func (s *UserService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return ErrFieldsRequired
	}
	if len(newPassword) < 6 {
		return ErrPasswordTooShort
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if !util.CheckPassword(currentPassword, user.PasswordHash) {
		return ErrWrongPassword
	}

	hash, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.userRepo.UpdateFields(ctx, userID, map[string]interface{}{"password_hash": hash})
}

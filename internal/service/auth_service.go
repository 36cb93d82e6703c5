package service

import (
	"context"
	"errors"
	"log"
	"time"

	"coredex-server/internal/cache"
	"coredex-server/internal/model"
	"coredex-server/internal/repository"
	"coredex-server/pkg/jwt"
	"coredex-server/pkg/util"
)

// 业务错误定义
var (
	ErrFieldsRequired     = errors.New("请填写所有必填字段")
	ErrEmailExists        = errors.New("邮箱已被注册")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrUserDisabled       = errors.New("账号已被禁用")
)

// AuthService 认证服务
type AuthService struct {
	userRepo    *repository.UserRepository
	sessionRepo *repository.SessionRepository
	jwtService  *jwt.JWTService
	redisCache  *cache.RedisCache
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	userRepo *repository.UserRepository,
	sessionRepo *repository.SessionRepository,
	jwtService *jwt.JWTService,
	redisCache *cache.RedisCache,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		jwtService:  jwtService,
		redisCache:  redisCache,
	}
}

// Register 用户注册
// 邮箱统一转成小写存储，注册成功即视为登录，直接签发令牌
// 参数:
//   - ctx: 上下文
//   - name: 用户名
//   - email: 邮箱
//   - password: 明文密码
//
// 返回:
//   - *model.User: 新建用户
//   - string: JWT 令牌
//   - error: 错误信息
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*model.User, string, error) {
	if name == "" || email == "" || password == "" {
		return nil, "", ErrFieldsRequired
	}

	email = util.NormalizeEmail(email)

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "", ErrEmailExists
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email, user.Role, user.Name)
	if err != nil {
		return nil, "", err
	}

	s.recordSession(ctx, user.ID)

	log.Printf("User registered: %s (id=%d)", user.Email, user.ID)
	return user, token, nil
}

// Login 用户登录
// 用户不存在和密码错误返回同一个错误，避免泄露邮箱是否注册
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	if email == "" || password == "" {
		return nil, "", ErrFieldsRequired
	}

	user, err := s.userRepo.GetByEmail(ctx, util.NormalizeEmail(email))
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}
	if !util.CheckPassword(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, "", ErrUserDisabled
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email, user.Role, user.Name)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		log.Printf("[WARN] auth: failed to update last_login for user %d: %v", user.ID, err)
	}
	user.LastLogin = &now

	s.recordSession(ctx, user.ID)

	log.Printf("User logged in: %s (id=%d)", user.Email, user.ID)
	return user, token, nil
}

// Logout 用户登出
// 令牌进入黑名单直到自然过期，同时清掉该用户的会话记录
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		// 令牌已经无效，登出视为成功
		return nil
	}

	if claims.ExpiresAt != nil {
		if err := s.redisCache.BlacklistToken(ctx, util.HashToken(token), claims.ExpiresAt.Time); err != nil {
			log.Printf("[WARN] auth: failed to blacklist token for user %d: %v", claims.UserID, err)
		}
	}

	if err := s.sessionRepo.DeleteByUserID(ctx, claims.UserID); err != nil {
		log.Printf("[WARN] auth: failed to remove sessions for user %d: %v", claims.UserID, err)
	}

	log.Printf("User logged out: id=%d", claims.UserID)
	return nil
}

// CleanupExpiredSessions 清理过期会话，返回删除条数
func (s *AuthService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessionRepo.DeleteExpired(ctx, time.Now())
}

// recordSession 记录一条会话，失败只记日志不中断登录流程
func (s *AuthService) recordSession(ctx context.Context, userID int64) {
	session := &model.UserSession{
		UserID:       userID,
		SessionToken: util.GenerateSessionToken(),
		ExpiresAt:    time.Now().Add(s.jwtService.GetExpire()),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		log.Printf("[WARN] auth: failed to record session for user %d: %v", userID, err)
	}
}

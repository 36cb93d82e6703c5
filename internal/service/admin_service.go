package service

import (
	"context"
	"errors"
	"math"
	"time"

	"coredex-server/internal/model"
	"coredex-server/internal/repository"
	"coredex-server/pkg/util"
)

// 业务错误定义
var (
	ErrInvalidRole       = errors.New("无效的用户角色")
	ErrCannotDeleteAdmin = errors.New("不能删除管理员账号")
	ErrCannotDeleteSelf  = errors.New("不能删除自己的账号")
)

// 活跃度统计的时间窗口
const activityWindowDays = 30

// 榜单返回的用户数
const topUserLimit = 10

// AdminService 后台管理服务
type AdminService struct {
	userRepo     *repository.UserRepository
	analysisRepo *repository.AnalysisRepository
}

// NewAdminService 创建 AdminService 实例
func NewAdminService(userRepo *repository.UserRepository, analysisRepo *repository.AnalysisRepository) *AdminService {
	return &AdminService{
		userRepo:     userRepo,
		analysisRepo: analysisRepo,
	}
}

// AnalyticsReport 后台统计报表
type AnalyticsReport struct {
	TotalUsers     int64                   `json:"total_users"`
	TotalAnalysis  int64                   `json:"total_analysis"`
	FakeCount      int64                   `json:"fake_count"`
	RealCount      int64                   `json:"real_count"`
	UncertainCount int64                   `json:"uncertain_count"`
	FakePercentage int                     `json:"fake_percentage"`
	RealPercentage int                     `json:"real_percentage"`
	TodayAnalysis  int64                   `json:"today_analysis"`
	UserActivity   []repository.DailyCount `json:"user_activity"`
	UserStats      []repository.UserStat   `json:"user_stats"`
}

// Analytics 生成后台统计报表
// 占比按整数四舍五入，总量为零时占比为 0
func (s *AdminService) Analytics(ctx context.Context) (*AnalyticsReport, error) {
	totalUsers, err := s.userRepo.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	totalAnalysis, err := s.analysisRepo.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	fakeCount, err := s.analysisRepo.CountByResult(ctx, model.VerdictFake)
	if err != nil {
		return nil, err
	}
	realCount, err := s.analysisRepo.CountByResult(ctx, model.VerdictReal)
	if err != nil {
		return nil, err
	}
	uncertainCount, err := s.analysisRepo.CountByResult(ctx, model.VerdictUncertain)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayCount, err := s.analysisRepo.CountSince(ctx, today)
	if err != nil {
		return nil, err
	}

	activity, err := s.analysisRepo.DailyActivity(ctx, today.AddDate(0, 0, -activityWindowDays))
	if err != nil {
		return nil, err
	}
	userStats, err := s.analysisRepo.TopUsers(ctx, topUserLimit)
	if err != nil {
		return nil, err
	}

	return &AnalyticsReport{
		TotalUsers:     totalUsers,
		TotalAnalysis:  totalAnalysis,
		FakeCount:      fakeCount,
		RealCount:      realCount,
		UncertainCount: uncertainCount,
		FakePercentage: roundPercentage(fakeCount, totalAnalysis),
		RealPercentage: roundPercentage(realCount, totalAnalysis),
		TodayAnalysis:  todayCount,
		UserActivity:   activity,
		UserStats:      userStats,
	}, nil
}

// StreamStats 实时推送用的精简统计
type StreamStats struct {
	TotalUsers     int64 `json:"totalUsers"`
	TotalAnalysis  int64 `json:"totalAnalysis"`
	FakePercentage int   `json:"fakePercentage"`
}

// Snapshot 生成一份实时统计快照，推送端每个周期调用一次
func (s *AdminService) Snapshot(ctx context.Context) (*StreamStats, error) {
	totalUsers, err := s.userRepo.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	totalAnalysis, err := s.analysisRepo.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	fakeCount, err := s.analysisRepo.CountByResult(ctx, model.VerdictFake)
	if err != nil {
		return nil, err
	}
	return &StreamStats{
		TotalUsers:     totalUsers,
		TotalAnalysis:  totalAnalysis,
		FakePercentage: roundPercentage(fakeCount, totalAnalysis),
	}, nil
}

// ListUsers 查询全部用户及各自的分析次数
func (s *AdminService) ListUsers(ctx context.Context) ([]repository.AdminUserRow, error) {
	return s.userRepo.ListWithAnalysisCount(ctx)
}

// UpdateUser 更新指定用户的资料和角色
func (s *AdminService) UpdateUser(ctx context.Context, targetID int64, name, email, role string) error {
	if name == "" || email == "" || role == "" {
		return ErrFieldsRequired
	}
	if role != model.RoleUser && role != model.RoleAdmin {
		return ErrInvalidRole
	}

	email = util.NormalizeEmail(email)

	taken, err := s.userRepo.ExistsByEmailExcept(ctx, email, targetID)
	if err != nil {
		return err
	}
	if taken {
		return ErrEmailTaken
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	return s.userRepo.UpdateFields(ctx, targetID, map[string]interface{}{
		"name":  name,
		"email": email,
		"role":  role,
	})
}

// DeleteUser 删除指定用户及其全部数据
// 管理员账号和操作者自己都不能删，级联删除在单个事务里完成
func (s *AdminService) DeleteUser(ctx context.Context, targetID, actorID int64) error {
	if targetID == actorID {
		return ErrCannotDeleteSelf
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.IsAdmin() {
		return ErrCannotDeleteAdmin
	}

	return s.userRepo.DeleteCascade(ctx, targetID)
}

// roundPercentage 计算整数百分比，total 为零时返回 0
func roundPercentage(part, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

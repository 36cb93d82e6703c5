// Package repository 提供数据访问层的实现
package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"coredex-server/internal/model"
)

// AnalysisRepository 分析记录数据访问层
// 记录只增不改：写入一次，之后只有查询和删除
type AnalysisRepository struct {
	db *gorm.DB
}

// NewAnalysisRepository 创建 AnalysisRepository 实例
func NewAnalysisRepository(db *gorm.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Create 创建新分析记录
// 参数:
//   - ctx: 上下文
//   - analysis: 记录对象，ID 和 CreatedAt 会被自动填充
//
// 返回:
//   - error: 数据库错误
func (r *AnalysisRepository) Create(ctx context.Context, analysis *model.Analysis) error {
	return r.db.WithContext(ctx).Create(analysis).Error
}

// GetByID 根据 ID 获取分析记录
// 参数:
//   - ctx: 上下文
//   - id: 记录ID
//
// 返回:
//   - *model.Analysis: 记录对象，如果未找到返回 nil
//   - error: 数据库错误
func (r *AnalysisRepository) GetByID(ctx context.Context, id int64) (*model.Analysis, error) {
	var analysis model.Analysis
	err := r.db.WithContext(ctx).First(&analysis, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &analysis, nil
}

// ListByUser 获取指定用户的分析记录
// 按创建时间倒序（最新的在前），limit 由服务层钳制
// 参数:
//   - ctx: 上下文
//   - userID: 用户ID
//   - limit: 最大返回条数
//
// 返回:
//   - []model.Analysis: 记录列表
//   - error: 数据库错误
func (r *AnalysisRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]model.Analysis, error) {
	var items []model.Analysis
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

// ListRecent 获取全局最近的分析记录
// 匿名访问历史时使用
// 参数:
//   - ctx: 上下文
//   - limit: 最大返回条数
//
// 返回:
//   - []model.Analysis: 记录列表
//   - error: 数据库错误
func (r *AnalysisRepository) ListRecent(ctx context.Context, limit int) ([]model.Analysis, error) {
	var items []model.Analysis
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

// DeleteByID 根据 ID 删除分析记录
// 所有权检查由服务层完成
// 返回:
//   - int64: 删除的行数（0 表示记录不存在）
//   - error: 数据库错误
func (r *AnalysisRepository) DeleteByID(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&model.Analysis{}, id)
	return result.RowsAffected, result.Error
}

// DeleteOlderThan 按时间阈值批量删除
// 后台维护任务使用，单条语句完成
// 参数:
//   - ctx: 上下文
//   - before: 删除此时刻之前创建的记录
//
// 返回:
//   - int64: 删除的行数
//   - error: 数据库错误
func (r *AnalysisRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", before).Delete(&model.Analysis{})
	return result.RowsAffected, result.Error
}

// ==================== 聚合查询 ====================
// 后台看板和实时统计使用，全部只读

// CountAll 统计分析记录总数
func (r *AnalysisRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Analysis{}).Count(&count).Error
	return count, err
}

// CountByResult 按结论标签统计记录数
// 参数:
//   - ctx: 上下文
//   - result: 结论标签（real / fake / uncertain）
func (r *AnalysisRepository) CountByResult(ctx context.Context, result string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Analysis{}).Where("result = ?", result).Count(&count).Error
	return count, err
}

// CountSince 统计某时刻之后创建的记录数
// "今日分析数"用服务器本地时区的当日零点作为起点，
// 日期边界在 Go 侧计算，避免依赖具体数据库的日期函数
func (r *AnalysisRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Analysis{}).Where("created_at >= ?", since).Count(&count).Error
	return count, err
}

// DailyCount 每日活跃统计的一行
type DailyCount struct {
	Date  string `json:"date"`  // 日期（YYYY-MM-DD）
	Count int64  `json:"count"` // 当日记录数
}

// DailyActivity 最近 N 天的每日记录数
// 按日期倒序，没有记录的日期不出现在结果里
// 参数:
//   - ctx: 上下文
//   - since: 统计起点
//
// 返回:
//   - []DailyCount: 每日统计
//   - error: 数据库错误
func (r *AnalysisRepository) DailyActivity(ctx context.Context, since time.Time) ([]DailyCount, error) {
	var rows []DailyCount
	// DATE() 在 MySQL 和 SQLite 中行为一致
	err := r.db.WithContext(ctx).
		Model(&model.Analysis{}).
		Select("DATE(created_at) AS date, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("DATE(created_at)").
		Order("date DESC").
		Scan(&rows).Error
	return rows, err
}

// UserStat 用户排行的一行
type UserStat struct {
	Name          string `json:"name"`           // 用户昵称
	AnalysisCount int64  `json:"analysis_count"` // 分析记录数
}

// TopUsers 按分析记录数取前 N 名用户
// LEFT JOIN 保证没有记录的用户也能出现（计数为 0）
// 参数:
//   - ctx: 上下文
//   - limit: 名额数
//
// 返回:
//   - []UserStat: 排行列表
//   - error: 数据库错误
func (r *AnalysisRepository) TopUsers(ctx context.Context, limit int) ([]UserStat, error) {
	var rows []UserStat
	err := r.db.WithContext(ctx).
		Table("users u").
		Select("u.name, COUNT(a.id) AS analysis_count").
		Joins("LEFT JOIN analysis_history a ON u.id = a.user_id").
		Group("u.id, u.name").
		Order("analysis_count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

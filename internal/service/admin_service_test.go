package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"coredex-server/internal/model"
	"coredex-server/internal/repository"
)

func newAdminService(db *gorm.DB) *AdminService {
	return NewAdminService(repository.NewUserRepository(db), repository.NewAnalysisRepository(db))
}

// seedAnalysis 直接写一条分析记录
func seedAnalysis(t *testing.T, db *gorm.DB, userID *int64, result string, score int) {
	t.Helper()
	require.NoError(t, db.Create(&model.Analysis{
		UserID:           userID,
		Content:          "seeded content",
		AnalysisData:     "{}",
		CredibilityScore: score,
		Result:           result,
	}).Error)
}

func TestAnalyticsEmpty(t *testing.T) {
	svc := newAdminService(newTestDB(t))

	report, err := svc.Analytics(context.Background())
	require.NoError(t, err)

	// 没有数据时占比为 0，不能出现除零
	assert.Zero(t, report.TotalUsers)
	assert.Zero(t, report.TotalAnalysis)
	assert.Zero(t, report.FakePercentage)
	assert.Zero(t, report.RealPercentage)
	assert.Zero(t, report.TodayAnalysis)
	assert.Empty(t, report.UserActivity)
}

func TestAnalyticsPercentages(t *testing.T) {
	db := newTestDB(t)
	svc := newAdminService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice", "alice@example.com", model.RoleUser)
	bob := createTestUser(t, db, "bob", "bob@example.com", model.RoleUser)

	seedAnalysis(t, db, &alice.ID, model.VerdictFake, 10)
	seedAnalysis(t, db, &alice.ID, model.VerdictFake, 20)
	seedAnalysis(t, db, &alice.ID, model.VerdictReal, 90)
	seedAnalysis(t, db, &bob.ID, model.VerdictUncertain, 50)

	report, err := svc.Analytics(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 2, report.TotalUsers)
	assert.EqualValues(t, 4, report.TotalAnalysis)
	assert.EqualValues(t, 2, report.FakeCount)
	assert.EqualValues(t, 1, report.RealCount)
	assert.EqualValues(t, 1, report.UncertainCount)
	assert.Equal(t, 50, report.FakePercentage)
	assert.Equal(t, 25, report.RealPercentage)
	assert.EqualValues(t, 4, report.TodayAnalysis)

	// 榜单按分析次数降序
	require.NotEmpty(t, report.UserStats)
	assert.Equal(t, "alice", report.UserStats[0].Name)
	assert.EqualValues(t, 3, report.UserStats[0].AnalysisCount)

	// 今天的记录聚合出一条活跃度
	require.Len(t, report.UserActivity, 1)
	assert.EqualValues(t, 4, report.UserActivity[0].Count)
}

func TestSnapshot(t *testing.T) {
	db := newTestDB(t)
	svc := newAdminService(db)

	alice := createTestUser(t, db, "alice", "alice@example.com", model.RoleUser)
	seedAnalysis(t, db, &alice.ID, model.VerdictFake, 10)
	seedAnalysis(t, db, &alice.ID, model.VerdictReal, 90)
	seedAnalysis(t, db, &alice.ID, model.VerdictReal, 85)

	stats, err := svc.Snapshot(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 1, stats.TotalUsers)
	assert.EqualValues(t, 3, stats.TotalAnalysis)
	assert.Equal(t, 33, stats.FakePercentage)
}

func TestAdminUpdateUser(t *testing.T) {
	db := newTestDB(t)
	svc := newAdminService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice", "alice@example.com", model.RoleUser)
	createTestUser(t, db, "bob", "bob@example.com", model.RoleUser)

	t.Run("正常更新", func(t *testing.T) {
		require.NoError(t, svc.UpdateUser(ctx, alice.ID, "Alice Liddell", "Alice@New.com", model.RoleAdmin))

		var updated model.User
		require.NoError(t, db.First(&updated, alice.ID).Error)
		assert.Equal(t, "Alice Liddell", updated.Name)
		assert.Equal(t, "alice@new.com", updated.Email)
		assert.Equal(t, model.RoleAdmin, updated.Role)
	})

	t.Run("非法角色", func(t *testing.T) {
		err := svc.UpdateUser(ctx, alice.ID, "Alice", "alice@new.com", "superuser")
		assert.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("邮箱被占用", func(t *testing.T) {
		err := svc.UpdateUser(ctx, alice.ID, "Alice", "bob@example.com", model.RoleUser)
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("用户不存在", func(t *testing.T) {
		err := svc.UpdateUser(ctx, 9999, "Ghost", "ghost@example.com", model.RoleUser)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestAdminDeleteUser(t *testing.T) {
	db := newTestDB(t)
	svc := newAdminService(db)
	ctx := context.Background()

	admin := createTestUser(t, db, "root", "root@example.com", model.RoleAdmin)
	other := createTestUser(t, db, "boss", "boss@example.com", model.RoleAdmin)
	alice := createTestUser(t, db, "alice", "alice@example.com", model.RoleUser)

	seedAnalysis(t, db, &alice.ID, model.VerdictFake, 10)
	require.NoError(t, db.Create(&model.ChatTurn{UserID: &alice.ID, SessionID: "s1", UserMessage: "q", AIResponse: "a"}).Error)

	t.Run("不能删除自己", func(t *testing.T) {
		assert.ErrorIs(t, svc.DeleteUser(ctx, admin.ID, admin.ID), ErrCannotDeleteSelf)
	})

	t.Run("不能删除管理员", func(t *testing.T) {
		assert.ErrorIs(t, svc.DeleteUser(ctx, other.ID, admin.ID), ErrCannotDeleteAdmin)
	})

	t.Run("用户不存在", func(t *testing.T) {
		assert.ErrorIs(t, svc.DeleteUser(ctx, 9999, admin.ID), ErrUserNotFound)
	})

	t.Run("级联删除用户数据", func(t *testing.T) {
		require.NoError(t, svc.DeleteUser(ctx, alice.ID, admin.ID))

		var userCount, analysisCount, chatCount int64
		require.NoError(t, db.Model(&model.User{}).Where("id = ?", alice.ID).Count(&userCount).Error)
		require.NoError(t, db.Model(&model.Analysis{}).Where("user_id = ?", alice.ID).Count(&analysisCount).Error)
		require.NoError(t, db.Model(&model.ChatTurn{}).Where("user_id = ?", alice.ID).Count(&chatCount).Error)
		assert.Zero(t, userCount)
		assert.Zero(t, analysisCount)
		assert.Zero(t, chatCount)
	})
}

func TestListUsersWithAnalysisCount(t *testing.T) {
	db := newTestDB(t)
	svc := newAdminService(db)

	alice := createTestUser(t, db, "alice", "alice@example.com", model.RoleUser)
	createTestUser(t, db, "bob", "bob@example.com", model.RoleUser)
	seedAnalysis(t, db, &alice.ID, model.VerdictReal, 80)
	seedAnalysis(t, db, &alice.ID, model.VerdictFake, 15)

	users, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)

	counts := make(map[string]int64)
	for _, u := range users {
		counts[u.Name] = u.AnalysisCount
	}
	assert.EqualValues(t, 2, counts["alice"])
	assert.EqualValues(t, 0, counts["bob"])
}

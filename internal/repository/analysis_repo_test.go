package repository

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"coredex-server/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.UserSession{},
		&model.Analysis{},
		&model.ChatTurn{},
		&model.SystemSetting{},
	))
	return db
}

func TestAnalysisGetByIDNotFound(t *testing.T) {
	repo := NewAnalysisRepository(newTestDB(t))

	// 未命中按 (nil, nil) 返回，不是错误
	record, err := repo.GetByID(context.Background(), 12345)
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestAnalysisDeleteOlderThan(t *testing.T) {
	db := newTestDB(t)
	repo := NewAnalysisRepository(db)
	ctx := context.Background()

	old := &model.Analysis{Content: "old", AnalysisData: "{}", CredibilityScore: 50, Result: model.VerdictUncertain}
	require.NoError(t, db.Create(old).Error)
	require.NoError(t, db.Model(old).Update("created_at", time.Now().AddDate(0, 0, -40)).Error)

	fresh := &model.Analysis{Content: "fresh", AnalysisData: "{}", CredibilityScore: 80, Result: model.VerdictReal}
	require.NoError(t, db.Create(fresh).Error)

	deleted, err := repo.DeleteOlderThan(ctx, time.Now().AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	remaining, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "fresh", remaining[0].Content)
}

func TestAnalysisDailyActivity(t *testing.T) {
	db := newTestDB(t)
	repo := NewAnalysisRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&model.Analysis{
			Content: "today", AnalysisData: "{}", CredibilityScore: 50, Result: model.VerdictUncertain,
		}).Error)
	}

	yesterday := &model.Analysis{Content: "yesterday", AnalysisData: "{}", CredibilityScore: 50, Result: model.VerdictUncertain}
	require.NoError(t, db.Create(yesterday).Error)
	require.NoError(t, db.Model(yesterday).Update("created_at", time.Now().AddDate(0, 0, -1)).Error)

	activity, err := repo.DailyActivity(ctx, time.Now().AddDate(0, 0, -7))
	require.NoError(t, err)
	require.Len(t, activity, 2)

	// 日期降序：今天在前
	assert.EqualValues(t, 3, activity[0].Count)
	assert.EqualValues(t, 1, activity[1].Count)
}

func TestUserGetByEmailNotFound(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	user, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestSessionDeleteExpired(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&model.UserSession{UserID: 1, SessionToken: "t1", ExpiresAt: time.Now().Add(-time.Hour)}).Error)
	require.NoError(t, db.Create(&model.UserSession{UserID: 1, SessionToken: "t2", ExpiresAt: time.Now().Add(time.Hour)}).Error)

	deleted, err := repo.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
}

package service

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"coredex-server/internal/model"
	"coredex-server/pkg/util"
)

// newTestDB 打开一个内存数据库并建好全部表
// 单连接保证 :memory: 数据库在整个测试期间存活
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

// createTestUser 建一个测试用户，密码固定为 password123
func createTestUser(t *testing.T, db *gorm.DB, name, email, role string) *model.User {
	t.Helper()

	hash, err := util.HashPassword("password123")
	require.NoError(t, err)

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

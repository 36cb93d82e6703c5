package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coredex-server/internal/model"
	"coredex-server/internal/repository"
	"coredex-server/pkg/util"
)

func TestGetProfile(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(repository.NewUserRepository(db))
	ctx := context.Background()

	alice := createTestUser(t, db, "alice", "alice@example.com", model.RoleUser)

	user, err := svc.GetProfile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Name)

	_, err = svc.GetProfile(ctx, 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateProfile(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(repository.NewUserRepository(db))
	ctx := context.Background()

	alice := createTestUser(t, db, "alice", "alice@example.com", model.RoleUser)
	createTestUser(t, db, "bob", "bob@example.com", model.RoleUser)

	t.Run("正常更新", func(t *testing.T) {
		user, err := svc.UpdateProfile(ctx, alice.ID, "Alice L", "Alice@Renamed.com")
		require.NoError(t, err)
		assert.Equal(t, "Alice L", user.Name)
		assert.Equal(t, "alice@renamed.com", user.Email)
	})

	t.Run("保留自己的邮箱不算占用", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, alice.ID, "Alice L", "alice@renamed.com")
		assert.NoError(t, err)
	})

	t.Run("邮箱被其他用户占用", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, alice.ID, "Alice L", "bob@example.com")
		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestChangePassword(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(repository.NewUserRepository(db))
	ctx := context.Background()

	alice := createTestUser(t, db, "alice", "alice@example.com", model.RoleUser)

	t.Run("当前密码错误", func(t *testing.T) {
		err := svc.ChangePassword(ctx, alice.ID, "wrong", "newpassword")
		assert.ErrorIs(t, err, ErrWrongPassword)
	})

	t.Run("新密码过短", func(t *testing.T) {
		err := svc.ChangePassword(ctx, alice.ID, "password123", "short")
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})

	t.Run("正常修改", func(t *testing.T) {
		require.NoError(t, svc.ChangePassword(ctx, alice.ID, "password123", "newpassword"))

		var updated model.User
		require.NoError(t, db.First(&updated, alice.ID).Error)
		assert.True(t, util.CheckPassword("newpassword", updated.PasswordHash))
		assert.False(t, util.CheckPassword("password123", updated.PasswordHash))
	})
}

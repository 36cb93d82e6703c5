package handler

import (
	"github.com/gin-gonic/gin"

	"coredex-server/internal/middleware"
	"coredex-server/internal/service"
	"coredex-server/pkg/response"
)

// UserHandler 用户资料请求处理器
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler 创建 UserHandler 实例
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// updateProfileRequest 资料更新请求参数
type updateProfileRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

// changePasswordRequest 修改密码请求参数
type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// GetProfile 查询当前用户资料
// @Summary 查询资料
// @Tags 用户
// @Router /api/auth/profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)

	user, err := h.userService.GetProfile(c.Request.Context(), identity.UserID)
	if err != nil {
		switch err {
		case service.ErrUserNotFound:
			response.NotFound(c, err.Error())
		default:
			response.InternalError(c, "查询失败")
		}
		return
	}

	response.OK(c, gin.H{"user": userView(user)})
}

// UpdateProfile 更新当前用户的用户名和邮箱
// @Summary 更新资料
// @Tags 用户
// @Router /api/auth/profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	identity, _ := middleware.GetIdentity(c)

	user, err := h.userService.UpdateProfile(c.Request.Context(), identity.UserID, req.Name, req.Email)
	if err != nil {
		switch err {
		case service.ErrFieldsRequired, service.ErrEmailTaken:
			response.BadRequest(c, err.Error())
		case service.ErrUserNotFound:
			response.NotFound(c, err.Error())
		default:
			response.InternalError(c, "更新失败")
		}
		return
	}

	response.OK(c, gin.H{"user": userView(user)})
}

// ChangePassword 修改当前用户的密码
// @Summary 修改密码
// @Tags 用户
// @Router /api/auth/change-password [put]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	identity, _ := middleware.GetIdentity(c)

	err := h.userService.ChangePassword(c.Request.Context(), identity.UserID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch err {
		case service.ErrFieldsRequired, service.ErrPasswordTooShort, service.ErrWrongPassword:
			response.BadRequest(c, err.Error())
		case service.ErrUserNotFound:
			response.NotFound(c, err.Error())
		default:
			response.InternalError(c, "修改失败")
		}
		return
	}

	response.OKWithMessage(c, "密码修改成功", nil)
}

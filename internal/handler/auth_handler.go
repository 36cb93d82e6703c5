// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"coredex-server/internal/middleware"
	"coredex-server/internal/model"
	"coredex-server/internal/service"
	"coredex-server/pkg/response"
)

// AuthHandler 认证请求处理器
// 处理用户注册、登录、登出和令牌校验
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler 创建 AuthHandler 实例
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// registerRequest 注册请求参数
type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// loginRequest 登录请求参数
type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// userView 对外暴露的用户信息，不包含密码哈希
func userView(user *model.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"name":       user.Name,
		"email":      user.Email,
		"role":       user.Role,
		"created_at": user.CreatedAt,
		"last_login": user.LastLogin,
	}
}

// Register 用户注册
// @Summary 用户注册
// @Tags 认证
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	user, token, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch err {
		case service.ErrFieldsRequired:
			response.BadRequest(c, err.Error())
		case service.ErrEmailExists:
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, "注册失败")
		}
		return
	}

	response.OK(c, gin.H{
		"token": token,
		"user":  userView(user),
	})
}

// Login 用户登录
// @Summary 用户登录
// @Tags 认证
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch err {
		case service.ErrFieldsRequired, service.ErrInvalidCredentials:
			response.BadRequest(c, err.Error())
		case service.ErrUserDisabled:
			response.Forbidden(c, err.Error())
		default:
			response.InternalError(c, "登录失败")
		}
		return
	}

	response.OK(c, gin.H{
		"token": token,
		"user":  userView(user),
	})
}

// Logout 用户登出
// 令牌进入黑名单，同名令牌后续请求按未认证处理
// @Summary 用户登出
// @Tags 认证
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.GetToken(c)); err != nil {
		response.InternalError(c, "登出失败")
		return
	}
	response.OKWithMessage(c, "登出成功", nil)
}

// Verify 校验当前令牌并返回其中的身份信息
// @Summary 令牌校验
// @Tags 认证
// @Router /api/auth/verify [get]
func (h *AuthHandler) Verify(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)
	response.OK(c, gin.H{
		"user": gin.H{
			"id":    identity.UserID,
			"email": identity.Email,
			"role":  identity.Role,
			"name":  identity.Name,
		},
	})
}

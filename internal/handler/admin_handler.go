package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"coredex-server/internal/middleware"
	"coredex-server/internal/service"
	"coredex-server/pkg/response"
)

// AdminHandler 后台管理请求处理器
// 所有接口都要求管理员权限
type AdminHandler struct {
	adminService   *service.AdminService
	settingService *service.SettingService
}

// NewAdminHandler 创建 AdminHandler 实例
func NewAdminHandler(adminService *service.AdminService, settingService *service.SettingService) *AdminHandler {
	return &AdminHandler{
		adminService:   adminService,
		settingService: settingService,
	}
}

// adminUpdateUserRequest 用户更新请求参数
type adminUpdateUserRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

// updateSettingRequest 配置更新请求参数
type updateSettingRequest struct {
	Value string `json:"value" binding:"required"`
}

// Analytics 后台统计报表
// @Summary 统计报表
// @Tags 管理
// @Router /api/news/admin/analytics [get]
func (h *AdminHandler) Analytics(c *gin.Context) {
	report, err := h.adminService.Analytics(c.Request.Context())
	if err != nil {
		response.InternalError(c, "统计失败")
		return
	}

	response.OK(c, gin.H{
		"total_users":     report.TotalUsers,
		"total_analysis":  report.TotalAnalysis,
		"fake_count":      report.FakeCount,
		"real_count":      report.RealCount,
		"uncertain_count": report.UncertainCount,
		"fake_percentage": report.FakePercentage,
		"real_percentage": report.RealPercentage,
		"today_analysis":  report.TodayAnalysis,
		"user_activity":   report.UserActivity,
		"user_stats":      report.UserStats,
	})
}

// ListUsers 查询全部用户及各自的分析次数
// @Summary 用户列表
// @Tags 管理
// @Router /api/auth/admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.adminService.ListUsers(c.Request.Context())
	if err != nil {
		response.InternalError(c, "查询失败")
		return
	}

	response.OK(c, gin.H{"users": users})
}

// UpdateUser 更新指定用户的资料和角色
// @Summary 更新用户
// @Tags 管理
// @Router /api/auth/admin/users/{id} [put]
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "无效的用户 ID")
		return
	}

	var req adminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	if err := h.adminService.UpdateUser(c.Request.Context(), id, req.Name, req.Email, req.Role); err != nil {
		switch err {
		case service.ErrFieldsRequired, service.ErrInvalidRole, service.ErrEmailTaken:
			response.BadRequest(c, err.Error())
		case service.ErrUserNotFound:
			response.NotFound(c, err.Error())
		default:
			response.InternalError(c, "更新失败")
		}
		return
	}

	response.OKWithMessage(c, "用户更新成功", nil)
}

// DeleteUser 删除指定用户及其全部数据
// @Summary 删除用户
// @Tags 管理
// @Router /api/auth/admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "无效的用户 ID")
		return
	}

	identity, _ := middleware.GetIdentity(c)

	if err := h.adminService.DeleteUser(c.Request.Context(), id, identity.UserID); err != nil {
		switch err {
		case service.ErrCannotDeleteAdmin, service.ErrCannotDeleteSelf:
			response.BadRequest(c, err.Error())
		case service.ErrUserNotFound:
			response.NotFound(c, err.Error())
		default:
			response.InternalError(c, "删除失败")
		}
		return
	}

	response.OKWithMessage(c, "用户删除成功", nil)
}

// ListSettings 查询全部系统配置
// @Summary 配置列表
// @Tags 管理
// @Router /api/news/admin/settings [get]
func (h *AdminHandler) ListSettings(c *gin.Context) {
	settings, err := h.settingService.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, "查询失败")
		return
	}

	response.OK(c, gin.H{"settings": settings})
}

// UpdateSetting 更新指定配置项的值
// @Summary 更新配置
// @Tags 管理
// @Router /api/news/admin/settings/{key} [put]
func (h *AdminHandler) UpdateSetting(c *gin.Context) {
	var req updateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	if err := h.settingService.Update(c.Request.Context(), c.Param("key"), req.Value); err != nil {
		switch err {
		case service.ErrSettingRequired:
			response.BadRequest(c, err.Error())
		case service.ErrSettingNotFound:
			response.NotFound(c, err.Error())
		default:
			response.InternalError(c, "更新失败")
		}
		return
	}

	response.OKWithMessage(c, "配置更新成功", nil)
}

// Package response 提供统一的 HTTP 响应格式
// 所有 API 都返回 {success: bool, ...} 形式的 JSON，便于前端处理
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OK 返回成功响应
// payload 中的字段会和 success:true 合并到顶层
// 参数:
//   - c: Gin 上下文
//   - payload: 响应数据，如 gin.H{"token": t, "user": u}，可以为 nil
func OK(c *gin.Context, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// OKWithMessage 返回成功响应（带提示信息）
func OKWithMessage(c *gin.Context, message string, payload gin.H) {
	body := gin.H{"success": true, "message": message}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// Error 返回错误响应
// 参数:
//   - c: Gin 上下文
//   - httpCode: HTTP 状态码
//   - message: 错误信息（对外的稳定文案，不包含内部细节）
func Error(c *gin.Context, httpCode int, message string) {
	c.JSON(httpCode, gin.H{
		"success": false,
		"error":   message,
	})
}

// BadRequest 返回 400 错误（请求参数错误）
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized 返回 401 错误（未认证）
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// Forbidden 返回 403 错误（权限不足）
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message)
}

// NotFound 返回 404 错误（资源不存在）
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// InternalError 返回 500 错误（服务器内部错误）
// 具体原因只写日志，不下发给调用方
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

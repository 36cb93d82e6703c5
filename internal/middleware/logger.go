// Package middleware 提供 HTTP 请求的中间件
package middleware

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// LoggerMiddleware 创建请求日志中间件
// 记录每个请求的方法、路径、状态码和耗时
// 返回:
//   - gin.HandlerFunc: Gin 中间件函数
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start).Truncate(time.Microsecond)
		statusCode := c.Writer.Status()
		clientIP := c.ClientIP()
		method := c.Request.Method

		logLine := fmt.Sprintf("[%d] | %-12s | %-15s | %-7s | %s",
			statusCode, latency, clientIP, method, path)

		if errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String(); errorMessage != "" {
			logLine += " | " + errorMessage
		}

		// 按状态码选择日志级别
		switch {
		case statusCode >= 500:
			log.Printf("[ERROR] %s", logLine)
		case statusCode >= 400:
			log.Printf("[WARN] %s", logLine)
		default:
			log.Printf("[INFO] %s", logLine)
		}
	}
}

// RecoveryMiddleware 创建 panic 恢复中间件
// 捕获处理器中的 panic，防止进程退出
// 返回:
//   - gin.HandlerFunc: Gin 中间件函数
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[PANIC] %v", err)
				c.AbortWithStatusJSON(500, gin.H{
					"success": false,
					"error":   "服务器内部错误",
				})
			}
		}()

		c.Next()
	}
}

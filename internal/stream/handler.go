// Package stream 提供实时统计的 WebSocket 推送
package stream

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WebSocket 升级器配置
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 统计数据是公开的，允许任意来源订阅
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler 处理统计订阅连接
type Handler struct {
	hub *Hub
}

// NewHandler 创建 Handler 实例
func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// HandleStats 处理统计订阅连接
// 路由: GET /api/stream/stats
// 连接建立后立即收到一份快照，之后每个推送周期收到一次
func (h *Handler) HandleStats(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	client := NewClient(h.hub, conn)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

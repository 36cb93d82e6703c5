// Package stream 提供实时统计的 WebSocket 推送
package stream

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"coredex-server/internal/service"
)

// 推送间隔
const statsInterval = 3 * time.Second

// Hub 是推送连接的中心管理器
// 维护所有订阅统计的客户端，按固定周期查一次库并广播快照；
// 无论多少个客户端在线，每个周期只查一次
type Hub struct {
	clients map[*Client]bool

	// 注册通道
	register chan *Client

	// 注销通道
	unregister chan *Client

	mu sync.RWMutex

	adminService *service.AdminService
}

// NewHub 创建 Hub 实例
func NewHub(adminService *service.AdminService) *Hub {
	return &Hub{
		clients:      make(map[*Client]bool),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		adminService: adminService,
	}
}

// Run 启动 Hub 的主循环
// 应该在单独的 goroutine 中运行，ctx 取消时退出
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case client := <-h.register:
			h.registerClient(ctx, client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-ticker.C:
			h.broadcast(ctx)

		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// Register 注册客户端
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister 注销客户端
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// registerClient 登记客户端并立即推送一份快照
// 新连接不用等下一个周期就能拿到数据
func (h *Hub) registerClient(ctx context.Context, client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	log.Printf("Stats client connected, total=%d", count)

	if payload, ok := h.snapshot(ctx); ok {
		client.Send(payload)
	}
}

// unregisterClient 注销客户端
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.clients[client]; exists {
		delete(h.clients, client)
		close(client.send)
		log.Printf("Stats client disconnected, total=%d", len(h.clients))
	}
}

// broadcast 推送最新快照给所有客户端
// 没有客户端时跳过查询
func (h *Hub) broadcast(ctx context.Context) {
	h.mu.RLock()
	empty := len(h.clients) == 0
	h.mu.RUnlock()
	if empty {
		return
	}

	payload, ok := h.snapshot(ctx)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		client.Send(payload)
	}
}

// snapshot 生成一份序列化好的统计快照
func (h *Hub) snapshot(ctx context.Context) ([]byte, bool) {
	stats, err := h.adminService.Snapshot(ctx)
	if err != nil {
		log.Printf("[WARN] stream: failed to build stats snapshot: %v", err)
		return nil, false
	}
	payload, err := json.Marshal(stats)
	if err != nil {
		return nil, false
	}
	return payload, true
}

// closeAll 关闭所有客户端连接
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
}

// ClientCount 返回当前在线的客户端数
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Package stream 提供实时统计的 WebSocket 推送
package stream

import (
	"log"
	"time"

	"github.com/gorilla/websocket"
)

// 连接配置常量
const (
	// 写超时时间
	writeWait = 10 * time.Second

	// 等待 Pong 响应的超时时间
	pongWait = 60 * time.Second

	// 发送 Ping 的间隔（必须小于 pongWait）
	pingPeriod = (pongWait * 9) / 10

	// 订阅端不需要发大消息
	maxMessageSize = 512
)

// Client 表示一个订阅统计的 WebSocket 连接
// 推送是单向的，客户端发来的数据一律丢弃
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewClient 创建新的客户端
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 16),
	}
}

// Send 非阻塞地投递一条消息
// 发送缓冲满说明客户端消费太慢，直接丢弃这一帧
func (c *Client) Send(payload []byte) {
	select {
	case c.send <- payload:
	default:
	}
}

// ReadPump 读取 WebSocket 消息的 goroutine
// 只负责响应 Pong 和感知断连，消息内容不处理
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Stats stream read error: %v", err)
			}
			break
		}
	}
}

// WritePump 写入 WebSocket 消息的 goroutine
// 从 send 通道读取快照写入连接，并定期发送 Ping 保活
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub 关闭了通道
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

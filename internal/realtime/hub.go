package realtime

import (
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Hub 按用户分发的 WebSocket 通知推送中心
// 替代原先前端直连数据库变更订阅的模式：
// 通知落库后由 Service 调用 Publish，推送到该用户的所有在线连接
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*websocket.Conn]bool // userID → 连接集合
	logger  *zap.Logger
}

// NewHub 创建 Hub 实例
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*websocket.Conn]bool),
		logger:  logger,
	}
}

// Add 注册用户连接
func (h *Hub) Add(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*websocket.Conn]bool)
	}
	h.clients[userID][conn] = true
}

// Remove 注销用户连接并关闭
func (h *Hub) Remove(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clients[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.clients, userID)
		}
	}
	conn.Close()
}

// Publish 向指定用户的全部在线连接推送 JSON 消息
// 写失败的连接就地移除；无在线连接时静默返回
func (h *Hub) Publish(userID string, payload interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.clients[userID]
	if !ok {
		return
	}

	for conn := range conns {
		if err := conn.WriteJSON(payload); err != nil {
			h.logger.Warn("推送通知失败，移除连接",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			delete(conns, conn)
			conn.Close()
		}
	}
	if len(conns) == 0 {
		delete(h.clients, userID)
	}
}

// Online 当前用户是否有在线连接
func (h *Hub) Online(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// CloseAll 关闭全部连接（服务停机时调用）
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, conns := range h.clients {
		for conn := range conns {
			conn.Close()
		}
		delete(h.clients, userID)
	}
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/JoshTheCodre/myqitt-sub000/internal/dto"
	"github.com/JoshTheCodre/myqitt-sub000/internal/realtime"
	"github.com/JoshTheCodre/myqitt-sub000/internal/service"
	"github.com/JoshTheCodre/myqitt-sub000/pkg/jwt"
	"github.com/JoshTheCodre/myqitt-sub000/pkg/response"
)

// NotificationHandler 通知模块 HTTP 处理器
// Stream 端点负责 WebSocket 升级，之后由 Hub 推送
type NotificationHandler struct {
	notifSvc service.NotificationService
	hub      *realtime.Hub
	jwtMgr   *jwt.Manager
	upgrader websocket.Upgrader
}

// NewNotificationHandler 创建 NotificationHandler
func NewNotificationHandler(notifSvc service.NotificationService, hub *realtime.Hub, jwtMgr *jwt.Manager) *NotificationHandler {
	return &NotificationHandler{
		notifSvc: notifSvc,
		hub:      hub,
		jwtMgr:   jwtMgr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 跨域检查由 CORS 中间件统一负责
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// List 通知列表（分页，倒序）
// GET /api/v1/notifications?page=1&page_size=20
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	items, total, err := h.notifSvc.List(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, items, total, page, pageSize)
}

// UnreadCount 未读数量
// GET /api/v1/notifications/unread
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.notifSvc.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// MarkRead 标记单条已读
// PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.notifSvc.MarkRead(c.Request.Context(), c.Param("id"), userID); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// MarkAllRead 全部标记已读
// PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.notifSvc.MarkAllRead(c.Request.Context(), userID); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// GetPreferences 通知偏好
// GET /api/v1/notifications/preferences
func (h *NotificationHandler) GetPreferences(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.notifSvc.GetPreferences(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// UpdatePreferences 更新通知偏好（部分更新）
// PUT /api/v1/notifications/preferences
func (h *NotificationHandler) UpdatePreferences(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	result, err := h.notifSvc.UpdatePreferences(c.Request.Context(), userID, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// RegisterToken 注册推送令牌（幂等）
// POST /api/v1/notifications/tokens
func (h *NotificationHandler) RegisterToken(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.RegisterTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	if err := h.notifSvc.RegisterToken(c.Request.Context(), userID, &req); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// RemoveToken 移除推送令牌
// DELETE /api/v1/notifications/tokens/:token
func (h *NotificationHandler) RemoveToken(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.notifSvc.RemoveToken(c.Request.Context(), userID, c.Param("token")); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// Stream 实时通知 WebSocket
// GET /api/v1/notifications/stream?token=<access_token>
// 浏览器 WebSocket API 无法设置 Authorization 头，令牌通过查询参数携带
func (h *NotificationHandler) Stream(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		response.Unauthorized(c, 10002, "unauthenticated")
		return
	}

	claims, err := h.jwtMgr.ParseToken(tokenString)
	if err != nil || claims.TokenType != "access" {
		response.Unauthorized(c, 10002, "unauthenticated")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 失败时 gorilla 已写入 HTTP 错误响应
		return
	}

	h.hub.Add(claims.UserID, conn)
	defer h.hub.Remove(claims.UserID, conn)

	// 读循环只为感知客户端断开；收到的消息全部忽略
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

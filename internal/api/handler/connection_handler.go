package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/JoshTheCodre/myqitt-sub000/internal/dto"
	"github.com/JoshTheCodre/myqitt-sub000/internal/service"
	"github.com/JoshTheCodre/myqitt-sub000/pkg/response"
)

// ConnectionHandler 连接模块 HTTP 处理器
type ConnectionHandler struct {
	connSvc service.ConnectionService
}

// NewConnectionHandler 创建 ConnectionHandler
func NewConnectionHandler(connSvc service.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{connSvc: connSvc}
}

// Connect 发起（或整体替换）一条连接
// POST /api/v1/connections
func (h *ConnectionHandler) Connect(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	result, err := h.connSvc.Connect(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleConnectionError(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateTypes 更新授权类型集合（整体替换）
// PUT /api/v1/connections/:id
func (h *ConnectionHandler) UpdateTypes(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateConnectionTypesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	result, err := h.connSvc.UpdateTypes(c.Request.Context(), c.Param("id"), userID, &req)
	if err != nil {
		h.handleConnectionError(c, err)
		return
	}

	response.OK(c, result)
}

// Disconnect 断开与指定用户的连接（幂等）
// DELETE /api/v1/connections/:following_id
func (h *ConnectionHandler) Disconnect(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.connSvc.Disconnect(c.Request.Context(), userID, c.Param("following_id")); err != nil {
		h.handleConnectionError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListOutgoing 我发起的连接
// GET /api/v1/connections/outgoing
func (h *ConnectionHandler) ListOutgoing(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.connSvc.ListOutgoing(c.Request.Context(), userID)
	if err != nil {
		h.handleConnectionError(c, err)
		return
	}

	response.OK(c, result)
}

// ListIncoming 连接到我的连接
// GET /api/v1/connections/incoming
func (h *ConnectionHandler) ListIncoming(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.connSvc.ListIncoming(c.Request.Context(), userID)
	if err != nil {
		h.handleConnectionError(c, err)
		return
	}

	response.OK(c, result)
}

// Resolve 解析指定内容类型的可见来源
// GET /api/v1/connections/visibility/:kind
func (h *ConnectionHandler) Resolve(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.connSvc.Resolve(c.Request.Context(), userID, c.Param("kind"))
	if err != nil {
		h.handleConnectionError(c, err)
		return
	}

	response.OK(c, result)
}

// handleConnectionError 连接模块错误映射
func (h *ConnectionHandler) handleConnectionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrConnectionEmptyTypes):
		response.BadRequest(c, 13001, "select at least one option")
	case errors.Is(err, service.ErrConnectionInvalidType):
		response.BadRequest(c, 13002, "unknown connection type")
	case errors.Is(err, service.ErrConnectionSelf):
		response.BadRequest(c, 13003, "cannot connect to yourself")
	case errors.Is(err, service.ErrConnectionNotFound):
		response.NotFound(c, 13004, "connection not found")
	case errors.Is(err, service.ErrConnectionNotOwner):
		response.Forbidden(c, 13005, "not your connection")
	case errors.Is(err, service.ErrConnectionPeerMissing):
		response.NotFound(c, 13006, "user not found")
	default:
		response.InternalError(c)
	}
}

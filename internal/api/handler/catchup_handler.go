package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/JoshTheCodre/myqitt-sub000/internal/dto"
	"github.com/JoshTheCodre/myqitt-sub000/internal/service"
	"github.com/JoshTheCodre/myqitt-sub000/pkg/response"
)

// CatchupHandler 公告模块 HTTP 处理器
type CatchupHandler struct {
	catchupSvc service.CatchupService
}

// NewCatchupHandler 创建 CatchupHandler
func NewCatchupHandler(catchupSvc service.CatchupService) *CatchupHandler {
	return &CatchupHandler{catchupSvc: catchupSvc}
}

// Create 发布公告（管理员/课代表）
// POST /api/v1/catchups
func (h *CatchupHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateCatchupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	result, err := h.catchupSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleCatchupError(c, err)
		return
	}

	response.Created(c, result)
}

// Update 更新公告（仅创建者）
// PUT /api/v1/catchups/:id
func (h *CatchupHandler) Update(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateCatchupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	result, err := h.catchupSvc.Update(c.Request.Context(), c.Param("id"), userID, &req)
	if err != nil {
		h.handleCatchupError(c, err)
		return
	}

	response.OK(c, result)
}

// Delete 删除公告（仅创建者）
// DELETE /api/v1/catchups/:id
func (h *CatchupHandler) Delete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.catchupSvc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.handleCatchupError(c, err)
		return
	}

	response.OK(c, nil)
}

// Get 公告详情
// GET /api/v1/catchups/:id
func (h *CatchupHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.catchupSvc.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.handleCatchupError(c, err)
		return
	}

	response.OK(c, result)
}

// ListForUser 面向当前用户的未过期公告
// GET /api/v1/catchups
func (h *CatchupHandler) ListForUser(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.catchupSvc.ListForUser(c.Request.Context(), userID)
	if err != nil {
		h.handleCatchupError(c, err)
		return
	}

	response.OK(c, result)
}

// ListMine 当前用户发布的公告（管理视图，含已过期）
// GET /api/v1/catchups/mine
func (h *CatchupHandler) ListMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.catchupSvc.ListMine(c.Request.Context(), userID)
	if err != nil {
		h.handleCatchupError(c, err)
		return
	}

	response.OK(c, result)
}

// handleCatchupError 公告模块错误映射
func (h *CatchupHandler) handleCatchupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCatchupNotFound):
		response.NotFound(c, 17001, "catch-up not found")
	case errors.Is(err, service.ErrCatchupNotCreator):
		response.Forbidden(c, 17002, "only the creator can modify this catch-up")
	case errors.Is(err, service.ErrCatchupNotAllowed):
		response.Forbidden(c, 17003, "only course reps or admins can publish catch-ups")
	default:
		response.InternalError(c)
	}
}

package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/JoshTheCodre/myqitt-sub000/internal/dto"
	"github.com/JoshTheCodre/myqitt-sub000/internal/service"
	"github.com/JoshTheCodre/myqitt-sub000/pkg/response"
)

// TodaysClassHandler 当日课程变更模块 HTTP 处理器
type TodaysClassHandler struct {
	todaysClassSvc service.TodaysClassService
}

// NewTodaysClassHandler 创建 TodaysClassHandler
func NewTodaysClassHandler(todaysClassSvc service.TodaysClassService) *TodaysClassHandler {
	return &TodaysClassHandler{todaysClassSvc: todaysClassSvc}
}

// Create 发布当日变更（课代表）
// POST /api/v1/todays-classes
func (h *TodaysClassHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateTodaysClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	result, err := h.todaysClassSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleTodaysClassError(c, err)
		return
	}

	response.Created(c, result)
}

// Update 更新变更（仅创建者）
// PUT /api/v1/todays-classes/:id
func (h *TodaysClassHandler) Update(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateTodaysClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	result, err := h.todaysClassSvc.Update(c.Request.Context(), c.Param("id"), userID, &req)
	if err != nil {
		h.handleTodaysClassError(c, err)
		return
	}

	response.OK(c, result)
}

// Delete 删除变更，恢复常规课表（仅创建者）
// DELETE /api/v1/todays-classes/:id
func (h *TodaysClassHandler) Delete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.todaysClassSvc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.handleTodaysClassError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListForDate 指定日期的变更列表（管理视图）
// GET /api/v1/todays-classes?date=YYYY-MM-DD
func (h *TodaysClassHandler) ListForDate(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.todaysClassSvc.ListForDate(c.Request.Context(), userID, c.Query("date"))
	if err != nil {
		h.handleTodaysClassError(c, err)
		return
	}

	response.OK(c, result)
}

// GetMergedSchedule 当日课程合并视图（常规课表 + 变更 + 授权对端）
// GET /api/v1/todays-classes/schedule?date=YYYY-MM-DD
func (h *TodaysClassHandler) GetMergedSchedule(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.todaysClassSvc.GetMergedSchedule(c.Request.Context(), userID, c.Query("date"))
	if err != nil {
		h.handleTodaysClassError(c, err)
		return
	}

	response.OK(c, result)
}

// handleTodaysClassError 当日课程变更模块错误映射
func (h *TodaysClassHandler) handleTodaysClassError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTodaysClassNotFound):
		response.NotFound(c, 16001, "class change not found")
	case errors.Is(err, service.ErrTodaysClassNotCreator):
		response.Forbidden(c, 16002, "only the creator can modify this change")
	case errors.Is(err, service.ErrTodaysClassNotRep):
		response.Forbidden(c, 16003, "only course reps can do this")
	case errors.Is(err, service.ErrTodaysClassBadDate):
		response.BadRequest(c, 16004, "invalid date, expected YYYY-MM-DD")
	case errors.Is(err, service.ErrTodaysClassBadTime):
		response.BadRequest(c, 16005, "invalid time format, expected HH:MM")
	default:
		response.InternalError(c)
	}
}

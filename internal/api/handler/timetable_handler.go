package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JoshTheCodre/myqitt-sub000/internal/dto"
	"github.com/JoshTheCodre/myqitt-sub000/internal/service"
	"github.com/JoshTheCodre/myqitt-sub000/pkg/response"
)

// TimetableHandler 课表模块 HTTP 处理器
type TimetableHandler struct {
	timetableSvc service.TimetableService
}

// NewTimetableHandler 创建 TimetableHandler
func NewTimetableHandler(timetableSvc service.TimetableService) *TimetableHandler {
	return &TimetableHandler{timetableSvc: timetableSvc}
}

// Save 全量替换当前用户课表
// PUT /api/v1/timetable
func (h *TimetableHandler) Save(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SaveTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	result, err := h.timetableSvc.Save(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}

	response.OK(c, result)
}

// Get 聚合课表（自己 + 授权对端）
// GET /api/v1/timetable
func (h *TimetableHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.timetableSvc.Get(c.Request.Context(), userID)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}

	response.OK(c, result)
}

// GetOwn 仅自己的课表（编辑视图）
// GET /api/v1/timetable/own
func (h *TimetableHandler) GetOwn(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.timetableSvc.GetOwn(c.Request.Context(), userID)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}

	response.OK(c, result)
}

// ExportICS 导出 iCalendar 文件（周重复事件）
// GET /api/v1/timetable/export.ics
func (h *TimetableHandler) ExportICS(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	ics, err := h.timetableSvc.ExportICS(c.Request.Context(), userID)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="timetable.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(ics))
}

// handleTimetableError 课表模块错误映射
func (h *TimetableHandler) handleTimetableError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTimetableBadTime):
		response.BadRequest(c, 14001, "invalid time format, expected HH:MM")
	case errors.Is(err, service.ErrTimetableTimeOrder):
		response.BadRequest(c, 14002, "start time must be before end time")
	default:
		response.InternalError(c)
	}
}

package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/JoshTheCodre/myqitt-sub000/internal/dto"
	"github.com/JoshTheCodre/myqitt-sub000/internal/service"
	"github.com/JoshTheCodre/myqitt-sub000/pkg/response"
)

// SchoolHandler 学校/课程基础数据 HTTP 处理器
type SchoolHandler struct {
	schoolSvc service.SchoolService
}

// NewSchoolHandler 创建 SchoolHandler
func NewSchoolHandler(schoolSvc service.SchoolService) *SchoolHandler {
	return &SchoolHandler{schoolSvc: schoolSvc}
}

// ListSchools 学校列表（含院系）
// GET /api/v1/schools
func (h *SchoolHandler) ListSchools(c *gin.Context) {
	result, err := h.schoolSvc.ListSchools(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// ListCourses 按院系/年级/学期查询课程
// GET /api/v1/courses?department_id=&level=&semester=
func (h *SchoolHandler) ListCourses(c *gin.Context) {
	var req dto.ListCoursesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	result, err := h.schoolSvc.ListCourses(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/JoshTheCodre/myqitt-sub000/internal/dto"
	"github.com/JoshTheCodre/myqitt-sub000/internal/model"
	"github.com/JoshTheCodre/myqitt-sub000/internal/repository"
)

// SchoolService 学校/院系/课程参考数据业务接口
// 注册与选课界面的下拉数据源，只读
type SchoolService interface {
	ListSchools(ctx context.Context) ([]dto.SchoolResponse, error)
	ListCourses(ctx context.Context, req *dto.ListCoursesRequest) ([]dto.CourseResponse, error)
}

type schoolService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSchoolService 创建 SchoolService 实例
func NewSchoolService(repo *repository.Repository, logger *zap.Logger) SchoolService {
	return &schoolService{repo: repo, logger: logger}
}

func (s *schoolService) ListSchools(ctx context.Context) ([]dto.SchoolResponse, error) {
	schools, err := s.repo.School.List(ctx)
	if err != nil {
		s.logger.Error("查询学校列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SchoolResponse, 0, len(schools))
	for i := range schools {
		result = append(result, toSchoolResponse(&schools[i]))
	}
	return result, nil
}

func (s *schoolService) ListCourses(ctx context.Context, req *dto.ListCoursesRequest) ([]dto.CourseResponse, error) {
	courses, err := s.repo.Course.ListByDepartment(ctx, req.DepartmentID, req.Level, req.Semester)
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.CourseResponse, 0, len(courses))
	for _, c := range courses {
		result = append(result, dto.CourseResponse{
			ID:       c.CourseID,
			Code:     c.Code,
			Title:    c.Title,
			Level:    c.Level,
			Semester: c.Semester,
			Units:    c.Units,
		})
	}
	return result, nil
}

// ── 响应转换器 ──

func toSchoolResponse(sc *model.School) dto.SchoolResponse {
	resp := dto.SchoolResponse{
		ID:        sc.SchoolID,
		Name:      sc.Name,
		ShortName: sc.ShortName,
	}
	for _, d := range sc.Departments {
		resp.Departments = append(resp.Departments, dto.DepartmentResponse{
			ID:   d.DepartmentID,
			Name: d.Name,
		})
	}
	return resp
}

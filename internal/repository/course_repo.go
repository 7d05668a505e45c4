package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/JoshTheCodre/myqitt-sub000/internal/model"
)

// CourseRepository 课程数据访问接口
type CourseRepository interface {
	ListByDepartment(ctx context.Context, departmentID string, level int, semester string) ([]model.Course, error)
}

// courseRepo CourseRepository 的 GORM 实现
type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) ListByDepartment(ctx context.Context, departmentID string, level int, semester string) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).
		Where("department_id = ? AND level = ? AND semester = ?", departmentID, level, semester).
		Order("code ASC").
		Find(&courses).Error
	return courses, err
}
